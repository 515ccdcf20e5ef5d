package params

import (
	"fmt"

	"github.com/goliatone/go-pipeparams/pkg/literal"
)

// UnknownParameterError reports a get/set/reset against a key the loaded
// schema does not define. Callers should treat it as a programming or
// configuration error, not something to retry.
type UnknownParameterError struct {
	Key string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("params: unknown parameter %q", e.Key)
}

// ShapeError reports a constraint key that the widget kind does not
// recognize. It is fatal at schema load time.
type ShapeError struct {
	Widget WidgetKind
	Key    string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("params: widget %q does not accept constraint %q", e.Widget, e.Key)
}

// ConstraintViolation reports a proposed value that fails its widget's
// validation rule. The registry never coerces or clamps; the caller decides
// how to surface the violation.
type ConstraintViolation struct {
	Key   string
	Value literal.Value
	Rule  string
}

func (e *ConstraintViolation) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("params: %s", e.Rule)
	}
	return fmt.Sprintf("params: %s: %s", e.Key, e.Rule)
}
