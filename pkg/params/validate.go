package params

import (
	"fmt"
	"math"
	"strings"

	"github.com/goliatone/go-pipeparams/pkg/literal"
)

// Validate checks a proposed value against the descriptor's widget rule and
// constraint set. It returns nil on success and a ConstraintViolation naming
// the violated rule otherwise. The function has no side effects; descriptors
// are never mutated.
func Validate(desc Descriptor, value literal.Value) *ConstraintViolation {
	switch desc.Widget {
	case WidgetBoolean:
		if value.Kind != literal.KindBool {
			return violation(desc, value, fmt.Sprintf("expected a boolean, got %s", value.Kind))
		}
		return nil

	case WidgetInteger:
		if value.IsNone() {
			return noneViolation(desc, value)
		}
		n, ok := value.Number()
		if !ok {
			return violation(desc, value, fmt.Sprintf("expected an integer, got %s", value.Kind))
		}
		// JSON transports have no integer type, so integral floats pass.
		if value.Kind == literal.KindFloat && n != math.Trunc(n) {
			return violation(desc, value, fmt.Sprintf("expected an integer, got %s", value.String()))
		}
		return checkRange(desc, value, n)

	case WidgetFloat, WidgetSlider:
		if value.IsNone() {
			return noneViolation(desc, value)
		}
		n, ok := value.Number()
		if !ok {
			return violation(desc, value, fmt.Sprintf("expected a number, got %s", value.Kind))
		}
		return checkRange(desc, value, n)

	case WidgetString:
		if value.Kind != literal.KindString {
			return violation(desc, value, fmt.Sprintf("expected a string, got %s", value.Kind))
		}
		return nil

	case WidgetCombo:
		if value.IsNone() {
			return noneViolation(desc, value)
		}
		if len(desc.Constraints.Options) == 0 {
			return nil
		}
		for _, option := range desc.Constraints.Options {
			if option.Equal(value) {
				return nil
			}
		}
		return violation(desc, value, fmt.Sprintf("value %s is not one of the options %s", value.String(), renderOptions(desc.Constraints.Options)))

	case WidgetChecklist:
		if value.Kind != literal.KindList {
			return violation(desc, value, fmt.Sprintf("expected a sequence of selections, got %s", value.Kind))
		}
		if len(desc.Constraints.Options) == 0 {
			return nil
		}
		for _, item := range value.ListVal {
			found := false
			for _, option := range desc.Constraints.Options {
				if option.Equal(item) {
					found = true
					break
				}
			}
			if !found {
				return violation(desc, value, fmt.Sprintf("selection %s is not one of the options %s", item.String(), renderOptions(desc.Constraints.Options)))
			}
		}
		return nil

	case WidgetList:
		switch value.Kind {
		case literal.KindList, literal.KindTuple, literal.KindSeries:
			return nil
		}
		return violation(desc, value, fmt.Sprintf("expected an ordered sequence, got %s", value.Kind))

	case WidgetDict:
		if value.IsNone() {
			return noneViolation(desc, value)
		}
		if value.Kind != literal.KindDict {
			return violation(desc, value, fmt.Sprintf("expected a mapping, got %s", value.Kind))
		}
		return nil

	case WidgetTuple:
		if value.IsNone() {
			return noneViolation(desc, value)
		}
		nums, ok := tupleNums(value)
		if !ok {
			return violation(desc, value, fmt.Sprintf("expected a numeric tuple, got %s", value.Kind))
		}
		if max := desc.Constraints.MaxVal; max != nil {
			for _, n := range nums {
				if n > *max {
					return violation(desc, value, fmt.Sprintf("element %s exceeds max_val %s", formatNum(n), formatNum(*max)))
				}
			}
		}
		return nil

	case WidgetMultiType:
		if len(desc.Constraints.Types) == 0 {
			return nil
		}
		for _, name := range desc.Constraints.Types {
			if kindMatchesTypeName(value.Kind, name) {
				return nil
			}
		}
		return violation(desc, value, fmt.Sprintf("kind %s is not among the allowed types [%s]", value.Kind, strings.Join(desc.Constraints.Types, ", ")))

	case WidgetFuncExpr:
		// Computed defaults are opaque; the literal decoder already bounded
		// what they can be.
		return nil

	default:
		return violation(desc, value, fmt.Sprintf("unknown widget kind %q", desc.Widget))
	}
}

func violation(desc Descriptor, value literal.Value, rule string) *ConstraintViolation {
	return &ConstraintViolation{Key: desc.Key, Value: value, Rule: rule}
}

func noneViolation(desc Descriptor, value literal.Value) *ConstraintViolation {
	if desc.Constraints.NoneSelect {
		return nil
	}
	if value.IsNone() {
		return violation(desc, value, "None is not allowed for this parameter")
	}
	return nil
}

func checkRange(desc Descriptor, value literal.Value, n float64) *ConstraintViolation {
	if min := desc.Constraints.MinVal; min != nil && n < *min {
		return violation(desc, value, fmt.Sprintf("value %s is below min_val %s", value.String(), formatNum(*min)))
	}
	if max := desc.Constraints.MaxVal; max != nil && n > *max {
		return violation(desc, value, fmt.Sprintf("value %s exceeds max_val %s", value.String(), formatNum(*max)))
	}
	return nil
}

func tupleNums(value literal.Value) ([]float64, bool) {
	switch value.Kind {
	case literal.KindTuple, literal.KindSeries:
		return value.Nums, true
	case literal.KindList:
		nums := make([]float64, 0, len(value.ListVal))
		for _, item := range value.ListVal {
			n, ok := item.Number()
			if !ok {
				return nil, false
			}
			nums = append(nums, n)
		}
		return nums, true
	default:
		return nil, false
	}
}

func kindMatchesTypeName(kind literal.Kind, name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bool", "boolean":
		return kind == literal.KindBool
	case "int", "integer":
		return kind == literal.KindInt
	case "float", "number":
		return kind == literal.KindFloat
	case "str", "string":
		return kind == literal.KindString
	case "none":
		return kind == literal.KindNone
	case "tuple":
		return kind == literal.KindTuple
	case "list", "array":
		return kind == literal.KindList || kind == literal.KindSeries
	case "dict", "mapping":
		return kind == literal.KindDict
	default:
		return false
	}
}

func renderOptions(options []literal.Value) string {
	return literal.List(options...).String()
}

func formatNum(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
