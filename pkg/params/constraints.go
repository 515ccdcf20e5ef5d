package params

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-pipeparams/pkg/literal"
)

// Constraint keys recognized across the widget catalogue.
const (
	ConstraintMinVal        = "min_val"
	ConstraintMaxVal        = "max_val"
	ConstraintStep          = "step"
	ConstraintOptions       = "options"
	ConstraintNoneSelect    = "none_select"
	ConstraintTypeSelection = "type_selection"
	ConstraintTypes         = "types"
)

// widgetConstraintKeys is the fixed catalogue: which constraint keys each
// widget kind accepts. A key outside this set is a load-time ShapeError.
var widgetConstraintKeys = map[WidgetKind]map[string]struct{}{
	WidgetBoolean:   {},
	WidgetInteger:   keySet(ConstraintMinVal, ConstraintMaxVal, ConstraintNoneSelect),
	WidgetFloat:     keySet(ConstraintMinVal, ConstraintMaxVal, ConstraintStep),
	WidgetString:    {},
	WidgetSlider:    keySet(ConstraintMinVal, ConstraintMaxVal, ConstraintStep),
	WidgetCombo:     keySet(ConstraintOptions, ConstraintNoneSelect),
	WidgetChecklist: keySet(ConstraintOptions),
	WidgetList:      {},
	WidgetDict:      keySet(ConstraintNoneSelect),
	WidgetTuple:     keySet(ConstraintMaxVal, ConstraintNoneSelect),
	WidgetMultiType: keySet(ConstraintTypeSelection, ConstraintTypes),
	WidgetFuncExpr:  {},
}

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}

// Constraints is the decoded constraint set attached to a descriptor. Which
// fields are populated depends on the widget kind.
type Constraints struct {
	MinVal        *float64
	MaxVal        *float64
	Step          *float64
	Options       []literal.Value
	NoneSelect    bool
	TypeSelection bool
	Types         []string
}

// DecodeConstraints parses a gui_args cell into the constraint set for the
// given widget kind. An empty cell yields an empty set; unknown keys or
// ill-typed constraint values fail.
func DecodeConstraints(widget WidgetKind, guiArgs string) (Constraints, error) {
	var constraints Constraints
	trimmed := strings.TrimSpace(guiArgs)
	if trimmed == "" {
		return constraints, nil
	}

	decoded, err := literal.Decode(trimmed)
	if err != nil {
		return constraints, err
	}
	if decoded.Kind != literal.KindDict {
		return constraints, fmt.Errorf("params: gui_args must be a mapping, got %s", decoded.Kind)
	}

	allowed := widgetConstraintKeys[widget]
	for _, entry := range decoded.DictVal {
		if _, ok := allowed[entry.Key]; !ok {
			return constraints, &ShapeError{Widget: widget, Key: entry.Key}
		}
		switch entry.Key {
		case ConstraintMinVal, ConstraintMaxVal, ConstraintStep:
			n, ok := entry.Value.Number()
			if !ok {
				return constraints, fmt.Errorf("params: constraint %q must be numeric, got %s", entry.Key, entry.Value.Kind)
			}
			switch entry.Key {
			case ConstraintMinVal:
				constraints.MinVal = &n
			case ConstraintMaxVal:
				constraints.MaxVal = &n
			default:
				constraints.Step = &n
			}
		case ConstraintOptions:
			if entry.Value.Kind != literal.KindList {
				return constraints, fmt.Errorf("params: constraint %q must be a sequence, got %s", entry.Key, entry.Value.Kind)
			}
			constraints.Options = append([]literal.Value(nil), entry.Value.ListVal...)
		case ConstraintNoneSelect, ConstraintTypeSelection:
			if entry.Value.Kind != literal.KindBool {
				return constraints, fmt.Errorf("params: constraint %q must be a boolean, got %s", entry.Key, entry.Value.Kind)
			}
			if entry.Key == ConstraintNoneSelect {
				constraints.NoneSelect = entry.Value.BoolVal
			} else {
				constraints.TypeSelection = entry.Value.BoolVal
			}
		case ConstraintTypes:
			if entry.Value.Kind != literal.KindList {
				return constraints, fmt.Errorf("params: constraint %q must be a sequence, got %s", entry.Key, entry.Value.Kind)
			}
			for _, item := range entry.Value.ListVal {
				if item.Kind != literal.KindString {
					return constraints, fmt.Errorf("params: constraint %q entries must be type names, got %s", entry.Key, item.Kind)
				}
				constraints.Types = append(constraints.Types, item.StrVal)
			}
		}
	}

	if constraints.MinVal != nil && constraints.MaxVal != nil && *constraints.MinVal > *constraints.MaxVal {
		return constraints, fmt.Errorf("params: min_val %g exceeds max_val %g", *constraints.MinVal, *constraints.MaxVal)
	}
	return constraints, nil
}
