package params

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-pipeparams/pkg/literal"
)

// WidgetKind is the abstract editor category a parameter is rendered with.
// It determines which constraint keys are legal and how values validate.
type WidgetKind string

const (
	WidgetBoolean   WidgetKind = "boolean"
	WidgetInteger   WidgetKind = "integer"
	WidgetFloat     WidgetKind = "float"
	WidgetString    WidgetKind = "string"
	WidgetSlider    WidgetKind = "slider"
	WidgetCombo     WidgetKind = "combo"
	WidgetChecklist WidgetKind = "checklist"
	WidgetList      WidgetKind = "list"
	WidgetDict      WidgetKind = "dict"
	WidgetTuple     WidgetKind = "tuple"
	WidgetMultiType WidgetKind = "multi-type"
	WidgetFuncExpr  WidgetKind = "funcexpr"
)

// widgetAliases maps the Qt widget class names used by older parameter
// tables onto the abstract kinds.
var widgetAliases = map[string]WidgetKind{
	"boolgui":      WidgetBoolean,
	"intgui":       WidgetInteger,
	"floatgui":     WidgetFloat,
	"stringgui":    WidgetString,
	"slidergui":    WidgetSlider,
	"combogui":     WidgetCombo,
	"checklistgui": WidgetChecklist,
	"listgui":      WidgetList,
	"dictgui":      WidgetDict,
	"tuplegui":     WidgetTuple,
	"multitypegui": WidgetMultiType,
	"funcgui":      WidgetFuncExpr,

	"multi-type":          WidgetMultiType,
	"multitype":           WidgetMultiType,
	"function-expression": WidgetFuncExpr,
}

// ParseWidgetKind normalizes a gui_type cell into a WidgetKind.
func ParseWidgetKind(raw string) (WidgetKind, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("params: empty widget kind")
	}
	switch kind := WidgetKind(trimmed); kind {
	case WidgetBoolean, WidgetInteger, WidgetFloat, WidgetString, WidgetSlider,
		WidgetCombo, WidgetChecklist, WidgetList, WidgetDict, WidgetTuple,
		WidgetMultiType, WidgetFuncExpr:
		return kind, nil
	}
	if kind, ok := widgetAliases[strings.ToLower(trimmed)]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("params: unknown widget kind %q", trimmed)
}

// Descriptor is the immutable metadata record for one pipeline parameter.
// Instances are built once by Registry.Load and never mutated afterwards.
type Descriptor struct {
	Key         string
	Alias       string
	Group       string
	DefaultRaw  string
	Default     literal.Value
	Unit        string
	Description string
	Widget      WidgetKind
	Constraints Constraints
}

// Label returns the display name, falling back to the key when no alias is
// set.
func (d Descriptor) Label() string {
	if d.Alias != "" {
		return d.Alias
	}
	return d.Key
}
