package params

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeConstraints_Empty(t *testing.T) {
	got, err := DecodeConstraints(WidgetBoolean, "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(Constraints{}, got); diff != "" {
		t.Fatalf("expected empty constraints (-want +got):\n%s", diff)
	}
}

func TestDecodeConstraints_Slider(t *testing.T) {
	got, err := DecodeConstraints(WidgetSlider, "{'min_val': 0, 'max_val': 300, 'step': 0.1}")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MinVal == nil || *got.MinVal != 0 {
		t.Fatalf("min_val: %v", got.MinVal)
	}
	if got.MaxVal == nil || *got.MaxVal != 300 {
		t.Fatalf("max_val: %v", got.MaxVal)
	}
	if got.Step == nil || *got.Step != 0.1 {
		t.Fatalf("step: %v", got.Step)
	}
}

func TestDecodeConstraints_Types(t *testing.T) {
	got, err := DecodeConstraints(WidgetMultiType, "{'type_selection': True, 'types': ['none', 'str', 'dict']}")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.TypeSelection {
		t.Fatal("type_selection not set")
	}
	if diff := cmp.Diff([]string{"none", "str", "dict"}, got.Types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeConstraints_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		widget WidgetKind
		args   string
	}{
		{name: "not a mapping", widget: WidgetSlider, args: "[1, 2]"},
		{name: "wrong key for kind", widget: WidgetChecklist, args: "{'max_val': 5}"},
		{name: "non-numeric bound", widget: WidgetSlider, args: "{'min_val': 'low'}"},
		{name: "non-boolean none_select", widget: WidgetDict, args: "{'none_select': 1}"},
		{name: "inverted range", widget: WidgetSlider, args: "{'min_val': 10, 'max_val': 1}"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeConstraints(tc.widget, tc.args); err == nil {
				t.Fatalf("expected error for %s", tc.args)
			}
		})
	}
}

func TestParseWidgetKind_Aliases(t *testing.T) {
	cases := map[string]WidgetKind{
		"integer":             WidgetInteger,
		"IntGui":              WidgetInteger,
		"ComboGui":            WidgetCombo,
		"FuncGui":             WidgetFuncExpr,
		"function-expression": WidgetFuncExpr,
		"MultiTypeGui":        WidgetMultiType,
	}
	for raw, want := range cases {
		got, err := ParseWidgetKind(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %s, got %s", raw, want, got)
		}
	}
	if _, err := ParseWidgetKind("dial"); err == nil {
		t.Fatal("expected unknown widget kind to fail")
	}
}
