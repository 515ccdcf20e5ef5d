package literal

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode_Scalars(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		expect Value
	}{
		{name: "true", text: "True", expect: Bool(true)},
		{name: "false", text: "False", expect: Bool(false)},
		{name: "none", text: "None", expect: None()},
		{name: "int", text: "42", expect: Int(42)},
		{name: "negative int", text: "-1", expect: Int(-1)},
		{name: "float", text: "0.002", expect: Float(0.002)},
		{name: "scientific", text: "3000e-15", expect: Float(3e-12)},
		{name: "quoted string", text: "'STI 014'", expect: String("STI 014")},
		{name: "double quoted", text: `"fastica"`, expect: String("fastica")},
		{name: "bare string", text: "fastica", expect: String("fastica")},
		{name: "bare string with spaces", text: "EEG 001", expect: String("EEG 001")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tc.text)
			if err != nil {
				t.Fatalf("decode %q: %v", tc.text, err)
			}
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("decode %q mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestDecode_Arithmetic(t *testing.T) {
	got, err := Decode("1.0 / 3.0 ** 2")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindFloat {
		t.Fatalf("expected float, got %s", got.Kind)
	}
	if math.Abs(got.FloatVal-1.0/9.0) > 1e-12 {
		t.Fatalf("expected 1/9, got %g", got.FloatVal)
	}

	got, err = Decode("2 ** 10")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindInt || got.IntVal != 1024 {
		t.Fatalf("expected int 1024, got %s %v", got.Kind, got)
	}
}

func TestDecode_Tuple(t *testing.T) {
	got, err := Decode("(-0.5, 1.5)")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Tuple(-0.5, 1.5)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tuple mismatch (-want +got):\n%s", diff)
	}

	single, err := Decode("(3,)")
	if err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if diff := cmp.Diff(Tuple(3), single); diff != "" {
		t.Fatalf("single tuple mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_List(t *testing.T) {
	got, err := Decode("['fastica', 'infomax', 'picard']")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := List(String("fastica"), String("infomax"), String("picard"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Dict(t *testing.T) {
	got, err := Decode("{'mag': 3000e-15, 'grad': 3000e-13, 'eeg': 100e-6, 'eog': 200e-6}")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != KindDict {
		t.Fatalf("expected dict, got %s", got.Kind)
	}
	if len(got.DictVal) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(got.DictVal))
	}
	for _, entry := range got.DictVal {
		if entry.Value.Kind != KindFloat {
			t.Fatalf("entry %q: expected float, got %s", entry.Key, entry.Value.Kind)
		}
	}
	mag, ok := got.Lookup("mag")
	if !ok || mag.FloatVal != 3e-12 {
		t.Fatalf("mag lookup failed: %v %v", ok, mag)
	}
}

func TestDecode_Constructors(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		expect []float64
	}{
		{name: "arange", text: "np.arange(50, 301, 50)", expect: []float64{50, 100, 150, 200, 250, 300}},
		{name: "arange unprefixed", text: "arange(3)", expect: []float64{0, 1, 2}},
		{name: "linspace", text: "linspace(1, 10, 4)", expect: []float64{1, 4, 7, 10}},
		{name: "scaled", text: "np.arange(1, 4) * 2", expect: []float64{2, 4, 6}},
		{name: "divided", text: "np.arange(5, 20, 5) / 2", expect: []float64{2.5, 5, 7.5}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Decode(tc.text)
			if err != nil {
				t.Fatalf("decode %q: %v", tc.text, err)
			}
			if got.Kind != KindSeries {
				t.Fatalf("expected series, got %s", got.Kind)
			}
			if diff := cmp.Diff(tc.expect, got.Nums); diff != "" {
				t.Fatalf("series mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []string{
		"",
		"picard'",
		"(1, 2",
		"[1, 2,",
		"{'a' 1}",
		"{'a': 1, 'a': 2}",
		"np.arange()",
		"np.unknown(1, 2)",
		"linspace(1, 10)",
	}

	for _, text := range cases {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(text)
			if err == nil {
				t.Fatalf("expected error decoding %q", text)
			}
			var litErr *LiteralError
			if !errors.As(err, &litErr) {
				t.Fatalf("expected LiteralError, got %T", err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"True",
		"None",
		"-1",
		"0.002",
		"3000e-15",
		"'STI 014'",
		"(-0.5, 1.5)",
		"['fastica', 'infomax']",
		"{'mag': 3e-12, 'grad': 3e-13}",
		"np.arange(50, 301, 50)",
		"1.0 / 3.0 ** 2",
	}

	for _, text := range texts {
		text := text
		t.Run(text, func(t *testing.T) {
			t.Parallel()
			first, err := Decode(text)
			if err != nil {
				t.Fatalf("decode %q: %v", text, err)
			}
			second, err := Decode(first.String())
			if err != nil {
				t.Fatalf("re-decode %q: %v", first.String(), err)
			}
			if !first.Equal(second) {
				t.Fatalf("round trip not idempotent: %q -> %q", text, first.String())
			}
		})
	}
}

func TestEqual_SeriesAndList(t *testing.T) {
	series := Series([]float64{1, 2, 3})
	list := List(Int(1), Int(2), Int(3))
	if !series.Equal(list) || !list.Equal(series) {
		t.Fatal("series should equal an all-numeric list with the same values")
	}
	if series.Equal(List(Int(1), Int(2))) {
		t.Fatal("length mismatch should not be equal")
	}
	if !Int(1).Equal(Float(1.0)) {
		t.Fatal("int and float with the same value should be equal")
	}
}

func TestFromGo(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		expect Value
	}{
		{name: "nil", value: nil, expect: None()},
		{name: "bool", value: true, expect: Bool(true)},
		{name: "int", value: 7, expect: Int(7)},
		{name: "float", value: 2.5, expect: Float(2.5)},
		{name: "string", value: "picard", expect: String("picard")},
		{name: "floats", value: []float64{-0.5, 1.5}, expect: Tuple(-0.5, 1.5)},
		{name: "strings", value: []string{"grad", "mag"}, expect: List(String("grad"), String("mag"))},
		{
			name:  "map",
			value: map[string]any{"mag": 3e-12, "eeg": 1e-4},
			expect: Dict(
				Entry{Key: "eeg", Value: Float(1e-4)},
				Entry{Key: "mag", Value: Float(3e-12)},
			),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := FromGo(tc.value)
			if err != nil {
				t.Fatalf("FromGo(%v): %v", tc.value, err)
			}
			if diff := cmp.Diff(tc.expect, got); diff != "" {
				t.Fatalf("FromGo mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := FromGo(struct{}{}); err == nil {
		t.Fatal("expected error for unsupported Go type")
	}
}
