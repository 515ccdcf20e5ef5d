package literal

import (
	"fmt"
	"sort"
)

// Kind tags a decoded Value with its semantic category.
type Kind string

const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindNone   Kind = "none"
	KindTuple  Kind = "tuple"
	KindList   Kind = "list"
	KindDict   Kind = "dict"
	KindSeries Kind = "series"
)

// Entry is a single key/value pair inside a decoded mapping. Insertion order
// is preserved so canonical rendering is stable.
type Entry struct {
	Key   string
	Value Value
}

// Value is a decoded literal tagged with its semantic kind. Only the payload
// field matching Kind carries meaning; the rest stay at their zero value.
// Tuples and series share the Nums payload.
type Value struct {
	Kind Kind

	BoolVal  bool
	IntVal   int64
	FloatVal float64
	StrVal   string
	Nums     []float64
	ListVal  []Value
	DictVal  []Entry
}

// None returns the decoded form of the None sentinel.
func None() Value {
	return Value{Kind: KindNone}
}

// Bool wraps a Go bool.
func Bool(b bool) Value {
	return Value{Kind: KindBool, BoolVal: b}
}

// Int wraps a Go integer.
func Int(n int64) Value {
	return Value{Kind: KindInt, IntVal: n}
}

// Float wraps a Go float.
func Float(f float64) Value {
	return Value{Kind: KindFloat, FloatVal: f}
}

// String wraps a Go string.
func String(s string) Value {
	return Value{Kind: KindString, StrVal: s}
}

// Tuple wraps an ordered, fixed-arity sequence of numbers.
func Tuple(nums ...float64) Value {
	return Value{Kind: KindTuple, Nums: nums}
}

// Series wraps a constructed numeric sequence (arange/linspace result).
func Series(nums []float64) Value {
	return Value{Kind: KindSeries, Nums: nums}
}

// List wraps an ordered sequence of arbitrary values.
func List(values ...Value) Value {
	return Value{Kind: KindList, ListVal: values}
}

// Dict wraps an ordered mapping.
func Dict(entries ...Entry) Value {
	return Value{Kind: KindDict, DictVal: entries}
}

// IsNone reports whether the value is the None sentinel.
func (v Value) IsNone() bool {
	return v.Kind == KindNone
}

// Number returns the value as a float64 when it is numeric (int or float).
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.IntVal), true
	case KindFloat:
		return v.FloatVal, true
	default:
		return 0, false
	}
}

// Lookup finds a mapping entry by key. It returns false for non-dict values.
func (v Value) Lookup(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	for _, entry := range v.DictVal {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return Value{}, false
}

// Equal reports semantic equality between two decoded values. Ints and floats
// compare numerically, and a constructed series equals a list holding the
// same numbers, so canonical re-rendering round-trips to an equal value.
func (v Value) Equal(o Value) bool {
	if n, ok := v.Number(); ok {
		if m, mok := o.Number(); mok {
			return n == m
		}
		return false
	}

	if v.Kind == KindSeries || o.Kind == KindSeries {
		a, aok := v.numbers()
		b, bok := o.numbers()
		if aok && bok {
			return equalNums(a, b)
		}
		return false
	}

	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindBool:
		return v.BoolVal == o.BoolVal
	case KindString:
		return v.StrVal == o.StrVal
	case KindNone:
		return true
	case KindTuple:
		return equalNums(v.Nums, o.Nums)
	case KindList:
		if len(v.ListVal) != len(o.ListVal) {
			return false
		}
		for i := range v.ListVal {
			if !v.ListVal[i].Equal(o.ListVal[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(v.DictVal) != len(o.DictVal) {
			return false
		}
		for _, entry := range v.DictVal {
			other, ok := o.Lookup(entry.Key)
			if !ok || !entry.Value.Equal(other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numbers flattens series, tuples, and all-numeric lists into a float slice.
func (v Value) numbers() ([]float64, bool) {
	switch v.Kind {
	case KindSeries, KindTuple:
		return v.Nums, true
	case KindList:
		out := make([]float64, 0, len(v.ListVal))
		for _, item := range v.ListVal {
			n, ok := item.Number()
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}

func equalNums(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FromGo converts a native Go value into a decoded Value so runtime writers
// (GUI handlers, HTTP payloads, persisted stores) pass through the same
// validation path as schema defaults.
func FromGo(value any) (Value, error) {
	switch v := value.(type) {
	case nil:
		return None(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case []float64:
		return Tuple(append([]float64(nil), v...)...), nil
	case []int:
		nums := make([]float64, len(v))
		for i, n := range v {
			nums[i] = float64(n)
		}
		return Tuple(nums...), nil
	case []string:
		items := make([]Value, len(v))
		for i, s := range v {
			items[i] = String(s)
		}
		return List(items...), nil
	case []Value:
		return List(append([]Value(nil), v...)...), nil
	case []any:
		items := make([]Value, len(v))
		for i, raw := range v {
			item, err := FromGo(raw)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, key := range keys {
			item, err := FromGo(v[key])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: key, Value: item})
		}
		return Dict(entries...), nil
	default:
		return Value{}, fmt.Errorf("literal: unsupported Go value %T", value)
	}
}
