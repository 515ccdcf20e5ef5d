package params

import (
	"fmt"

	"github.com/goliatone/go-pipeparams/pkg/literal"
)

// Typed accessors for pipeline code that knows what it asked the schema for.
// Each fails when the effective value does not carry the requested kind, so
// a schema edit cannot silently feed a processing step the wrong type.

// Float returns the effective value as a float64.
func (r *Registry) Float(key string) (float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := value.Number()
	if !ok {
		return 0, fmt.Errorf("params: %s holds %s, not a number", key, value.Kind)
	}
	return n, nil
}

// Int returns the effective value as an int64.
func (r *Registry) Int(key string) (int64, error) {
	value, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	switch value.Kind {
	case literal.KindInt:
		return value.IntVal, nil
	case literal.KindFloat:
		n := int64(value.FloatVal)
		if float64(n) == value.FloatVal {
			return n, nil
		}
	}
	return 0, fmt.Errorf("params: %s holds %s, not an integer", key, value.Kind)
}

// Bool returns the effective value as a bool.
func (r *Registry) Bool(key string) (bool, error) {
	value, err := r.Get(key)
	if err != nil {
		return false, err
	}
	if value.Kind != literal.KindBool {
		return false, fmt.Errorf("params: %s holds %s, not a boolean", key, value.Kind)
	}
	return value.BoolVal, nil
}

// Text returns the effective value as a string.
func (r *Registry) Text(key string) (string, error) {
	value, err := r.Get(key)
	if err != nil {
		return "", err
	}
	if value.Kind != literal.KindString {
		return "", fmt.Errorf("params: %s holds %s, not a string", key, value.Kind)
	}
	return value.StrVal, nil
}

// Floats returns the effective value as a numeric slice. Tuples, constructed
// series, and all-numeric lists qualify.
func (r *Registry) Floats(key string) ([]float64, error) {
	value, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	switch value.Kind {
	case literal.KindTuple, literal.KindSeries:
		return append([]float64(nil), value.Nums...), nil
	case literal.KindList:
		nums := make([]float64, 0, len(value.ListVal))
		for _, item := range value.ListVal {
			n, ok := item.Number()
			if !ok {
				return nil, fmt.Errorf("params: %s holds a non-numeric sequence", key)
			}
			nums = append(nums, n)
		}
		return nums, nil
	default:
		return nil, fmt.Errorf("params: %s holds %s, not a numeric sequence", key, value.Kind)
	}
}
