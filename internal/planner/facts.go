package planner

import (
	"fmt"
	"sort"
)

// Facts is a partial mapping of fact keys to values. Values are numbers,
// strings, booleans or nil; see Normalize.
type Facts map[string]any

// Normalize converts v to the canonical representation used for comparison.
// All integer and float kinds become float64. Strings, booleans and nil are
// returned unchanged. Any other type is rejected with ErrInvalidValue.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil, string, bool, float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidValue, v)
	}
}

// Equal reports whether two fact values are equal after normalization.
// Nil equals nil, which is also what an absent key looks up as.
func Equal(a, b any) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

// Normalized returns a copy of f with every value normalized.
func (f Facts) Normalized() (Facts, error) {
	out := make(Facts, len(f))
	for k, v := range f {
		n, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Keys returns the fact keys in sorted order.
func (f Facts) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge combines fragments left to right. A later fragment overrides an
// earlier one on key collision.
func Merge(fragments ...Facts) (Facts, error) {
	merged := make(Facts)
	for i, fragment := range fragments {
		n, err := fragment.Normalized()
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		for k, v := range n {
			merged[k] = v
		}
	}
	return merged, nil
}
