package data

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// String returns the named field as a string. The error reports whether
// the field was absent or mistyped, which callers fold into their
// malformed-payload handling.
func String(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string (%T)", key, v)
	}
	return s, nil
}

// Int returns the named field as an int64. The generic decoder can
// surface CBOR integers as int, int64, or (for data that transited
// JSON) float64; all are normalized here.
func Int(obj map[string]any, key string) (int64, error) {
	v, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing field: %s", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("field %s is not a safe integer: %f", key, n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %s is not an integer (%T)", key, v)
	}
}

// Bool returns the named field as a bool, defaulting to false when the
// field is absent.
func Bool(obj map[string]any, key string) (bool, error) {
	v, ok := obj[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %s is not a bool (%T)", key, v)
	}
	return b, nil
}

// Bytes returns the named field as a byte string.
func Bytes(obj map[string]any, key string) ([]byte, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing field: %s", key)
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("field %s is not a byte string (%T)", key, v)
	}
	return b, nil
}

// List returns the named field as a generic array.
func List(obj map[string]any, key string) ([]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing field: %s", key)
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %s is not an array (%T)", key, v)
	}
	return l, nil
}

// Object returns the named field as a nested object.
func Object(obj map[string]any, key string) (map[string]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing field: %s", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %s is not an object (%T)", key, v)
	}
	return m, nil
}

// Link returns the named field as a CID link. A CBOR null (or absent
// field) yields a nil pointer and no error; deletion ops carry null
// cids on the wire.
func Link(obj map[string]any, key string) (*cid.Cid, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch c := v.(type) {
	case cid.Cid:
		return &c, nil
	case *cid.Cid:
		return c, nil
	default:
		return nil, fmt.Errorf("field %s is not a CID link (%T)", key, v)
	}
}

// Strings converts an optional array field to []string, ignoring
// non-string members.
func Strings(obj map[string]any, key string) []string {
	l, err := List(obj, key)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, v := range l {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
