package car

import "encoding/json"

// truthy reports whether a decoded JSON value counts as present for the
// nested rules. null, false, zero and the empty string do not.
// Empty arrays and objects do.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String() != ""
		}
		return f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}
