package utils

import (
	"encoding/json"
	"math"
)

// IsTruthy evaluates a decoded JSON value the way a loosely typed client
// expects: nil, false, 0, NaN and "" are false, everything else is true.
func IsTruthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0
	case int:
		return t != 0
	case int32:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}
