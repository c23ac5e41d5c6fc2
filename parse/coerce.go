package parse

import "math"

// AsInt64 converts decoded integers, enum values and integral floats to
// int64. It fails for uint64 values above math.MaxInt64.
func AsInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= math.MinInt64 && v < math.MaxInt64 && v == math.Trunc(v) {
			return int64(v), true
		}
	case float32:
		f := float64(v)
		if f >= math.MinInt64 && f < math.MaxInt64 && f == math.Trunc(f) {
			return int64(f), true
		}
	case EnumValue:
		return v.Value, true
	}
	return 0, false
}

// count resolves a length or repeat count argument. Negative and
// non-integral values are rejected.
func count(arg any) (int, bool) {
	n, ok := AsInt64(arg)
	if !ok || n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
