package tensor

import "fmt"

// DType identifies the element type of a Dense container.
type DType int

// Supported element types.
const (
	Bool DType = iota
	Int32
	Int64
	Float32
	Float64
)

// String returns the Go name of the element type.
func (d DType) String() string {
	switch d {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("DType(%d)", int(d))
	}
}

// DTypeOf reports the element type a scalar Go value maps to. Plain int maps
// to Int64. The second return is false for values with no numeric mapping.
func DTypeOf(v any) (DType, bool) {
	switch v.(type) {
	case bool:
		return Bool, true
	case int, int64:
		return Int64, true
	case int32:
		return Int32, true
	case float32:
		return Float32, true
	case float64:
		return Float64, true
	default:
		return 0, false
	}
}

// alloc returns zeroed flat storage for n elements of the given type.
func alloc(dtype DType, n int) any {
	switch dtype {
	case Bool:
		return make([]bool, n)
	case Int32:
		return make([]int32, n)
	case Int64:
		return make([]int64, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	default:
		return nil
	}
}

// convert normalizes a scalar Go value to the storage representation of the
// given element type. Plain int converts to int64; no other cross-type
// conversion is performed.
func convert(dtype DType, v any) (any, bool) {
	switch dtype {
	case Bool:
		b, ok := v.(bool)
		return b, ok
	case Int32:
		n, ok := v.(int32)
		return n, ok
	case Int64:
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		}
		return nil, false
	case Float32:
		f, ok := v.(float32)
		return f, ok
	case Float64:
		f, ok := v.(float64)
		return f, ok
	default:
		return nil, false
	}
}
