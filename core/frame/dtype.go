package frame

import (
	"math"

	"github.com/x448/float16"
)

// DType is the storage type a column is accounted and rounded as.
// Values are always held as float64 or string in memory; the dtype decides
// their precision and their contribution to MemoryUsage.
type DType int

const (
	Float64 DType = iota
	Float32
	Float16
	Int64
	Int32
	Int16
	Int8
	Object
)

var dtypeNames = map[DType]string{
	Float64: "float64",
	Float32: "float32",
	Float16: "float16",
	Int64:   "int64",
	Int32:   "int32",
	Int16:   "int16",
	Int8:    "int8",
	Object:  "object",
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	return "unknown"
}

// ParseDType is the inverse of DType.String.
func ParseDType(name string) (DType, bool) {
	for d, n := range dtypeNames {
		if n == name {
			return d, true
		}
	}
	return Float64, false
}

// Size returns the number of bytes one element occupies.
// Object columns count one pointer per element, as pandas' shallow memory_usage.
func (d DType) Size() int {
	switch d {
	case Float64, Int64, Object:
		return 8
	case Float32, Int32:
		return 4
	case Float16, Int16:
		return 2
	case Int8:
		return 1
	default:
		return 8
	}
}

// IsInt reports whether d is one of the integer dtypes.
func (d DType) IsInt() bool {
	return d == Int64 || d == Int32 || d == Int16 || d == Int8
}

// IsFloat reports whether d is one of the floating point dtypes.
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32 || d == Float16
}

// cast rounds v to the precision of d.
func (d DType) cast(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	switch d {
	case Float32:
		return float64(float32(v))
	case Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	case Int64, Int32, Int16, Int8:
		return math.Trunc(v)
	default:
		return v
	}
}
