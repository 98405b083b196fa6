package spectral

import "fmt"

// Float constrains the element type of a field arena. Single and
// double precision are the only supported precisions.
type Float interface {
	~float32 | ~float64
}

// DataType is the runtime precision selector. It is what configuration
// layers validate and hand to the driver, which instantiates the
// matching generic mesh.
type DataType uint8

const (
	Float32 DataType = iota + 1
	Float64
)

// ParseDataType maps the configuration tokens "f4"/"f8" (and the
// aliases "single"/"double") to a DataType. Any other token is a
// configuration error.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "f4", "single", "float32":
		return Float32, nil
	case "f8", "double", "float64":
		return Float64, nil
	}
	return 0, fmt.Errorf("precision must be f4 or f8, got %q", s)
}

// SizeOfType returns the size in bytes of one element.
func SizeOfType(dt DataType) int64 {
	if dt == Float32 {
		return 4
	}
	return 8
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "f4"
	case Float64:
		return "f8"
	default:
		return fmt.Sprintf("DataType(%d)", uint8(dt))
	}
}
