package format

type (
	ModeKind        uint8
	IndexType       uint8
	ValueType       uint8
	CompressionType uint8
)

const (
	Dense  ModeKind = 0x1 // Dense materializes every index in [0, dimension).
	Sparse ModeKind = 0x2 // Sparse materializes pos/idx segment arrays.
	Fixed  ModeKind = 0x3 // Fixed materializes idx padded to a constant fan-out.

	TypeInt8   IndexType = 0x1
	TypeInt16  IndexType = 0x2
	TypeInt32  IndexType = 0x3
	TypeInt64  IndexType = 0x4
	TypeUint8  IndexType = 0x5
	TypeUint16 IndexType = 0x6
	TypeUint32 IndexType = 0x7
	TypeUint64 IndexType = 0x8

	TypeFloat64 ValueType = 0x1 // TypeFloat64 represents IEEE 754 double-precision values.
	TypeFloat32 ValueType = 0x2 // TypeFloat32 represents IEEE 754 single-precision values.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (k ModeKind) String() string {
	switch k {
	case Dense:
		return "Dense"
	case Sparse:
		return "Sparse"
	case Fixed:
		return "Fixed"
	default:
		return "Unknown"
	}
}

// Valid reports whether k is one of the supported mode kinds.
func (k ModeKind) Valid() bool {
	return k >= Dense && k <= Fixed
}

func (t IndexType) String() string {
	switch t {
	case TypeInt8:
		return "Int8"
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeUint8:
		return "Uint8"
	case TypeUint16:
		return "Uint16"
	case TypeUint32:
		return "Uint32"
	case TypeUint64:
		return "Uint64"
	default:
		return "Unknown"
	}
}

// Valid reports whether t is one of the supported index types.
func (t IndexType) Valid() bool {
	return t >= TypeInt8 && t <= TypeUint64
}

// NumBytes returns the byte width of a single element of type t.
func (t IndexType) NumBytes() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32:
		return 4
	case TypeInt64, TypeUint64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether t is a signed integer type.
func (t IndexType) Signed() bool {
	return t >= TypeInt8 && t <= TypeInt64
}

func (v ValueType) String() string {
	switch v {
	case TypeFloat64:
		return "Float64"
	case TypeFloat32:
		return "Float32"
	default:
		return "Unknown"
	}
}

// Valid reports whether v is one of the supported value types.
func (v ValueType) Valid() bool {
	return v == TypeFloat64 || v == TypeFloat32
}

// NumBytes returns the byte width of a single value of type v.
func (v ValueType) NumBytes() int {
	switch v {
	case TypeFloat64:
		return 8
	case TypeFloat32:
		return 4
	default:
		return 0
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the supported compression types.
func (c CompressionType) Valid() bool {
	return c >= CompressionNone && c <= CompressionLZ4
}
