// Package errs defines the sentinel errors shared across tenpack packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...", errs.ErrX) to attach
// context while keeping errors.Is matching intact.
package errs

import "errors"

var (
	// ErrMalformedLine indicates a tensor file line that could not be parsed
	// as coordinates followed by a value.
	ErrMalformedLine = errors.New("malformed tensor file line")

	// ErrCoordinateOverflow indicates a 1-based coordinate in a tensor file
	// that does not fit in a signed 32-bit integer.
	ErrCoordinateOverflow = errors.New("coordinate exceeds maximum supported index")

	// ErrCoordinateOutOfRange indicates an inserted coordinate outside the
	// tensor's dimensions.
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrFormatMismatch indicates a format whose order or mode encodings are
	// incompatible with the tensor data being packed.
	ErrFormatMismatch = errors.New("format incompatible with tensor data")

	// ErrIndexOverflow indicates a value pushed into a typed index vector
	// that does not fit the vector's integer type.
	ErrIndexOverflow = errors.New("index value does not fit vector type")

	// ErrUnsupported indicates an operation that is intentionally not
	// implemented for the given inputs.
	ErrUnsupported = errors.New("operation not supported")

	// ErrStorageUndefined indicates an operation on a storage that was not
	// created with storage.New (the zero value).
	ErrStorageUndefined = errors.New("storage is undefined")

	// ErrInvalidIndexType indicates an index type byte outside the supported set.
	ErrInvalidIndexType = errors.New("invalid index type")

	// ErrInvalidValueType indicates a value type byte outside the supported set.
	ErrInvalidValueType = errors.New("invalid value type")

	// ErrInvalidModeKind indicates a mode kind byte outside the supported set.
	ErrInvalidModeKind = errors.New("invalid mode kind")

	// ErrInvalidBlobSize indicates a serialized blob, or a section or array
	// within it, whose size does not match what its header declares.
	ErrInvalidBlobSize = errors.New("invalid blob size")

	// ErrInvalidMagicNumber indicates a blob whose header magic does not match.
	ErrInvalidMagicNumber = errors.New("invalid magic number")

	// ErrChecksumMismatch indicates a blob whose trailing checksum does not
	// match its content.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)
