package decoder

import "errors"

// Error classes returned by the decoder. Use errors.Is to classify.
var (
	// ErrIO reports that the input file could not be read.
	ErrIO = errors.New("unable to read input file")
	// ErrMalformed reports that the PLY document could not be tokenized.
	ErrMalformed = errors.New("malformed PLY data")
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid PLY content")
	// ErrDeduplication reports a failed post-decode deduplication pass.
	ErrDeduplication = errors.New("could not deduplicate attribute values")
	// ErrNilGeometry reports a nil output geometry.
	ErrNilGeometry = errors.New("output geometry is nil")
)

// ValidationError is a named validation failure with a stable message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation failures.
var (
	ErrNoFaces              = &ValidationError{Msg: "no faces defined"}
	ErrMissingVertexElement = &ValidationError{Msg: "vertex element is missing"}
	ErrMissingPosition      = &ValidationError{Msg: "x, y, or z property is missing"}
	ErrPositionTypeMismatch = &ValidationError{Msg: "x, y, and z properties must have the same type"}
	ErrPositionType         = &ValidationError{Msg: "x, y, and z properties must be of type float32 or int32"}
)

func channelTypeError(name string) error {
	return &ValidationError{Msg: "type of '" + name + "' property must be uint8"}
}
