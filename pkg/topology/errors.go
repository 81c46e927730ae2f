package topology

import "errors"

// Builder errors.
var (
	ErrInvalidInput         = errors.New("invalid topology input")
	ErrUnsupportedDimension = errors.New("unsupported coordinate dimension")
	ErrTypeMismatch         = errors.New("ring source type mismatch")
)
