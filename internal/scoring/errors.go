package scoring

import "errors"

var (
	ErrInvalidSignal = errors.New("invalid feature signal")
	ErrInvalidClass  = errors.New("invalid class")
	ErrInvalidConfig = errors.New("invalid configuration")
)
