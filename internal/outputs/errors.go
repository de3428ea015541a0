package outputs

import "errors"

var (
	ErrInvalidOutputID = errors.New("invalid output id")
	ErrWriteFailed     = errors.New("simulated write failure")
)
