package protocol

import "errors"

// Output configuration errors
var (
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrNoOutputs      = errors.New("at least one output is required")
)

// Wire errors
var (
	ErrUnknownByteOrder = errors.New("unknown byte order")
	ErrShortRead        = errors.New("short read")
	ErrSend             = errors.New("failed to send")
	ErrReceive          = errors.New("failed to receive")
)
