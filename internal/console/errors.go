package console

import "errors"

var (
	// ErrNoCommand means the selection did not name an output; nothing
	// should be sent.
	ErrNoCommand        = errors.New("no command selected")
	ErrServerClosed     = errors.New("server closed the connection")
	ErrRetriesExhausted = errors.New("giving up")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrConnect          = errors.New("failed to connect")
)
