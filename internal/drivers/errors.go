package drivers

import "errors"

var (
	ErrDriverExists   = errors.New("driver already registered")
	ErrUnknownDriver  = errors.New("unknown driver")
	ErrInvalidOptions = errors.New("invalid driver options")
	ErrNoPins         = errors.New("no pins configured")
)
