package gpiocdev

import "errors"

// Hardware initialization errors
var (
	ErrChipOpenFailed    = errors.New("failed to open GPIO chip")
	ErrLineRequestFailed = errors.New("failed to request GPIO line")
)

// Output operation errors
var (
	ErrOutputTurnOn   = errors.New("failed to turn on output")
	ErrOutputTurnOff  = errors.New("failed to turn off output")
	ErrOutputGetState = errors.New("failed to get output state")
	ErrInvalidOutput  = errors.New("invalid output id")
)
