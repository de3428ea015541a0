package piface

import "errors"

var (
	ErrPeriphInitFailed = errors.New("failed to initialize periph.io")
	ErrSPIPortOpen      = errors.New("failed to open SPI port")
	ErrSPIConnect       = errors.New("failed to connect to SPI")
	ErrRegisterWrite    = errors.New("failed to write register")
	ErrRegisterRead     = errors.New("failed to read register")
	ErrInvalidOutputID  = errors.New("invalid output id")
)
