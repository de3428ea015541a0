package server

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrListen        = errors.New("failed to listen")
	ErrAccept        = errors.New("failed to accept connection")
)
