package controller

import "errors"

var (
	ErrNotEnoughOutputs = errors.New("collection has fewer outputs than names")
)
