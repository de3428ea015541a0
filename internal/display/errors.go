package display

import "errors"

var ErrDisplayInit = errors.New("failed to initialize display")
