package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds = errors.New("index out of range")
	ErrNoTerminal  = errors.New("interactive shell requires a terminal")
)
