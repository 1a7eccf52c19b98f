package sim

import "errors"

var (
	// ErrInvalidConfiguration reports an engine construction or run argument violation.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvalidParameter reports an invalid distribution or discipline parameter.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyQueue is returned by Discipline.Pop when nothing is buffered.
	ErrEmptyQueue = errors.New("queue is empty")
)
