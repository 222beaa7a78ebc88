package tracking

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is wrapped by every PositionError.
	ErrOutOfBounds = errors.New("stack pointer out of bounds")
	// ErrNoFile is returned when a query is made without a file.
	ErrNoFile = errors.New("no file given")
)

// PositionError reports a query position that names no token of the file.
type PositionError struct {
	Method string
	Arg    string
	Value  int
	Len    int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%s(): argument $%s must be a stack pointer which exists in the file (0-%d), got %d",
		e.Method, e.Arg, e.Len-1, e.Value)
}

func (e *PositionError) Unwrap() error {
	return ErrOutOfBounds
}
