package engine

import (
	"errors"
	"fmt"
)

// MaxInteractiveSuffix bounds the search for a free interactive container
// name.
const MaxInteractiveSuffix = 9999

// ErrNoFreeSuffix is returned when every interactive container name up to
// MaxInteractiveSuffix is taken.
var ErrNoFreeSuffix = errors.New("no free interactive container name")

// RuntimeError reports a failed container runtime call.
type RuntimeError struct {
	// Container is the runtime name of the container.
	Container string

	// Op is the runtime operation: inspect, run, start, stop or rm.
	Op  string
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Container, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
