package driver

import (
	"context"
)

// Driver abstracts the container runtime (Docker or Podman). Containers are
// addressed by name; the runtime's own bookkeeping is the source of truth.
type Driver interface {
	// ContainerState reports whether a container with the given name exists
	// and whether it is running.
	ContainerState(ctx context.Context, name string) (State, error)

	// RunContainer creates and starts a container with the given options.
	// Interactive runs attach the caller's terminal and return when the
	// container exits.
	RunContainer(ctx context.Context, options *RunOptions) error

	// StartContainer starts a stopped container.
	StartContainer(ctx context.Context, name string) error

	// StopContainer stops a running container.
	StopContainer(ctx context.Context, name string) error

	// DeleteContainer removes a stopped container.
	DeleteContainer(ctx context.Context, name string) error
}
