package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/fgrehm/dockman/internal/driver"
)

// lazyDriver detects the container runtime on the first runtime call. The
// engine resolves names and chains before that call, so configuration
// mistakes are reported even on hosts without docker or podman.
type lazyDriver struct {
	detect func(ctx context.Context) (driver.Driver, error)

	once sync.Once
	d    driver.Driver
	err  error
}

func (l *lazyDriver) get(ctx context.Context) (driver.Driver, error) {
	l.once.Do(func() {
		l.d, l.err = l.detect(ctx)
		if l.err != nil {
			l.err = fmt.Errorf("initializing container runtime: %w", l.err)
		}
	})
	return l.d, l.err
}

func (l *lazyDriver) ContainerState(ctx context.Context, name string) (driver.State, error) {
	d, err := l.get(ctx)
	if err != nil {
		return driver.StateAbsent, err
	}
	return d.ContainerState(ctx, name)
}

func (l *lazyDriver) RunContainer(ctx context.Context, options *driver.RunOptions) error {
	d, err := l.get(ctx)
	if err != nil {
		return err
	}
	return d.RunContainer(ctx, options)
}

func (l *lazyDriver) StartContainer(ctx context.Context, name string) error {
	d, err := l.get(ctx)
	if err != nil {
		return err
	}
	return d.StartContainer(ctx, name)
}

func (l *lazyDriver) StopContainer(ctx context.Context, name string) error {
	d, err := l.get(ctx)
	if err != nil {
		return err
	}
	return d.StopContainer(ctx, name)
}

func (l *lazyDriver) DeleteContainer(ctx context.Context, name string) error {
	d, err := l.get(ctx)
	if err != nil {
		return err
	}
	return d.DeleteContainer(ctx, name)
}
