package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fgrehm/dockman/internal/driver"
	"github.com/fgrehm/dockman/internal/project"
)

// Locker serializes operations on one project across processes.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
}

// Engine runs project operations against a container runtime. Every
// operation resolves its chain before the first runtime call, so
// configuration problems never leave a partially applied change behind.
type Engine struct {
	driver   driver.Driver
	project  *project.Project
	logger   *slog.Logger
	progress func(Event)
	locker   Locker
}

// New creates an Engine with the given dependencies.
func New(d driver.Driver, p *project.Project, logger *slog.Logger) *Engine {
	return &Engine{
		driver:  d,
		project: p,
		logger:  logger,
	}
}

// SetProgress sets a callback for user-facing progress events.
func (e *Engine) SetProgress(fn func(Event)) {
	e.progress = fn
}

// SetLocker sets the lock held while an operation changes runtime state.
func (e *Engine) SetLocker(l Locker) {
	e.locker = l
}

// Project returns the project the engine operates on.
func (e *Engine) Project() *project.Project {
	return e.project
}

// reportProgress sends an event to the progress callback (if set) and logs
// it at debug level.
func (e *Engine) reportProgress(ev Event) {
	if e.progress != nil {
		e.progress(ev)
	}
	e.logger.Debug(ev.Text, "container", ev.Container, "phase", ev.Phase, "severity", ev.Severity)
}

func (e *Engine) lifecycle() *lifecycle {
	return &lifecycle{driver: e.driver, emit: e.reportProgress}
}

// RunOptions controls the behavior of Run.
type RunOptions struct {
	// Interactive attaches the terminal to a new, auto-removed container.
	Interactive bool

	// Args replace the configured command of the target container.
	Args []string
}

// Run starts the named container after its dependencies.
func (e *Engine) Run(ctx context.Context, name string, opts RunOptions) error {
	c, err := e.project.Container(name)
	if err != nil {
		return err
	}
	chain, err := e.project.Graph().Chain(c)
	if err != nil {
		return err
	}
	e.logger.Debug("run", "container", c.QualifiedName(), "chain", chainNames(chain), "interactive", opts.Interactive)

	unlock, err := e.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	lc := e.lifecycle()
	deps, target := chain[:len(chain)-1], chain[len(chain)-1]
	for _, dep := range deps {
		if err := lc.start(ctx, dep, nil); err != nil {
			return err
		}
	}

	if !opts.Interactive {
		return lc.start(ctx, target, opts.Args)
	}

	// The session may last for hours; other invocations must not wait on it.
	unlock()
	return lc.startInteractive(ctx, target, opts.Args)
}

// Up starts every container of the group along with its dependencies.
func (e *Engine) Up(ctx context.Context, group string) error {
	g, err := e.project.Group(group)
	if err != nil {
		return err
	}
	chain, err := e.project.Graph().ChainUnion(g.Members, false)
	if err != nil {
		return err
	}
	e.logger.Debug("up", "group", g.Name, "chain", chainNames(chain))

	return e.apply(ctx, chain, func(lc *lifecycle, c *project.Container) error {
		return lc.start(ctx, c, nil)
	})
}

// Down stops every container of the group, dependents first.
func (e *Engine) Down(ctx context.Context, group string) error {
	g, err := e.project.Group(group)
	if err != nil {
		return err
	}
	chain, err := e.project.Graph().ChainUnion(g.Members, true)
	if err != nil {
		return err
	}
	e.logger.Debug("down", "group", g.Name, "chain", chainNames(chain))

	return e.apply(ctx, chain, func(lc *lifecycle, c *project.Container) error {
		return lc.stop(ctx, c)
	})
}

// Stop stops the named container after everything that depends on it.
func (e *Engine) Stop(ctx context.Context, name string) error {
	chain, err := e.reverseChain(name)
	if err != nil {
		return err
	}
	e.logger.Debug("stop", "chain", chainNames(chain))

	return e.apply(ctx, chain, func(lc *lifecycle, c *project.Container) error {
		return lc.stop(ctx, c)
	})
}

// Remove removes the named container after everything that depends on it.
func (e *Engine) Remove(ctx context.Context, name string) error {
	chain, err := e.reverseChain(name)
	if err != nil {
		return err
	}
	e.logger.Debug("remove", "chain", chainNames(chain))

	return e.apply(ctx, chain, func(lc *lifecycle, c *project.Container) error {
		return lc.remove(ctx, c)
	})
}

func (e *Engine) reverseChain(name string) ([]*project.Container, error) {
	c, err := e.project.Container(name)
	if err != nil {
		return nil, err
	}
	return e.project.Graph().ReverseChain(c)
}

// apply runs fn on every container of chain in order, under the project
// lock. The first failure aborts the rest of the chain.
func (e *Engine) apply(ctx context.Context, chain []*project.Container, fn func(*lifecycle, *project.Container) error) error {
	unlock, err := e.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	lc := e.lifecycle()
	for _, c := range chain {
		if err := fn(lc, c); err != nil {
			return err
		}
	}
	return nil
}

// lock acquires the project lock and returns a function releasing it. The
// function is safe to call more than once.
func (e *Engine) lock(ctx context.Context) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}
	if err := e.locker.Lock(ctx); err != nil {
		return nil, fmt.Errorf("locking project %s: %w", e.project.Name, err)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		if err := e.locker.Unlock(); err != nil {
			e.logger.Warn("failed to release project lock", "error", err)
		}
	}, nil
}

func chainNames(chain []*project.Container) []string {
	out := make([]string, len(chain))
	for i, c := range chain {
		out[i] = c.QualifiedName()
	}
	return out
}
