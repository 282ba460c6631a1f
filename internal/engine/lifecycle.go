package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/fgrehm/dockman/internal/driver"
	"github.com/fgrehm/dockman/internal/project"
)

// Labels set on every container created by dockman.
const (
	LabelProject   = "dockman.project"
	LabelContainer = "dockman.container"
)

// lifecycle drives single containers through their state transitions. It
// never follows dependencies; callers pass containers in chain order.
type lifecycle struct {
	driver driver.Driver
	emit   func(Event)
}

// start ensures c is running. A running container is left alone, a stopped
// one is started and an absent one is created from its definition. args
// replace the configured command when not empty.
func (l *lifecycle) start(ctx context.Context, c *project.Container, args []string) error {
	name := c.QualifiedName()
	state, err := l.state(ctx, name)
	if err != nil {
		return err
	}

	switch state {
	case driver.StateRunning:
		l.announce(name, "already running")
		l.done(name)
		return nil

	case driver.StateStopped:
		l.action(name, "starting")
		if err := l.driver.StartContainer(ctx, name); err != nil {
			return l.fail(name, "start", err)
		}

	default:
		cmd := args
		if len(cmd) == 0 {
			cmd = c.Cmd
		}
		opts := runOptions(c, name, c.Ports, cmd)
		opts.Daemon = true

		l.action(name, "creating")
		if err := l.driver.RunContainer(ctx, opts); err != nil {
			return l.fail(name, "run", err)
		}
	}

	l.done(name)
	return nil
}

// startInteractive creates a new auto-removed container attached to the
// terminal. When the primary name is taken the first free "name.N" is used,
// without port bindings.
func (l *lifecycle) startInteractive(ctx context.Context, c *project.Container, args []string) error {
	name, ports, err := l.interactiveName(ctx, c)
	if err != nil {
		return err
	}

	cmd := args
	if len(cmd) == 0 {
		cmd = c.InteractiveCmd
	}
	opts := runOptions(c, name, ports, cmd)
	opts.Interactive = true
	opts.AutoRemove = true

	l.announce(name, "attaching")
	if err := l.driver.RunContainer(ctx, opts); err != nil {
		return l.fail(name, "run", err)
	}
	l.done(name)
	return nil
}

func (l *lifecycle) interactiveName(ctx context.Context, c *project.Container) (string, []project.Bind, error) {
	primary := c.QualifiedName()
	state, err := l.state(ctx, primary)
	if err != nil {
		return "", nil, err
	}
	if state == driver.StateAbsent {
		return primary, c.Ports, nil
	}

	for n := 1; n <= MaxInteractiveSuffix; n++ {
		name := fmt.Sprintf("%s.%d", primary, n)
		state, err := l.state(ctx, name)
		if err != nil {
			return "", nil, err
		}
		if state == driver.StateAbsent {
			return name, nil, nil
		}
	}
	l.result(primary, SeverityError, ErrNoFreeSuffix.Error())
	return "", nil, fmt.Errorf("%w: %s.1 to %s.%d are taken", ErrNoFreeSuffix, primary, primary, MaxInteractiveSuffix)
}

// stop ensures c is not running. Nothing to stop is not a failure.
func (l *lifecycle) stop(ctx context.Context, c *project.Container) error {
	name := c.QualifiedName()
	state, err := l.state(ctx, name)
	if err != nil {
		return err
	}
	return l.stopState(ctx, name, state)
}

func (l *lifecycle) stopState(ctx context.Context, name string, state driver.State) error {
	switch state {
	case driver.StateRunning:
		l.action(name, "stopping")
		if err := l.driver.StopContainer(ctx, name); err != nil {
			return l.fail(name, "stop", err)
		}
	case driver.StateStopped:
		l.announce(name, "already stopped")
	default:
		l.announce(name, "does not exist")
	}
	l.done(name)
	return nil
}

// remove stops c if needed and deletes it.
func (l *lifecycle) remove(ctx context.Context, c *project.Container) error {
	name := c.QualifiedName()
	state, err := l.state(ctx, name)
	if err != nil {
		return err
	}

	if state == driver.StateRunning {
		if err := l.stopState(ctx, name, state); err != nil {
			return err
		}
		if state, err = l.state(ctx, name); err != nil {
			return err
		}
	}

	if state == driver.StateAbsent {
		l.announce(name, "does not exist")
		l.done(name)
		return nil
	}

	l.action(name, "removing")
	if err := l.driver.DeleteContainer(ctx, name); err != nil {
		return l.fail(name, "rm", err)
	}
	l.done(name)
	return nil
}

func (l *lifecycle) state(ctx context.Context, name string) (driver.State, error) {
	state, err := l.driver.ContainerState(ctx, name)
	if err != nil {
		return driver.StateAbsent, l.fail(name, "inspect", err)
	}
	return state, nil
}

func (l *lifecycle) announce(name, text string) {
	l.emit(Event{Container: name, Phase: PhaseAnnounce, Severity: SeverityInfo, Text: text})
}

func (l *lifecycle) action(name, text string) {
	l.emit(Event{Container: name, Phase: PhaseAction, Severity: SeverityInfo, Text: text})
}

func (l *lifecycle) result(name string, severity Severity, text string) {
	l.emit(Event{Container: name, Phase: PhaseResult, Severity: severity, Text: text})
}

func (l *lifecycle) done(name string) {
	l.result(name, SeveritySuccess, "done")
}

// fail emits the error and returns it as a *RuntimeError.
func (l *lifecycle) fail(name, op string, err error) error {
	l.result(name, SeverityError, err.Error())
	return &RuntimeError{Container: name, Op: op, Err: err}
}

// runOptions builds the runtime parameters for running c under name.
func runOptions(c *project.Container, name string, ports []project.Bind, cmd []string) *driver.RunOptions {
	opts := &driver.RunOptions{
		Image: c.Image,
		Name:  name,
		Labels: map[string]string{
			LabelProject:   c.Project,
			LabelContainer: c.Name,
		},
		Cmd: cmd,
	}
	for _, n := range c.VolumesFrom {
		opts.VolumesFrom = append(opts.VolumesFrom, c.Qualify(n))
	}
	for _, v := range c.Volumes {
		opts.Volumes = append(opts.Volumes, driver.Bind{Host: v.Host, Container: v.Container})
	}
	for _, p := range ports {
		opts.Ports = append(opts.Ports, driver.Bind{Host: p.Host, Container: p.Container})
	}
	for _, link := range c.Links {
		opts.Links = append(opts.Links, driver.Link{Name: c.Qualify(link.Target), Alias: link.Alias})
	}
	for _, kv := range c.Env {
		if strings.HasPrefix(kv, "container_name=") {
			continue
		}
		opts.Env = append(opts.Env, kv)
	}
	opts.Env = append(opts.Env, "container_name="+name)
	return opts
}
