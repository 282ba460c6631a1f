package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fgrehm/dockman/internal/config"
	"github.com/fgrehm/dockman/internal/driver"
	"github.com/fgrehm/dockman/internal/project"
)

// mockDriver is an in-memory runtime. It records every call and keeps
// container states up to date the way a real runtime would.
type mockDriver struct {
	states   map[string]driver.State
	fallback driver.State
	errors   map[string]error // keyed by "op name"
	calls    []string
	runs     []*driver.RunOptions
}

func newMockDriver() *mockDriver {
	return &mockDriver{
		states: make(map[string]driver.State),
		errors: make(map[string]error),
	}
}

func (m *mockDriver) record(op, name string) error {
	m.calls = append(m.calls, op+" "+name)
	return m.errors[op+" "+name]
}

func (m *mockDriver) ContainerState(ctx context.Context, name string) (driver.State, error) {
	if err := m.record("inspect", name); err != nil {
		return driver.StateAbsent, err
	}
	if s, ok := m.states[name]; ok {
		return s, nil
	}
	return m.fallback, nil
}

func (m *mockDriver) RunContainer(ctx context.Context, options *driver.RunOptions) error {
	if err := m.record("run", options.Name); err != nil {
		return err
	}
	m.runs = append(m.runs, options)
	if options.Daemon {
		m.states[options.Name] = driver.StateRunning
	}
	return nil
}

func (m *mockDriver) StartContainer(ctx context.Context, name string) error {
	if err := m.record("start", name); err != nil {
		return err
	}
	m.states[name] = driver.StateRunning
	return nil
}

func (m *mockDriver) StopContainer(ctx context.Context, name string) error {
	if err := m.record("stop", name); err != nil {
		return err
	}
	m.states[name] = driver.StateStopped
	return nil
}

func (m *mockDriver) DeleteContainer(ctx context.Context, name string) error {
	if err := m.record("rm", name); err != nil {
		return err
	}
	delete(m.states, name)
	return nil
}

// mutations returns every recorded call that changes runtime state.
func (m *mockDriver) mutations() []string {
	var out []string
	for _, c := range m.calls {
		if !strings.HasPrefix(c, "inspect ") {
			out = append(out, c)
		}
	}
	return out
}

// runFor returns the options of the last run of name.
func (m *mockDriver) runFor(t *testing.T, name string) *driver.RunOptions {
	t.Helper()
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].Name == name {
			return m.runs[i]
		}
	}
	t.Fatalf("no run recorded for %s", name)
	return nil
}

type mockLocker struct {
	calls   *[]string
	lockErr error
}

func (l *mockLocker) Lock(ctx context.Context) error {
	*l.calls = append(*l.calls, "lock")
	return l.lockErr
}

func (l *mockLocker) Unlock() error {
	*l.calls = append(*l.calls, "unlock")
	return nil
}

type testEngine struct {
	*Engine
	driver *mockDriver
	events []Event
}

func newTestEngine(t *testing.T, data string) *testEngine {
	t.Helper()
	cfg, err := config.ParseBytes([]byte(data))
	if err != nil {
		t.Fatalf("ParseBytes: %v", err)
	}
	p, err := project.New(cfg, project.Options{
		Name:      "proj",
		Dir:       "/work/proj",
		HomeDir:   "/home/dev",
		LookupEnv: func(string) (string, bool) { return "", false },
	})
	if err != nil {
		t.Fatalf("project.New: %v", err)
	}

	te := &testEngine{driver: newMockDriver()}
	te.Engine = New(te.driver, p, slog.New(slog.NewTextHandler(io.Discard, nil)))
	te.SetProgress(func(ev Event) { te.events = append(te.events, ev) })
	return te
}

func assertCalls(t *testing.T, got []string, want ...string) {
	t.Helper()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls:\n  got  %q\n  want %q", got, want)
	}
}

func assertRuntimeError(t *testing.T, err error, op, container string) {
	t.Helper()
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RuntimeError", err)
	}
	if rerr.Op != op || rerr.Container != container {
		t.Errorf("RuntimeError = {%s %s}, want {%s %s}", rerr.Op, rerr.Container, op, container)
	}
}
