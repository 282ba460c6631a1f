package oci

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/fgrehm/dockman/internal/driver"
)

// fakeRuntime is a shell script standing in for the docker CLI. Every
// invocation is appended to $FAKE_LOG.
const fakeRuntime = `#!/bin/sh
printf '%s\n' "$*" >> "$FAKE_LOG"
case "$1" in
inspect)
  for last; do :; done
  case "$last" in
    running) echo true ;;
    stopped) echo false ;;
    broken) echo "Cannot connect to the Docker daemon" >&2; exit 1 ;;
    *) echo "Error: No such container: $last" >&2; exit 1 ;;
  esac ;;
run)
  for last; do :; done
  if [ "$last" = "fail" ]; then echo "exit from container" >&2; exit 3; fi
  echo "0123456789ab" ;;
stop)
  if [ "$2" = "stuck" ]; then echo "Error response from daemon: timeout" >&2; exit 1; fi
  echo "$2" ;;
*)
  echo "$2" ;;
esac
`

func newFakeDriver(t *testing.T) (*OCIDriver, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime needs a POSIX shell")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "docker")
	if err := os.WriteFile(bin, []byte(fakeRuntime), 0o755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(dir, "calls.log")
	t.Setenv("FAKE_LOG", logPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &OCIDriver{
		helper:  NewHelper(bin, logger),
		runtime: RuntimeDocker,
		logger:  logger,
		stdin:   strings.NewReader(""),
		stdout:  io.Discard,
		stderr:  io.Discard,
	}, logPath
}

func readCalls(t *testing.T, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatal(err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestFakeRuntime_ContainerState(t *testing.T) {
	d, _ := newFakeDriver(t)
	ctx := context.Background()

	tests := []struct {
		name string
		want driver.State
	}{
		{"running", driver.StateRunning},
		{"stopped", driver.StateStopped},
		{"missing", driver.StateAbsent},
	}
	for _, tt := range tests {
		got, err := d.ContainerState(ctx, tt.name)
		if err != nil {
			t.Errorf("ContainerState(%s): %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ContainerState(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFakeRuntime_ContainerStateError(t *testing.T) {
	d, _ := newFakeDriver(t)

	_, err := d.ContainerState(context.Background(), "broken")
	if err == nil {
		t.Fatal("expected error when the runtime fails")
	}
	if !strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
		t.Errorf("error should carry runtime stderr, got %q", err.Error())
	}
}

func TestFakeRuntime_Lifecycle(t *testing.T) {
	d, logPath := newFakeDriver(t)
	ctx := context.Background()

	err := d.RunContainer(ctx, &driver.RunOptions{
		Image:  "alpine",
		Name:   "proj.a",
		Daemon: true,
		Env:    []string{"container_name=proj.a"},
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if err := d.StopContainer(ctx, "proj.a"); err != nil {
		t.Fatalf("StopContainer: %v", err)
	}
	if err := d.StartContainer(ctx, "proj.a"); err != nil {
		t.Fatalf("StartContainer: %v", err)
	}
	if err := d.DeleteContainer(ctx, "proj.a"); err != nil {
		t.Fatalf("DeleteContainer: %v", err)
	}

	want := []string{
		"run -d --name proj.a -e container_name=proj.a alpine",
		"stop proj.a",
		"start proj.a",
		"rm proj.a",
	}
	got := readCalls(t, logPath)
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls = %q, want %q", got, want)
	}
}

func TestFakeRuntime_StopError(t *testing.T) {
	d, _ := newFakeDriver(t)

	err := d.StopContainer(context.Background(), "stuck")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "stopping container stuck") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestFakeRuntime_InteractiveUsesStreams(t *testing.T) {
	d, _ := newFakeDriver(t)
	var stdout bytes.Buffer
	d.SetIO(strings.NewReader(""), &stdout, io.Discard, false)

	err := d.RunContainer(context.Background(), &driver.RunOptions{
		Image:       "alpine",
		Name:        "proj.a.1",
		Interactive: true,
		AutoRemove:  true,
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}
	if !strings.Contains(stdout.String(), "0123456789ab") {
		t.Errorf("interactive output not forwarded, got %q", stdout.String())
	}
}

func TestFakeRuntime_InteractiveExitCode(t *testing.T) {
	d, _ := newFakeDriver(t)

	err := d.RunContainer(context.Background(), &driver.RunOptions{
		Image:       "alpine",
		Name:        "proj.a.1",
		Interactive: true,
		Cmd:         []string{"fail"},
	})
	if err == nil {
		t.Fatal("expected non-zero exit to surface as an error")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("error = %q, want exit status", err.Error())
	}
}

func newTestDriver(t *testing.T) *OCIDriver {
	t.Helper()
	d, err := NewOCIDriver(context.Background(), "", slog.Default())
	if err != nil {
		t.Skipf("skipping: no container runtime available: %v", err)
	}
	d.SetIO(strings.NewReader(""), io.Discard, io.Discard, false)
	return d
}

func TestIntegrationContainerLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	d := newTestDriver(t)
	name := "dockman-test.lifecycle"

	// Clean up any leftover container from a previous failed run.
	_ = d.StopContainer(ctx, name)
	_ = d.DeleteContainer(ctx, name)

	t.Cleanup(func() {
		_ = d.StopContainer(ctx, name)
		_ = d.DeleteContainer(ctx, name)
	})

	state, err := d.ContainerState(ctx, name)
	if err != nil {
		t.Fatalf("ContainerState: %v", err)
	}
	if state != driver.StateAbsent {
		t.Fatalf("state before run = %v, want absent", state)
	}

	err = d.RunContainer(ctx, &driver.RunOptions{
		Image:  "alpine:3.20",
		Name:   name,
		Daemon: true,
		Labels: map[string]string{"dockman.project": "dockman-test"},
		Cmd:    []string{"sleep", "300"},
	})
	if err != nil {
		t.Fatalf("RunContainer: %v", err)
	}

	assertState := func(want driver.State) {
		t.Helper()
		got, err := d.ContainerState(ctx, name)
		if err != nil {
			t.Fatalf("ContainerState: %v", err)
		}
		if got != want {
			t.Fatalf("state = %v, want %v", got, want)
		}
	}

	assertState(driver.StateRunning)

	if err := d.StopContainer(ctx, name); err != nil {
		t.Fatalf("StopContainer: %v", err)
	}
	assertState(driver.StateStopped)

	if err := d.StartContainer(ctx, name); err != nil {
		t.Fatalf("StartContainer: %v", err)
	}
	assertState(driver.StateRunning)

	if err := d.StopContainer(ctx, name); err != nil {
		t.Fatalf("StopContainer: %v", err)
	}
	if err := d.DeleteContainer(ctx, name); err != nil {
		t.Fatalf("DeleteContainer: %v", err)
	}
	assertState(driver.StateAbsent)
}
