package oci

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/x/term"
	"golang.org/x/sync/errgroup"
)

// Runtime identifies the container runtime.
type Runtime int

const (
	RuntimeDocker Runtime = iota
	RuntimePodman
)

// String returns the runtime name.
func (r Runtime) String() string {
	switch r {
	case RuntimePodman:
		return "podman"
	default:
		return "docker"
	}
}

// OCIDriver implements driver.Driver using docker or podman CLI commands.
type OCIDriver struct {
	helper  *Helper
	runtime Runtime
	logger  *slog.Logger

	// Streams attached to interactive containers.
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	tty    bool
}

// NewOCIDriver creates an OCIDriver. preferred names the runtime to use
// ("docker" or "podman"); when empty the DOCKMAN_RUNTIME env var is
// consulted, and failing that the runtime is auto-detected.
func NewOCIDriver(ctx context.Context, preferred string, logger *slog.Logger) (*OCIDriver, error) {
	rt, cmd, err := detectRuntime(ctx, preferred)
	if err != nil {
		return nil, err
	}
	logger.Info("detected container runtime", "runtime", rt.String(), "command", cmd)
	return &OCIDriver{
		helper:  NewHelper(cmd, logger),
		runtime: rt,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		tty:     term.IsTerminal(os.Stdin.Fd()),
	}, nil
}

// Runtime returns the detected container runtime.
func (d *OCIDriver) Runtime() Runtime {
	return d.runtime
}

// SetIO overrides the streams attached to interactive containers. tty
// controls whether a pseudo-terminal is requested.
func (d *OCIDriver) SetIO(stdin io.Reader, stdout, stderr io.Writer, tty bool) {
	d.stdin = stdin
	d.stdout = stdout
	d.stderr = stderr
	d.tty = tty
}

// detectRuntime checks for an available container runtime.
// Priority: preferred > DOCKMAN_RUNTIME env > docker > podman.
func detectRuntime(ctx context.Context, preferred string) (Runtime, string, error) {
	source := "runtime"
	if preferred == "" {
		preferred = os.Getenv("DOCKMAN_RUNTIME")
		source = "DOCKMAN_RUNTIME"
	}
	if preferred != "" {
		rt, err := parseRuntime(preferred)
		if err != nil {
			return 0, "", fmt.Errorf("%s=%q is not supported (use docker or podman)", source, preferred)
		}
		cmd, err := findResponsiveRuntime(ctx, rt.String())
		if err != nil {
			return 0, "", fmt.Errorf("%s=%s but %s is not available: %w", source, rt, rt, err)
		}
		return rt, cmd, nil
	}

	// Probe both runtimes concurrently; `version` can take a while when a
	// daemon is not reachable.
	candidates := []Runtime{RuntimeDocker, RuntimePodman}
	cmds := make([]string, len(candidates))
	errs := make([]error, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, rt := range candidates {
		g.Go(func() error {
			cmds[i], errs[i] = findResponsiveRuntime(gctx, rt.String())
			return nil
		})
	}
	_ = g.Wait()

	for i, rt := range candidates {
		if errs[i] == nil {
			return rt, cmds[i], nil
		}
	}
	return 0, "", fmt.Errorf("no container runtime found:\n  docker: %v\n  podman: %v", errs[0], errs[1])
}

// parseRuntime maps a runtime name to a Runtime.
func parseRuntime(name string) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "docker":
		return RuntimeDocker, nil
	case "podman":
		return RuntimePodman, nil
	default:
		return 0, fmt.Errorf("unknown runtime %q", name)
	}
}

// findResponsiveRuntime checks if a runtime command exists on PATH and responds to `version`.
func findResponsiveRuntime(ctx context.Context, name string) (string, error) {
	cmd, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}

	// Verify the runtime is responsive.
	out, err := exec.CommandContext(ctx, cmd, "version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s not responsive: %w: %s", name, err, string(out))
	}
	return cmd, nil
}
