package oci

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fgrehm/dockman/internal/driver"
)

// ContainerState inspects the named container. A container the runtime does
// not know about is reported as driver.StateAbsent.
func (d *OCIDriver) ContainerState(ctx context.Context, name string) (driver.State, error) {
	out, err := d.helper.Output(ctx,
		"inspect", "--type", "container",
		"--format", "{{.State.Running}}",
		name,
	)
	if err != nil {
		if isNotFound(err) {
			return driver.StateAbsent, nil
		}
		return driver.StateAbsent, fmt.Errorf("inspecting container %s: %w", name, err)
	}
	return parseState(string(out))
}

// RunContainer creates and starts a new container. Interactive runs are
// attached to the driver's streams and block until the container exits.
func (d *OCIDriver) RunContainer(ctx context.Context, options *driver.RunOptions) error {
	args := d.buildRunArgs(options)

	if options.Interactive {
		if err := d.helper.Run(ctx, args, d.stdin, d.stdout, d.stderr); err != nil {
			return fmt.Errorf("running container %s: %w", options.Name, err)
		}
		return nil
	}

	if _, err := d.helper.Output(ctx, args...); err != nil {
		return fmt.Errorf("running container %s: %w", options.Name, err)
	}
	return nil
}

// buildRunArgs constructs the `docker run` argument list.
func (d *OCIDriver) buildRunArgs(opts *driver.RunOptions) []string {
	args := []string{"run"}

	// Detached containers are never auto-removed nor attached.
	switch {
	case opts.Daemon:
		args = append(args, "-d")
	case opts.Interactive:
		args = append(args, "-i")
		if d.tty {
			args = append(args, "-t")
		}
	}
	if opts.AutoRemove && !opts.Daemon {
		args = append(args, "--rm")
	}

	if opts.Name != "" {
		args = append(args, "--name", opts.Name)
	}

	// Labels.
	for _, k := range sortedKeys(opts.Labels) {
		args = append(args, "--label", k+"="+opts.Labels[k])
	}

	// Shared volumes.
	args = appendFlags(args, "--volumes-from", opts.VolumesFrom)

	// Bind mounts.
	for _, v := range opts.Volumes {
		args = append(args, "-v", v.String())
	}

	// Published ports.
	for _, p := range opts.Ports {
		args = append(args, "-p", p.String())
	}

	// Links.
	for _, l := range opts.Links {
		args = append(args, "--link", l.String())
	}

	// Environment variables.
	args = appendFlags(args, "-e", opts.Env)

	// Image (required).
	args = append(args, opts.Image)

	// Command.
	args = append(args, opts.Cmd...)

	return args
}

// StartContainer starts a stopped container.
func (d *OCIDriver) StartContainer(ctx context.Context, name string) error {
	if _, err := d.helper.Output(ctx, "start", name); err != nil {
		return fmt.Errorf("starting container %s: %w", name, err)
	}
	return nil
}

// StopContainer stops a running container.
func (d *OCIDriver) StopContainer(ctx context.Context, name string) error {
	if _, err := d.helper.Output(ctx, "stop", name); err != nil {
		return fmt.Errorf("stopping container %s: %w", name, err)
	}
	return nil
}

// DeleteContainer removes a container.
func (d *OCIDriver) DeleteContainer(ctx context.Context, name string) error {
	if _, err := d.helper.Output(ctx, "rm", name); err != nil {
		return fmt.Errorf("removing container %s: %w", name, err)
	}
	return nil
}

// parseState maps the output of `inspect --format {{.State.Running}}`.
func parseState(out string) (driver.State, error) {
	switch strings.Trim(strings.TrimSpace(out), `"`) {
	case "true":
		return driver.StateRunning, nil
	case "false":
		return driver.StateStopped, nil
	default:
		return driver.StateAbsent, fmt.Errorf("unexpected container state %q", strings.TrimSpace(out))
	}
}

// isNotFound reports whether an inspect error means the container does not
// exist. Docker says "No such container", podman "no such object".
func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such")
}

// appendFlags appends "--flag value" pairs to args for each value in values.
func appendFlags(args []string, flag string, values []string) []string {
	for _, v := range values {
		args = append(args, flag, v)
	}
	return args
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
