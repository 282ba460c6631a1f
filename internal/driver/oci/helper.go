package oci

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Helper wraps the docker/podman CLI binary for executing commands.
type Helper struct {
	command string
	logger  *slog.Logger
}

// NewHelper creates a Helper that shells out to the given command (e.g. "docker" or "podman").
func NewHelper(command string, logger *slog.Logger) *Helper {
	return &Helper{
		command: command,
		logger:  logger,
	}
}

// Run executes the command with the given args and attached I/O streams.
// If the command exits non-zero, the returned error carries the runtime's
// stderr so callers can show what the runtime reported.
func (h *Helper) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	start := time.Now()
	h.logger.Debug("exec", "cmd", h.command, "args", scrubArgs(args))

	cmd := exec.CommandContext(ctx, h.command, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	// Capture stderr for error messages while also writing to the caller's stderr.
	var stderrBuf bytes.Buffer
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	h.logger.Debug("exec done", "cmd", h.command, "verb", firstArg(args), "duration", time.Since(start), "error", err)
	if err != nil {
		msg := strings.TrimSpace(stderrBuf.String())
		if msg == "" {
			return fmt.Errorf("%s %s: %w", h.command, strings.Join(scrubArgs(args), " "), err)
		}
		return fmt.Errorf("%s %s: %w: %s", h.command, strings.Join(scrubArgs(args), " "), err, msg)
	}
	return nil
}

// Output executes the command and returns captured stdout.
func (h *Helper) Output(ctx context.Context, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if err := h.Run(ctx, args, nil, &stdout, nil); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// sensitiveKeys contains substrings that identify env var names whose values
// should be redacted from logs and error messages.
var sensitiveKeys = []string{
	"TOKEN", "SECRET", "KEY", "PASSWORD", "PASSPHRASE",
	"CREDENTIAL", "AUTH_SOCK",
}

// scrubArgs returns a copy of args with sensitive -e VAR=VALUE pairs redacted.
// Only the value is replaced; the variable name is preserved for debugging.
func scrubArgs(args []string) []string {
	result := make([]string, len(args))
	copy(result, args)
	for i := 1; i < len(result); i++ {
		if args[i-1] != "-e" {
			continue
		}
		if k, _, ok := strings.Cut(args[i], "="); ok && isSensitiveKey(k) {
			result[i] = k + "=***"
		}
	}
	return result
}

// isSensitiveKey returns true if the env var name contains a sensitive substring.
func isSensitiveKey(name string) bool {
	upper := strings.ToUpper(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(upper, key) {
			return true
		}
	}
	return false
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
