package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/moby/buildkit/frontend/dockerfile/shell"
	"go.uber.org/multierr"

	"github.com/fgrehm/dockman/internal/config"
)

// Bind maps a host-side value (port or path) to its container-side
// counterpart.
type Bind struct {
	Host      string
	Container string
}

// Link is a link to another container of the same project.
type Link struct {
	// Target is the config name of the linked container.
	Target string
	Alias  string
}

// Container is the resolved, immutable definition of one declared container.
// Values are computed once by New and must not be modified afterwards.
type Container struct {
	// Name is the key of the container in the configuration file.
	Name string

	// Project is the name of the project the container belongs to.
	Project string

	Image string

	// Ports in declaration order, host side first.
	Ports []Bind

	// Volumes in declaration order, with host paths already resolved.
	Volumes []Bind

	// Env holds KEY=VALUE pairs in declaration order.
	Env []string

	// VolumesFrom holds config names in declaration order.
	VolumesFrom []string

	// Links in declaration order.
	Links []Link

	// Cmd is the default command for daemon runs.
	Cmd []string

	// InteractiveCmd is the default command for interactive runs.
	InteractiveCmd []string

	deps []string
}

// QualifiedName returns the name used for the container at the runtime.
func (c *Container) QualifiedName() string {
	return c.Qualify(c.Name)
}

// Qualify returns the runtime name of a container of the same project.
func (c *Container) Qualify(configName string) string {
	return c.Project + "." + configName
}

// Dependencies returns the config names this container depends on: the
// volumes_from entries followed by the link targets, de-duplicated and in
// declaration order.
func (c *Container) Dependencies() []string {
	return c.deps
}

// String implements fmt.Stringer.
func (c *Container) String() string {
	return c.QualifiedName()
}

// resolver turns raw config values into resolved container fields.
type resolver struct {
	project   string
	dir       string
	home      string
	lookupEnv func(string) (string, bool)
}

func (r *resolver) container(cfg *config.Container) (*Container, error) {
	c := &Container{
		Name:        cfg.Name,
		Project:     r.project,
		Image:       cfg.Image,
		VolumesFrom: append([]string(nil), cfg.VolumesFrom...),
	}

	var errs error
	if _, err := name.ParseReference(cfg.Image); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("image: %w", err))
	}

	for _, e := range cfg.Ports {
		c.Ports = append(c.Ports, Bind{Host: e.Key, Container: deref(e.Value)})
	}
	for _, e := range cfg.Volumes {
		host, err := r.hostPath(e.Key)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("volumes: %w", err))
			continue
		}
		c.Volumes = append(c.Volumes, Bind{Host: host, Container: deref(e.Value)})
	}

	env := make(map[string]string, len(cfg.Env))
	for _, e := range cfg.Env {
		var value string
		if e.Value != nil {
			value = *e.Value
		} else if v, ok := r.lookupEnv(e.Key); ok {
			value = v
		}
		env[e.Key] = value
		c.Env = append(c.Env, e.Key+"="+value)
	}

	for _, e := range cfg.Links {
		c.Links = append(c.Links, Link{Target: e.Key, Alias: deref(e.Value)})
	}

	getter := &envGetter{env: env, keys: cfg.Env.Keys(), lookup: r.lookupEnv}
	var err error
	if c.Cmd, err = splitCommand(cfg.Cmd, getter); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("cmd: %w", err))
	}
	if c.InteractiveCmd, err = splitCommand(cfg.ICmd, getter); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("icmd: %w", err))
	}

	c.deps = dependencies(c)
	return c, errs
}

// hostPath resolves the host side of a volume binding. Bare names without a
// path separator are named volumes and are kept as they are.
func (r *resolver) hostPath(p string) (string, error) {
	switch {
	case p == "":
		return "", errors.New("empty host path")
	case p == "~" || strings.HasPrefix(p, "~/"):
		if r.home == "" {
			return "", fmt.Errorf("cannot expand %q: home directory unknown", p)
		}
		return filepath.Join(r.home, strings.TrimPrefix(p, "~")), nil
	case filepath.IsAbs(p):
		return filepath.Clean(p), nil
	case strings.HasPrefix(p, ".") || strings.ContainsRune(p, '/') || strings.ContainsRune(p, filepath.Separator):
		return filepath.Join(r.dir, p), nil
	default:
		return p, nil
	}
}

func dependencies(c *Container) []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			deps = append(deps, n)
		}
	}
	for _, n := range c.VolumesFrom {
		add(n)
	}
	for _, l := range c.Links {
		add(l.Target)
	}
	return deps
}

// splitCommand returns the words of a configured command. String commands
// are split the way a Dockerfile shell-form line is, expanding ${VAR}
// references.
func splitCommand(cmd config.Command, env shell.EnvGetter) ([]string, error) {
	if cmd.IsZero() {
		return nil, nil
	}
	if cmd.Line == "" {
		return append([]string(nil), cmd.Args...), nil
	}
	lex := shell.NewLex('\\')
	words, err := lex.ProcessWords(cmd.Line, env)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("%q has no words", cmd.Line)
	}
	return words, nil
}

// envGetter implements shell.EnvGetter. The container's declared
// environment wins over the process environment.
type envGetter struct {
	env    map[string]string
	keys   []string
	lookup func(string) (string, bool)
}

func (e *envGetter) Get(key string) (string, bool) {
	if v, ok := e.env[key]; ok {
		return v, true
	}
	return e.lookup(key)
}

func (e *envGetter) Keys() []string {
	return e.keys
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
