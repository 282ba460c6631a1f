// Package project turns a parsed configuration into validated container
// definitions and answers dependency questions about them.
package project

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"github.com/fgrehm/dockman/internal/config"
)

var (
	// ErrUnknownContainer is returned when an operation names a container
	// that is not declared.
	ErrUnknownContainer = errors.New("unknown container")

	// ErrUnknownGroup is returned when an operation names a group that is
	// not declared.
	ErrUnknownGroup = errors.New("unknown group")
)

// Group is a named, ordered list of containers.
type Group struct {
	Name    string
	Members []*Container
}

// Options controls how configuration values are resolved.
type Options struct {
	// Name is the project name, used to qualify container names.
	Name string

	// Dir is the directory holding the configuration file. Relative volume
	// paths are resolved against it.
	Dir string

	// LookupEnv resolves env entries declared without a value. Defaults to
	// os.LookupEnv.
	LookupEnv func(string) (string, bool)

	// HomeDir is used to expand ~ in volume paths. Defaults to the current
	// user's home directory.
	HomeDir string
}

// Project is the validated set of containers and groups of one
// configuration.
type Project struct {
	Name string
	Dir  string

	containers []*Container
	byName     map[string]*Container
	groups     []*Group
	groupIndex map[string]*Group
	graph      *Graph
}

// New resolves and validates cfg. Every problem found is reported in a single
// error wrapping config.ErrWrongConfig; no Project is returned in that case.
func New(cfg *config.Config, opts Options) (*Project, error) {
	if opts.Name == "" {
		return nil, errors.New("project name is required")
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}
	if opts.HomeDir == "" {
		opts.HomeDir = defaultHome()
	}

	r := &resolver{
		project:   opts.Name,
		dir:       opts.Dir,
		home:      opts.HomeDir,
		lookupEnv: opts.LookupEnv,
	}

	p := &Project{
		Name:       opts.Name,
		Dir:        opts.Dir,
		byName:     make(map[string]*Container, len(cfg.Containers)),
		groupIndex: make(map[string]*Group, len(cfg.Groups)),
	}

	var errs error
	for _, cc := range cfg.Containers {
		c, err := r.container(cc)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("containers.%s: %w", cc.Name, err))
		}
		p.containers = append(p.containers, c)
		p.byName[c.Name] = c
	}

	// Referential integrity.
	for _, c := range p.containers {
		for _, n := range c.VolumesFrom {
			if _, ok := p.byName[n]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("containers.%s: volumes_from: undefined container %q", c.Name, n))
			}
		}
		for _, l := range c.Links {
			if _, ok := p.byName[l.Target]; !ok {
				errs = multierr.Append(errs, fmt.Errorf("containers.%s: links: undefined container %q", c.Name, l.Target))
			}
		}
	}

	for _, cg := range cfg.Groups {
		if _, dup := p.groupIndex[cg.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("groups.%s: declared twice", cg.Name))
			continue
		}
		g := &Group{Name: cg.Name}
		for _, m := range cg.Members {
			c, ok := p.byName[m]
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("groups.%s: undefined container %q", cg.Name, m))
				continue
			}
			g.Members = append(g.Members, c)
		}
		p.groups = append(p.groups, g)
		p.groupIndex[g.Name] = g
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrWrongConfig, errs)
	}

	p.graph = NewGraph(p.containers)
	return p, nil
}

// Containers returns all containers in declaration order.
func (p *Project) Containers() []*Container {
	return p.containers
}

// Container returns the container declared under name.
func (p *Project) Container(name string) (*Container, error) {
	c, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContainer, name)
	}
	return c, nil
}

// Groups returns all groups in declaration order.
func (p *Project) Groups() []*Group {
	return p.groups
}

// Group returns the group declared under name.
func (p *Project) Group(name string) (*Group, error) {
	g, ok := p.groupIndex[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}
	return g, nil
}

// Graph returns the dependency graph of the project's containers.
func (p *Project) Graph() *Graph {
	return p.graph
}
