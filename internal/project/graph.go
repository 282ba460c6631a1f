package project

import (
	"errors"
	"fmt"
)

// ErrUndefinedDependency is returned when a container references a config
// name that is not part of the graph.
var ErrUndefinedDependency = errors.New("undefined dependency")

// Graph is the dependency relation between the containers of a project.
// Both directions are computed once; the graph is never modified afterwards.
type Graph struct {
	byName     map[string]*Container
	dependents map[string][]*Container
}

// NewGraph builds the graph for containers. The order of containers is the
// order in which dependents are reported.
func NewGraph(containers []*Container) *Graph {
	g := &Graph{
		byName:     make(map[string]*Container, len(containers)),
		dependents: make(map[string][]*Container, len(containers)),
	}
	for _, c := range containers {
		g.byName[c.Name] = c
	}
	for _, c := range containers {
		for _, dep := range c.Dependencies() {
			g.dependents[dep] = append(g.dependents[dep], c)
		}
	}
	return g
}

// DependenciesOf returns the direct dependencies of c in declaration order.
func (g *Graph) DependenciesOf(c *Container) ([]*Container, error) {
	names := c.Dependencies()
	deps := make([]*Container, 0, len(names))
	for _, n := range names {
		d, ok := g.byName[n]
		if !ok {
			return nil, fmt.Errorf("%w: %s depends on %q", ErrUndefinedDependency, c.Name, n)
		}
		deps = append(deps, d)
	}
	return deps, nil
}

// DependentsOf returns the containers that directly depend on c, in
// declaration order.
func (g *Graph) DependentsOf(c *Container) ([]*Container, error) {
	if _, ok := g.byName[c.Name]; !ok {
		return nil, fmt.Errorf("%w: %q is not part of the graph", ErrUndefinedDependency, c.Name)
	}
	return g.dependents[c.Name], nil
}
