package project

import (
	"errors"
	"slices"
	"strings"
)

// ErrCircularDependency is matched by every *CircularDependencyError.
var ErrCircularDependency = errors.New("circular dependency")

// CircularDependencyError reports a cycle found while resolving a chain.
type CircularDependencyError struct {
	// Path holds qualified names in traversal order. The re-entered
	// container appears at both ends.
	Path []string

	// Reverse is set when the cycle was found walking dependents.
	Reverse bool
}

func (e *CircularDependencyError) Error() string {
	sep := " -> "
	if e.Reverse {
		sep = " <- "
	}
	return "circular dependency: " + strings.Join(e.Path, sep)
}

// Is makes errors.Is(err, ErrCircularDependency) hold.
func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// Chain returns c and everything it transitively depends on, dependencies
// first. The last element is c.
func (g *Graph) Chain(c *Container) ([]*Container, error) {
	return g.resolve(c, false)
}

// ReverseChain returns c and everything that transitively depends on it,
// dependents first. The last element is c.
func (g *Graph) ReverseChain(c *Container) ([]*Container, error) {
	return g.resolve(c, true)
}

// ChainUnion concatenates the chains of cs, keeping only the first
// occurrence of each container.
func (g *Graph) ChainUnion(cs []*Container, reverse bool) ([]*Container, error) {
	var (
		out  []*Container
		seen = make(map[*Container]bool)
	)
	for _, c := range cs {
		chain, err := g.resolve(c, reverse)
		if err != nil {
			return nil, err
		}
		for _, x := range chain {
			if !seen[x] {
				seen[x] = true
				out = append(out, x)
			}
		}
	}
	return out, nil
}

// resolve walks the graph depth first with an explicit stack. A container is
// emitted once all its neighbours are emitted; reaching a container that is
// still on the stack is a cycle.
func (g *Graph) resolve(start *Container, reverse bool) ([]*Container, error) {
	var (
		seen  []*Container
		done  = make(map[*Container]bool)
		stack = []*Container{start}
	)
	for len(stack) > 0 {
		current := stack[len(stack)-1]

		neighbours, err := g.neighbours(current, reverse)
		if err != nil {
			return nil, err
		}

		var next *Container
		for _, n := range neighbours {
			if !done[n] {
				next = n
				break
			}
		}

		if next == nil {
			stack = stack[:len(stack)-1]
			done[current] = true
			seen = append(seen, current)
			continue
		}

		if idx := slices.Index(stack, next); idx >= 0 {
			path := make([]string, 0, len(stack)-idx+1)
			for _, c := range stack[idx:] {
				path = append(path, c.QualifiedName())
			}
			path = append(path, next.QualifiedName())
			return nil, &CircularDependencyError{Path: path, Reverse: reverse}
		}
		stack = append(stack, next)
	}
	return seen, nil
}

func (g *Graph) neighbours(c *Container, reverse bool) ([]*Container, error) {
	if reverse {
		return g.DependentsOf(c)
	}
	return g.DependenciesOf(c)
}
