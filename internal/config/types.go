package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no dockman configuration file is found.
var ErrNotFound = errors.New("no dockman configuration found")

// ErrWrongConfig is wrapped by every error caused by a structurally invalid
// configuration.
var ErrWrongConfig = errors.New("invalid configuration")

// Config is the parsed project configuration.
type Config struct {
	// Containers in declaration order.
	Containers []*Container

	// Groups in declaration order.
	Groups []*Group

	// Origin is the absolute path to the configuration file (empty when
	// parsed from bytes).
	Origin string
}

// Container returns the declared container with the given name, or nil.
func (c *Config) Container(name string) *Container {
	for _, ct := range c.Containers {
		if ct.Name == name {
			return ct
		}
	}
	return nil
}

// Container is one entry of the top-level "containers" mapping.
type Container struct {
	Name        string
	Image       string
	Ports       Mapping
	Volumes     Mapping
	Env         Mapping
	VolumesFrom []string
	Links       Mapping
	Cmd         Command
	ICmd        Command
}

// Group is one entry of the top-level "groups" mapping.
type Group struct {
	Name    string
	Members []string
}

// Entry is a single key/value pair of a Mapping. Value is nil when the
// configuration holds an explicit null.
type Entry struct {
	Key   string
	Value *string
}

// Mapping is a string mapping that remembers declaration order.
type Mapping []Entry

// Keys returns the mapping keys in declaration order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

// Get returns the value stored under key.
func (m Mapping) Get(key string) (*string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// UnmarshalYAML decodes a mapping of scalars, keeping key order.
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if isNull(node) {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, kindName(node))
	}

	seen := make(map[string]bool, len(node.Content)/2)
	out := make(Mapping, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := resolveAlias(node.Content[i]), resolveAlias(node.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
		}
		if seen[k.Value] {
			return fmt.Errorf("line %d: duplicate key %q", k.Line, k.Value)
		}
		seen[k.Value] = true

		entry := Entry{Key: k.Value}
		switch {
		case isNull(v):
		case v.Kind == yaml.ScalarNode:
			value := v.Value
			entry.Value = &value
		default:
			return fmt.Errorf("line %d: value of %q must be a scalar, got %s", v.Line, k.Value, kindName(v))
		}
		out = append(out, entry)
	}
	*m = out
	return nil
}

// Command is a container command. It is either a list of words or a single
// shell-style line that is split into words later.
type Command struct {
	Args []string
	Line string
}

// IsZero reports whether no command was configured.
func (c Command) IsZero() bool {
	return len(c.Args) == 0 && c.Line == ""
}

// UnmarshalYAML accepts either a scalar or a sequence of scalars.
func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch {
	case isNull(node):
		*c = Command{}
		return nil
	case node.Kind == yaml.ScalarNode:
		*c = Command{Line: node.Value}
		return nil
	case node.Kind == yaml.SequenceNode:
		args, err := scalarList(node)
		if err != nil {
			return err
		}
		*c = Command{Args: args}
		return nil
	default:
		return fmt.Errorf("line %d: command must be a string or a list, got %s", node.Line, kindName(node))
	}
}

func scalarList(node *yaml.Node) ([]string, error) {
	node = resolveAlias(node)
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list, got %s", node.Line, kindName(node))
	}
	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			return nil, fmt.Errorf("line %d: list items must be strings, got %s", item.Line, kindName(item))
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}

func kindName(node *yaml.Node) string {
	if isNull(node) {
		return "null"
	}
	switch node.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a list"
	case yaml.ScalarNode:
		return "a scalar"
	default:
		return "an unsupported node"
	}
}
