package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// FileNames lists the configuration file names in lookup order.
var FileNames = []string{"dockman.yaml", "dockman.yml", "dockman.json"}

// validName matches container names. Dots are excluded because they separate
// the project from the container name, and interactive sessions from their
// numbered suffix.
var validName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// containerKeys lists the keys allowed inside a container definition.
var containerKeys = map[string]bool{
	"image":        true,
	"ports":        true,
	"volumes":      true,
	"env":          true,
	"volumes_from": true,
	"links":        true,
	"cmd":          true,
	"icmd":         true,
}

// Find looks for a configuration file directly inside folder.
// Returns the absolute path to the config file, or empty string if not found.
func Find(folder string) (string, error) {
	absFolder, err := filepath.Abs(folder)
	if err != nil {
		return "", fmt.Errorf("resolving folder path: %w", err)
	}

	for _, name := range FileNames {
		p := filepath.Join(absFolder, name)
		if fileExists(p) {
			return p, nil
		}
	}
	return "", nil
}

// Parse reads and parses the configuration file at path. Files with a .json
// extension may contain comments and trailing commas.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data = jsonc.ToJSON(data)
	}

	cfg, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Origin = absPath

	return cfg, nil
}

// ParseBytes parses configuration content. Every structural problem found is
// reported; the returned error wraps ErrWrongConfig.
func ParseBytes(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongConfig, err)
	}

	cfg := &Config{}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return cfg, nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if isNull(root) {
		// An empty file declares nothing.
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping, got %s", ErrWrongConfig, kindName(root))
	}

	var errs error
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := resolveAlias(root.Content[i]), resolveAlias(root.Content[i+1])
		switch key.Value {
		case "containers":
			containers, err := parseContainers(value)
			errs = multierr.Append(errs, err)
			cfg.Containers = containers
		case "groups":
			groups, err := parseGroups(value)
			errs = multierr.Append(errs, err)
			cfg.Groups = groups
		default:
			// Extension keys hold YAML anchors and are otherwise ignored.
			if strings.HasPrefix(key.Value, "x-") {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("line %d: unknown top-level key %q", key.Line, key.Value))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrongConfig, errs)
	}
	return cfg, nil
}

func parseContainers(node *yaml.Node) ([]*Container, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: containers must be a mapping, got %s", node.Line, kindName(node))
	}

	var (
		containers []*Container
		errs       error
		seen       = make(map[string]bool)
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolveAlias(node.Content[i]), resolveAlias(node.Content[i+1])
		name := key.Value
		if seen[name] {
			errs = multierr.Append(errs, fmt.Errorf("line %d: container %q declared twice", key.Line, name))
			continue
		}
		seen[name] = true

		if !validName.MatchString(name) {
			errs = multierr.Append(errs, fmt.Errorf("line %d: invalid container name %q (use letters, digits, '_' and '-')", key.Line, name))
			continue
		}

		c, err := parseContainer(name, value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("containers.%s: %w", name, err))
			continue
		}
		containers = append(containers, c)
	}
	return containers, errs
}

func parseContainer(name string, node *yaml.Node) (*Container, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: definition must be a mapping, got %s", node.Line, kindName(node))
	}

	var errs error
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := resolveAlias(node.Content[i])
		if !containerKeys[key.Value] {
			errs = multierr.Append(errs, fmt.Errorf("line %d: unknown key %q", key.Line, key.Value))
		}
	}
	if errs != nil {
		return nil, errs
	}

	var raw struct {
		Image       yaml.Node `yaml:"image"`
		Ports       Mapping   `yaml:"ports"`
		Volumes     Mapping   `yaml:"volumes"`
		Env         Mapping   `yaml:"env"`
		VolumesFrom yaml.Node `yaml:"volumes_from"`
		Links       Mapping   `yaml:"links"`
		Cmd         Command   `yaml:"cmd"`
		ICmd        Command   `yaml:"icmd"`
	}
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	image := resolveAlias(&raw.Image)
	if isNull(image) || image.Kind != yaml.ScalarNode || strings.TrimSpace(image.Value) == "" {
		return nil, fmt.Errorf("no image given")
	}

	volumesFrom, err := scalarList(&raw.VolumesFrom)
	if err != nil {
		return nil, fmt.Errorf("volumes_from: %w", err)
	}

	for _, m := range []struct {
		field string
		value Mapping
	}{{"ports", raw.Ports}, {"volumes", raw.Volumes}, {"links", raw.Links}} {
		for _, e := range m.value {
			if e.Value == nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %q has no value", m.field, e.Key))
			}
		}
	}
	if errs != nil {
		return nil, errs
	}

	return &Container{
		Name:        name,
		Image:       strings.TrimSpace(image.Value),
		Ports:       raw.Ports,
		Volumes:     raw.Volumes,
		Env:         raw.Env,
		VolumesFrom: volumesFrom,
		Links:       raw.Links,
		Cmd:         raw.Cmd,
		ICmd:        raw.ICmd,
	}, nil
}

func parseGroups(node *yaml.Node) ([]*Group, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: groups must be a mapping, got %s", node.Line, kindName(node))
	}

	var (
		groups []*Group
		errs   error
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolveAlias(node.Content[i]), node.Content[i+1]
		members, err := scalarList(value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("groups.%s: %w", key.Value, err))
			continue
		}
		groups = append(groups, &Group{Name: key.Value, Members: members})
	}
	return groups, errs
}

// FindAndParse finds a configuration file in the given folder and parses it.
// Returns ErrNotFound if no config file is found.
func FindAndParse(folder string) (*Config, error) {
	path, err := Find(folder)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, ErrNotFound
	}
	return Parse(path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
