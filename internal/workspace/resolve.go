package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fgrehm/dockman/internal/config"
)

// ErrNoProject is returned when no dockman configuration is found walking up
// from the start directory. It wraps config.ErrNotFound.
var ErrNoProject = fmt.Errorf("%w (looked for %v)", config.ErrNotFound, config.FileNames)

// ResolveResult holds the outcome of project resolution.
type ResolveResult struct {
	// ProjectRoot is the absolute path to the directory holding the config file.
	ProjectRoot string

	// ConfigPath is the absolute path to the configuration file.
	ConfigPath string

	// ProjectName is the derived project name used to qualify container names.
	ProjectName string
}

// Resolve walks up from startDir looking for a dockman configuration file.
// Returns the project root, config path, and derived project name.
func Resolve(startDir string) (*ResolveResult, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("resolving start directory: %w", err)
	}

	dir := absDir
	for {
		configPath, err := config.Find(dir)
		if err != nil {
			return nil, fmt.Errorf("searching for dockman config: %w", err)
		}
		if configPath != "" {
			return &ResolveResult{
				ProjectRoot: dir,
				ConfigPath:  configPath,
				ProjectName: ProjectName(filepath.Base(dir)),
			}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root.
			return nil, ErrNoProject
		}
		dir = parent
	}
}

// ResolveFile resolves project info when the configuration file is given
// explicitly (bypasses the walk-up). The project root is the file's directory.
func ResolveFile(path string) (*ResolveResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config file: %w", err)
	}

	info, err := os.Stat(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", config.ErrNotFound, absPath)
	} else if err != nil {
		return nil, fmt.Errorf("checking %s: %w", absPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", absPath)
	}

	root := filepath.Dir(absPath)
	return &ResolveResult{
		ProjectRoot: root,
		ConfigPath:  absPath,
		ProjectName: ProjectName(filepath.Base(root)),
	}, nil
}
