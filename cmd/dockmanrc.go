package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// dockmanRC holds values loaded from a .dockmanrc file.
type dockmanRC struct {
	File    string `toml:"file"`    // configuration file (same as --file / -f)
	Runtime string `toml:"runtime"` // container runtime (same as --runtime)

	// Unknown lists keys present in the file that dockman does not use.
	Unknown []string `toml:"-"`
}

// loadDockmanRC reads a .dockmanrc file from cwd. Returns nil, nil if not found.
func loadDockmanRC() (*dockmanRC, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return readDockmanRC(filepath.Join(cwd, ".dockmanrc"))
}

// readDockmanRC parses the TOML file at path. Returns nil, nil if it does
// not exist.
func readDockmanRC(path string) (*dockmanRC, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rc := &dockmanRC{}
	md, err := toml.Decode(string(data), rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		rc.Unknown = append(rc.Unknown, key.String())
	}
	return rc, nil
}
