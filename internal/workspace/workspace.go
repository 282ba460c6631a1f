package workspace

import (
	"regexp"
	"strings"
)

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ProjectName converts a project directory name into the prefix used for
// qualified container names. Characters the container runtime rejects, and
// dots (which separate the project from the container name), become hyphens.
func ProjectName(dir string) string {
	name := invalidNameChars.ReplaceAllString(dir, "-")
	name = strings.Trim(name, "-_")
	if name == "" {
		name = "project"
	}
	return name
}
