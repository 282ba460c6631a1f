package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fgrehm/dockman/internal/config"
)

func TestResolve_ConfigInStartDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	mkdirAll(t, dir)
	writeFile(t, filepath.Join(dir, "dockman.yaml"), "containers: {}\n")

	result, err := Resolve(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ProjectRoot != dir {
		t.Errorf("ProjectRoot = %q, want %q", result.ProjectRoot, dir)
	}
	if result.ConfigPath != filepath.Join(dir, "dockman.yaml") {
		t.Errorf("ConfigPath = %q", result.ConfigPath)
	}
	if result.ProjectName != "shop" {
		t.Errorf("ProjectName = %q, want %q", result.ProjectName, "shop")
	}
}

func TestResolve_WalksUp(t *testing.T) {
	root := filepath.Join(t.TempDir(), "shop")
	nested := filepath.Join(root, "src", "api")
	mkdirAll(t, nested)
	writeFile(t, filepath.Join(root, "dockman.yml"), "containers: {}\n")

	result, err := Resolve(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectRoot != root {
		t.Errorf("ProjectRoot = %q, want %q", result.ProjectRoot, root)
	}
	if result.ConfigPath != filepath.Join(root, "dockman.yml") {
		t.Errorf("ConfigPath = %q", result.ConfigPath)
	}
}

func TestResolve_NearestWins(t *testing.T) {
	root := t.TempDir()
	inner := filepath.Join(root, "inner")
	mkdirAll(t, inner)
	writeFile(t, filepath.Join(root, "dockman.yaml"), "containers: {}\n")
	writeFile(t, filepath.Join(inner, "dockman.yaml"), "containers: {}\n")

	result, err := Resolve(inner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectRoot != inner {
		t.Errorf("ProjectRoot = %q, want %q", result.ProjectRoot, inner)
	}
}

func TestResolve_NotFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Resolve(dir)
	if !errors.Is(err, ErrNoProject) {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
	if !errors.Is(err, config.ErrNotFound) {
		t.Errorf("expected error to wrap config.ErrNotFound, got %v", err)
	}
}

func TestResolveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my.app")
	mkdirAll(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "containers: {}\n")

	result, err := ResolveFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ProjectRoot != dir {
		t.Errorf("ProjectRoot = %q, want %q", result.ProjectRoot, dir)
	}
	if result.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, path)
	}
	if result.ProjectName != "my-app" {
		t.Errorf("ProjectName = %q, want %q", result.ProjectName, "my-app")
	}
}

func TestResolveFile_Missing(t *testing.T) {
	_, err := ResolveFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, config.ErrNotFound) {
		t.Errorf("expected config.ErrNotFound, got %v", err)
	}
}

func TestResolveFile_Directory(t *testing.T) {
	if _, err := ResolveFile(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"shop", "shop"},
		{"MyProject", "MyProject"},
		{"my.app", "my-app"},
		{"my project", "my-project"},
		{"foo_bar-baz", "foo_bar-baz"},
		{"...", "project"},
		{"", "project"},
		{"-lead", "lead"},
	}
	for _, tt := range tests {
		if got := ProjectName(tt.input); got != tt.want {
			t.Errorf("ProjectName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
