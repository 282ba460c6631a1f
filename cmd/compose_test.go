package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fgrehm/dockman/internal/project"
)

const composeTestConfig = `
containers:
  db:
    image: postgres:16
  web:
    image: nginx
    links: {db: database}
  tools:
    image: alpine
groups:
  app: [web]
`

func TestWriteCompose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(dir, "dockman.yaml"), composeTestConfig)
	withFlags(t, "", dir)

	p, err := currentProject()
	if err != nil {
		t.Fatal(err)
	}

	var all bytes.Buffer
	if err := writeCompose(context.Background(), &all, p, ""); err != nil {
		t.Fatalf("writeCompose: %v", err)
	}
	for _, want := range []string{"container_name: shop.db", "container_name: shop.web", "container_name: shop.tools"} {
		if !strings.Contains(all.String(), want) {
			t.Errorf("output missing %q:\n%s", want, all.String())
		}
	}

	var group bytes.Buffer
	if err := writeCompose(context.Background(), &group, p, "app"); err != nil {
		t.Fatalf("writeCompose(app): %v", err)
	}
	if strings.Contains(group.String(), "shop.tools") {
		t.Errorf("group export should only hold app and its dependencies:\n%s", group.String())
	}
	if !strings.Contains(group.String(), "container_name: shop.db") {
		t.Errorf("group export should include dependency db:\n%s", group.String())
	}

	if err := writeCompose(context.Background(), &bytes.Buffer{}, p, "nope"); !errors.Is(err, project.ErrUnknownGroup) {
		t.Errorf("error = %v, want ErrUnknownGroup", err)
	}
}

func TestExportCompose_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(dir, "dockman.yaml"), composeTestConfig)
	withFlags(t, "", dir)

	p, err := currentProject()
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(t.TempDir(), "compose.yaml")
	writeFile(t, target, "previous content\n")

	var stdout bytes.Buffer
	err = exportCompose(context.Background(), &stdout, p, "nope", target)
	if !errors.Is(err, project.ErrUnknownGroup) {
		t.Fatalf("error = %v, want ErrUnknownGroup", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "previous content\n" {
		t.Errorf("failed export changed the target file to %q", data)
	}

	if err := exportCompose(context.Background(), &stdout, p, "app", target); err != nil {
		t.Fatalf("exportCompose(app): %v", err)
	}
	data, err = os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "container_name: shop.web") {
		t.Errorf("target file not replaced by the export:\n%s", data)
	}
	if stdout.Len() != 0 {
		t.Errorf("file export should not write to stdout, got %q", stdout.String())
	}
}

func TestExportCompose_Stdout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(dir, "dockman.yaml"), composeTestConfig)
	withFlags(t, "", dir)

	p, err := currentProject()
	if err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	if err := exportCompose(context.Background(), &stdout, p, "", "-"); err != nil {
		t.Fatalf("exportCompose: %v", err)
	}
	if !strings.Contains(stdout.String(), "container_name: shop.tools") {
		t.Errorf("stdout export missing tools:\n%s", stdout.String())
	}
}
