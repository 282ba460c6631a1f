package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fgrehm/dockman/internal/ui"
)

func TestPrintConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shop")
	writeFile(t, filepath.Join(dir, "dockman.yaml"), composeTestConfig)
	withFlags(t, "", dir)

	p, err := currentProject()
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	printConfig(ui.New(out, &bytes.Buffer{}), p)
	got := out.String()

	for _, want := range []string{"==> Containers", "shop.web", "nginx", "==> Groups", "app"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	var webLine string
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, "shop.web") {
			webLine = line
		}
	}
	if !strings.HasSuffix(strings.TrimSpace(webLine), "db") {
		t.Errorf("web row should list its dependency, got %q", webLine)
	}
}
