package compose

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
)

// Load parses a compose document. It is used to check that an exported
// document is accepted by compose before it is written anywhere.
func Load(ctx context.Context, data []byte, workingDir, projectName string) (*types.Project, error) {
	details := types.ConfigDetails{
		WorkingDir: workingDir,
		ConfigFiles: []types.ConfigFile{{
			Filename: filepath.Join(workingDir, "compose.yaml"),
			Content:  data,
		}},
		Environment: types.Mapping{},
	}

	project, err := loader.LoadWithContext(ctx, details, func(opts *loader.Options) {
		opts.SkipConsistencyCheck = true
		opts.SkipInterpolation = true
		opts.SetProjectName(projectName, true)
	})
	if err != nil {
		return nil, fmt.Errorf("loading compose project: %w", err)
	}
	return project, nil
}
