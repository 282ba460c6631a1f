package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fgrehm/dockman/internal/compose"
	"github.com/fgrehm/dockman/internal/project"
)

var composeOutputFlag string

var composeCmd = &cobra.Command{
	Use:   "compose [GROUP]",
	Short: "Print the project as a compose file",
	Long: `Print the project as a compose-spec document. With a group, only the
group members and their dependencies are exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := currentProject()
		if err != nil {
			return err
		}

		var group string
		if len(args) == 1 {
			group = args[0]
		}
		return exportCompose(cmd.Context(), cmd.OutOrStdout(), p, group, composeOutputFlag)
	},
}

func init() {
	composeCmd.Flags().StringVarP(&composeOutputFlag, "output", "o", "", "write to a file instead of stdout")
}

// exportCompose writes the export to stdout, or to output when it names a
// file. The file is only replaced once the whole export has succeeded.
func exportCompose(ctx context.Context, stdout io.Writer, p *project.Project, group, output string) error {
	if output == "" || output == "-" {
		return writeCompose(ctx, stdout, p, group)
	}

	var buf bytes.Buffer
	if err := writeCompose(ctx, &buf, p, group); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

// writeCompose exports the project, or the bring-up set of group, and writes
// it as YAML after checking that compose accepts it.
func writeCompose(ctx context.Context, w io.Writer, p *project.Project, group string) error {
	containers := p.Containers()
	if group != "" {
		g, err := p.Group(group)
		if err != nil {
			return err
		}
		containers, err = p.Graph().ChainUnion(g.Members, false)
		if err != nil {
			return err
		}
	}

	cp, err := compose.Export(p, containers)
	if err != nil {
		return err
	}
	data, err := compose.Marshal(cp)
	if err != nil {
		return fmt.Errorf("rendering compose file: %w", err)
	}
	if _, err := compose.Load(ctx, data, p.Dir, cp.Name); err != nil {
		return fmt.Errorf("exported compose file is invalid: %w", err)
	}

	_, err = w.Write(data)
	return err
}
