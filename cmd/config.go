package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fgrehm/dockman/internal/project"
	"github.com/fgrehm/dockman/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the declared containers and groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := currentProject()
		if err != nil {
			return err
		}
		printConfig(ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr()), p)
		return nil
	},
}

// printConfig lists containers with their dependencies, then groups.
func printConfig(u *ui.UI, p *project.Project) {
	u.Keyval("project", p.Name)
	u.Keyval("directory", p.Dir)

	u.Header("Containers")

	rows := make([][]string, 0, len(p.Containers()))
	for _, c := range p.Containers() {
		rows = append(rows, []string{c.QualifiedName(), c.Image, strings.Join(c.Dependencies(), ", ")})
	}
	u.Table([]string{"CONTAINER", "IMAGE", "DEPENDS ON"}, rows)

	if len(p.Groups()) == 0 {
		return
	}
	u.Header("Groups")
	rows = rows[:0]
	for _, g := range p.Groups() {
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = m.Name
		}
		rows = append(rows, []string{g.Name, strings.Join(members, ", ")})
	}
	u.Table([]string{"GROUP", "MEMBERS"}, rows)
}
