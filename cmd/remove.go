package cmd

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove CONTAINER",
	Aliases: []string{"rm"},
	Short:   "Remove a container and everything that depends on it",
	Long: `Remove a container. Containers that depend on it are stopped and removed
first, since they cannot run without it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, done, err := newEngine(u)
		if err != nil {
			return err
		}
		defer done()

		u.Header("Removing " + args[0])
		return eng.Remove(cmd.Context(), args[0])
	},
}
