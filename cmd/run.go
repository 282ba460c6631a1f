package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fgrehm/dockman/internal/engine"
)

var interactiveFlag bool

var runCmd = &cobra.Command{
	Use:   "run CONTAINER [ARGS...]",
	Short: "Start a container after its dependencies",
	Long: `Start a container after everything it depends on (volumes_from and links).

Extra arguments replace the configured command. With --interactive a new,
auto-removed container is attached to the terminal; when the container is
already running the session gets a numbered name and no published ports.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, done, err := newEngine(u)
		if err != nil {
			return err
		}
		defer done()

		u.Header("Running " + args[0])
		return eng.Run(cmd.Context(), args[0], engine.RunOptions{
			Interactive: interactiveFlag,
			Args:        args[1:],
		})
	},
}

func init() {
	runCmd.Flags().BoolVarP(&interactiveFlag, "interactive", "i", false, "attach the terminal to a new container")
	// Flags after the container name belong to the container command.
	runCmd.Flags().SetInterspersed(false)
}
