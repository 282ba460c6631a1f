package cmd

import (
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop CONTAINER",
	Short: "Stop a container and everything that depends on it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, done, err := newEngine(u)
		if err != nil {
			return err
		}
		defer done()

		u.Header("Stopping " + args[0])
		return eng.Stop(cmd.Context(), args[0])
	},
}
