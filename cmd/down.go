package cmd

import (
	"github.com/spf13/cobra"
)

var downCmd = &cobra.Command{
	Use:   "down GROUP",
	Short: "Stop every container of a group, dependents first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, done, err := newEngine(u)
		if err != nil {
			return err
		}
		defer done()

		u.Header("Stopping group " + args[0])
		return eng.Down(cmd.Context(), args[0])
	},
}
