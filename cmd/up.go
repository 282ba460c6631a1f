package cmd

import (
	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up GROUP",
	Short: "Start every container of a group, dependencies first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, done, err := newEngine(u)
		if err != nil {
			return err
		}
		defer done()

		u.Header("Starting group " + args[0])
		return eng.Up(cmd.Context(), args[0])
	},
}
