package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newWipeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete all local progress and start over",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ok, err := confirm("Delete every task, boss, quest and reward?", yes)
			if err != nil || !ok {
				return err
			}
			if err := a.svc.Wipe(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Wiped. Fresh start."))
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
