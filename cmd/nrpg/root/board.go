package root

import (
	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/tui"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the live board",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			if err := tui.RunBoard(cmd.Context(), a.svc, cmd.OutOrStdout()); err != nil {
				return err
			}
			a.afterMutation(cmd)
			return nil
		}),
	}
}
