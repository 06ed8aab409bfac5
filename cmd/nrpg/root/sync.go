package root

import (
	"fmt"

	"github.com/spf13/cobra"

	nrpgsync "github.com/phuchgg/neon-rpg/internal/sync"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push or pull state to the remote mirror",
	}
	cmd.AddCommand(newSyncPushCmd(), newSyncPullCmd(), newSyncDiffCmd())
	return cmd
}

func newSyncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload every local key",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			s, err := a.syncer()
			if err != nil {
				return err
			}
			res, err := s.PushAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s pushed %d keys as %s\n", ui.IconSync, len(res.Keys), a.cfg.PlayerID)
			return nil
		}),
	}
}

func newSyncPullCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace local keys with the remote copy",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			s, err := a.syncer()
			if err != nil {
				return err
			}
			ok, err := confirm("Overwrite local progress with the remote copy?", yes)
			if err != nil || !ok {
				return err
			}
			res, err := s.PullAll(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Empty {
				fmt.Fprintln(out, ui.Muted.Render("Remote has nothing for "+a.cfg.PlayerID+", local state kept."))
				return nil
			}
			fmt.Fprintf(out, "%s pulled %d keys\n", ui.IconSync, len(res.Imported))
			if len(res.Skipped) > 0 {
				fmt.Fprintln(out, ui.Warn.Render(fmt.Sprintf("skipped %v", res.Skipped)))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newSyncDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "List keys that differ between local and remote",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			s, err := a.syncer()
			if err != nil {
				return err
			}
			diffs, err := s.Diff(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(diffs) == 0 {
				fmt.Fprintln(out, ui.Good.Render("In sync."))
				return nil
			}
			for _, d := range diffs {
				var status string
				switch d.Status {
				case nrpgsync.DiffLocalOnly:
					status = ui.Good.Render("local only")
				case nrpgsync.DiffRemoteOnly:
					status = ui.Warn.Render("remote only")
				default:
					status = ui.H2.Render("changed")
				}
				fmt.Fprintf(out, "  %-22s %s\n", d.Key, status)
			}
			return nil
		}),
	}
}
