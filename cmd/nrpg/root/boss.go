package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newBossCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boss",
		Short: "Inspect and manage the boss roster",
		RunE:  withApp(listBosses),
	}
	cmd.AddCommand(newBossAddCmd(), newBossAssignCmd(), newBossResetCmd())
	return cmd
}

func listBosses(cmd *cobra.Command, a *app, _ []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Heading(ui.IconSkull, fmt.Sprintf("Bosses (zone %d)", a.svc.Zone())))
	views := a.svc.Bosses()
	titles := map[string]string{}
	for _, v := range views {
		titles[v.Boss.ID] = v.Boss.Title
	}
	for i, v := range views {
		b := v.Boss
		status := ui.StatusText("open")
		switch {
		case b.IsDefeated:
			status = ui.StatusText("defeated")
		case !v.Assignable:
			var names []string
			for _, id := range v.LockedBy {
				names = append(names, orDefault(titles[id], id))
			}
			status = ui.StatusText("locked") + ui.Muted.Render(" after "+strings.Join(names, ", "))
		}
		fmt.Fprintf(out, "%3d %s %-24s %s %5.1f%% %d/%d HP %s %s\n",
			i+1, ui.TierIcon(string(b.Tier)), b.Title, ui.Bar(b.Progress, 12), b.Progress,
			b.XPRemaining, b.TotalXP, status, ui.Muted.Render(shortID(b.ID)))
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func newBossAddCmd() *cobra.Command {
	var (
		tier  string
		hp    int
		desc  string
		after []string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a custom boss",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			in := engine.CreateBossInput{
				Title:       strings.Join(args, " "),
				Description: desc,
				Tier:        engine.Tier(strings.ToLower(tier)),
				TotalXP:     hp,
			}
			views := a.svc.Bosses()
			for _, ref := range after {
				b, err := resolveBoss(views, ref)
				if err != nil {
					return err
				}
				in.UnlockAfter = append(in.UnlockAfter, b.ID)
			}
			b, err := a.svc.CreateBoss(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render(ui.IconPlus+" Boss"), ui.TierIcon(string(b.Tier)), b.Title,
				ui.Muted.Render(fmt.Sprintf("%d HP, %s", b.TotalXP, shortID(b.ID))))
			a.afterMutation(cmd)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&tier, "tier", "t", string(engine.TierMini), "Tier (mini|elite|mega)")
	cmd.Flags().IntVar(&hp, "hp", 0, "Total HP (defaults to the tier's default)")
	cmd.Flags().StringVarP(&desc, "desc", "d", "", "Description")
	cmd.Flags().StringSliceVar(&after, "after", nil, "Bosses that must fall first")
	return cmd
}

func newBossAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <task> [boss]",
		Short: "Aim a task at a boss (omit the boss to unlink)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			t, err := resolveTask(a.svc.Tasks(), args[0])
			if err != nil {
				return err
			}
			var bossID, title string
			if len(args) == 2 {
				b, err := resolveBoss(a.svc.Bosses(), args[1])
				if err != nil {
					return err
				}
				bossID, title = b.ID, b.Title
			}
			if err := a.svc.AssignTask(cmd.Context(), t.ID, bossID); err != nil {
				return err
			}
			if bossID == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unlinked\n", t.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s → %s\n", t.Title, ui.Warn.Render(ui.IconSkull+" "+title))
			}
			a.afterMutation(cmd)
			return nil
		}),
	}
}

func newBossResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-zone",
		Short: "Replace the roster with a fresh zone",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			ok, err := confirm("Replace every boss with a fresh roster?", yes)
			if err != nil || !ok {
				return err
			}
			if err := a.svc.ResetZone(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn.Render("Zone reset: a new roster rises"))
			a.afterMutation(cmd)
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
