package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var (
		n     int
		types []string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the activity log, newest first",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			filter := make([]engine.ActivityType, 0, len(types))
			for _, t := range types {
				filter = append(filter, engine.ActivityType(t))
			}
			out := cmd.OutOrStdout()
			entries := a.svc.Activity(n, filter...)
			if len(entries) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no activity yet)"))
				return nil
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s %-7s %s", ui.Muted.Render(e.Date.Local().Format("2006-01-02 15:04")), e.Type, e.Description)
				if e.XP > 0 {
					line += " " + ui.Gold.Render(fmt.Sprintf("+%d XP", e.XP))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		}),
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 20, "Entries to show (0 for all)")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Only these types (task, quest, boss, class, reward, streak)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize one month of activity",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			at := time.Now()
			if month != "" {
				t, err := time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
				}
				at = t
			}
			s := a.svc.MonthlySummary(at)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Report "+s.Month))
			fmt.Fprintln(out, ui.LabelValue("XP earned", s.XP))
			fmt.Fprintln(out, ui.LabelValue("Tasks completed", s.TasksCompleted))
			fmt.Fprintln(out, ui.LabelValue("Bosses defeated", s.BossesDefeated))
			fmt.Fprintln(out, ui.LabelValue("Quests completed", s.QuestsCompleted))

			defeated := 0
			for _, h := range a.svc.BossHistory() {
				if sameMonth(h.DefeatedAt, at) {
					if defeated == 0 {
						fmt.Fprintln(out, ui.H2.Render("Fallen bosses"))
					}
					defeated++
					fmt.Fprintf(out, "  %s %s %s\n", ui.TierIcon(string(h.Tier)), h.Title, ui.Muted.Render(h.DefeatedAt.Local().Format("Jan 2")))
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (defaults to the current month)")
	return cmd
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Local().Date()
	by, bm, _ := b.Local().Date()
	return ay == by && am == bm
}

func newLeaderboardCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank this month's XP against the rival crew",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			entries, err := a.svc.Leaderboard(cmd.Context(), name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Leaderboard"))
			for _, e := range entries {
				line := fmt.Sprintf("%3d  %-16s %6d XP  %4d tasks  %2d bosses", e.Rank, e.Name, e.XP, e.TasksCompleted, e.BossesDefeated)
				if e.IsPlayer {
					line = ui.Gold.Render(line)
				}
				fmt.Fprintln(out, line)
			}
			// Rivals advanced while ranking.
			a.afterMutation(cmd)
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "You", "Your display name")
	return cmd
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, "Achievements"))
			for _, ach := range a.svc.Achievements() {
				mark := ui.Muted.Render(ui.IconLock)
				name := ui.Muted.Render(ach.Name)
				if ach.Earned {
					mark, name = ach.Icon, ui.Good.Render(ach.Name)
				}
				fmt.Fprintf(out, "  %s %s %s\n", mark, name, ui.Muted.Render(ach.Description))
			}
			return nil
		}),
	}
}
