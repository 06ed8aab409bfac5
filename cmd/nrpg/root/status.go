package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show level, streak, zone, class and loadout",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			p := a.svc.Progress()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Status"))
			need := engine.XPForLevel(p.Level)
			fmt.Fprintf(out, "%s %s %d/%d\n", ui.LabelValue("Level", p.Level), ui.Bar(float64(p.XP)*100/float64(need), 20), p.XP, need)
			fmt.Fprintln(out, ui.LabelValue("Bank", fmt.Sprintf("%d XP", p.XPBank)))
			fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d", ui.IconFlame, p.Streak)))

			bosses := a.svc.Bosses()
			roster := make([]engine.Boss, 0, len(bosses))
			for _, v := range bosses {
				roster = append(roster, v.Boss)
			}
			fmt.Fprintln(out, ui.LabelValue("Zone", fmt.Sprintf("%d (%d/%d bosses down)", a.svc.Zone(), engine.DefeatedCount(roster), len(roster))))

			class := "none"
			if cur := a.svc.Class().Current; cur != "" {
				if d, ok := engine.LookupClass(cur); ok {
					class = d.Name
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Class", class))

			ledger := a.svc.Rewards()
			for _, c := range engine.Categories {
				id := ledger.EquippedID(c)
				if id == "" {
					continue
				}
				name := id
				if r, ok := engine.LookupReward(id); ok {
					name = r.Name
				}
				fmt.Fprintln(out, ui.LabelValue(string(c), name))
			}

			earned, all := 0, a.svc.Achievements()
			for _, ach := range all {
				if ach.Earned {
					earned++
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Achievements", fmt.Sprintf("%d/%d", earned, len(all))))

			open := 0
			for _, t := range a.svc.Tasks() {
				if !t.Completed {
					open++
				}
			}
			fmt.Fprintln(out, ui.LabelValue("Open tasks", open))
			return nil
		}),
	}
}
