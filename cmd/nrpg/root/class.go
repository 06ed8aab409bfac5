package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newClassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "class",
		Short: "List classes and your current pick",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			st := a.svc.Class()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Classes"))
			for _, d := range engine.Classes() {
				status := ""
				switch {
				case st.Current == d.ID:
					status = ui.StatusText("active")
				case !st.IsUnlocked(d.ID):
					status = ui.StatusText("locked")
				}
				fmt.Fprintf(out, "  %-12s %-40s %s\n", d.Name, ui.Muted.Render(d.Bonus), status)
			}
			return nil
		}),
	}
	cmd.AddCommand(newClassChooseCmd(), newClassQuestCmd(), newClassClaimCmd())
	return cmd
}

func newClassChooseCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "choose <class>",
		Short: "Pick a class (switching later costs banked XP)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, ok := engine.ParseClass(args[0])
			if !ok {
				return engine.NotFoundError{Kind: "class", ID: args[0]}
			}
			cur := a.svc.Class().Current
			if cur != "" && cur != id {
				ok, err := confirm(fmt.Sprintf("Switching class costs %d XP. Continue?", engine.ClassSwitchCost), yes)
				if err != nil || !ok {
					return err
				}
			}

			res, err := a.svc.ChooseClass(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.Status {
			case engine.ClassChanged:
				fmt.Fprintf(out, "%s %s\n", ui.Good.Render("Class set:"), res.Class.Name)
				if res.Class.NPC != "" {
					fmt.Fprintln(out, ui.Muted.Render(res.Class.NPC+": \""+res.Class.Quote+"\""))
				}
				a.afterMutation(cmd)
			case engine.ClassAlreadyActive:
				fmt.Fprintf(out, "%s is already your class\n", res.Class.Name)
			case engine.ClassLocked:
				return fmt.Errorf("%s is still locked", res.Class.Name)
			case engine.ClassInsufficientFunds:
				return fmt.Errorf("not enough XP to switch: short by %d", res.Shortfall)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newClassQuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quest",
		Short: "Show today's class quest",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			q, err := a.svc.ClassQuest(cmd.Context())
			if errors.Is(err, engine.ErrNoClass) {
				return errors.New("choose a class first (nrpg class choose <class>)")
			}
			if err != nil {
				return err
			}
			status := "open"
			if q.Completed {
				status = "done"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n", ui.IconScroll, q.Quest, ui.StatusText(status))
			fmt.Fprintln(out, ui.LabelValue("Class streak", q.Streak))
			return nil
		}),
	}
}

func newClassClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim",
		Short: "Claim today's class quest",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			res, err := a.svc.ClaimClassQuest(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Claimed"), res.Quest.Quest, ui.Gold.Render(fmt.Sprintf("+%d XP", res.XP)))
			if res.LevelChange.LeveledUp() {
				fmt.Fprintf(out, "%s %s\n", ui.BadgeLevelUp, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelChange.LevelBefore, res.LevelChange.LevelAfter)))
			}
			for _, bq := range res.QuestsCompleted {
				fmt.Fprintf(out, "%s %s quest: %s %s\n", ui.IconScroll, bq.Bucket, bq.Quest.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", bq.Quest.RewardXP)))
			}
			a.afterMutation(cmd)
			return nil
		}),
	}
}
