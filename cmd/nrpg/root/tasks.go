package root

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newAddCmd() *cobra.Command {
	var bossRef string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task, optionally aimed at a boss",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			in := engine.CreateTaskInput{Title: strings.Join(args, " ")}
			if bossRef != "" {
				b, err := resolveBoss(a.svc.Bosses(), bossRef)
				if err != nil {
					return err
				}
				in.BossID = b.ID
			}
			t, err := a.svc.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), t.Title, ui.Muted.Render(shortID(t.ID)))
			a.afterMutation(cmd)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&bossRef, "boss", "b", "", "Boss to damage when this task is done (list position or id prefix)")
	return cmd
}

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <task>",
		Short: "Complete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			t, err := resolveTask(a.svc.Tasks(), args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.CompleteTask(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			printComplete(cmd.OutOrStdout(), t, res)
			a.afterMutation(cmd)
			return nil
		}),
	}
	return cmd
}

func printComplete(w io.Writer, t engine.Task, res *engine.CompleteResult) {
	fmt.Fprintf(w, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Done"), t.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", res.XPDelta)))
	if res.LeveledUp {
		fmt.Fprintf(w, "%s %s\n", ui.BadgeLevelUp, ui.LabelValue("Level", fmt.Sprintf("%d → %d", res.LevelBefore, res.LevelAfter)))
	}
	if res.Streak.NewDay {
		line := fmt.Sprintf("%s %d day streak", ui.IconFlame, res.Streak.Streak)
		if res.Streak.BonusXP > 0 {
			line += ui.Gold.Render(fmt.Sprintf(" (+%d bonus)", res.Streak.BonusXP))
		}
		fmt.Fprintln(w, line)
	}
	if res.BadgeEarned {
		fmt.Fprintln(w, ui.Gold.Render(ui.IconTrophy+" Streak Flame badge earned"))
	}
	for _, c := range res.ClassesUnlocked {
		fmt.Fprintln(w, ui.Good.Render(ui.IconSparkle+" Class unlocked: "+string(c)))
	}
	switch {
	case res.BossDefeated != nil:
		fmt.Fprintf(w, "%s %s %s\n", ui.Good.Render(ui.IconSkull+" Defeated"), res.BossDefeated.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", engine.BossDefeatXP)))
	case res.Boss != nil:
		fmt.Fprintf(w, "%s -%d HP to %s %s\n", ui.IconBolt, res.BossDamage, res.Boss.Title, ui.Bar(res.Boss.Progress, 12))
	}
	if res.ZoneUnlocked > 0 {
		fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("Zone %d unlocked", res.ZoneUnlocked)))
	}
	if res.ZoneReset {
		fmt.Fprintln(w, ui.Warn.Render("Zone cleared: a new roster rises"))
	}
	for _, bq := range res.QuestsCompleted {
		fmt.Fprintf(w, "%s %s quest: %s %s\n", ui.IconScroll, bq.Bucket, bq.Quest.Title, ui.Gold.Render(fmt.Sprintf("+%d XP", bq.Quest.RewardXP)))
	}
}

func newReopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <task>",
		Short: "Mark a completed task as open again (XP is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			t, err := resolveTask(a.svc.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := a.svc.ReopenTask(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Reopened"), t.Title)
			a.afterMutation(cmd)
			return nil
		}),
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			t, err := resolveTask(a.svc.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteTask(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Muted.Render("Deleted"), t.Title)
			a.afterMutation(cmd)
			return nil
		}),
	}
}

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (open first)",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			tasks := a.svc.Tasks()
			bossTitles := map[string]string{}
			for _, v := range a.svc.Bosses() {
				bossTitles[v.Boss.ID] = v.Boss.Title
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks"))
			shown := 0
			for i, t := range tasks {
				if t.Completed && !all {
					continue
				}
				shown++
				mark := "[ ]"
				if t.Completed {
					mark = ui.Good.Render("[x]")
				}
				line := fmt.Sprintf("%3d %s %s %s", i+1, mark, t.Title, ui.Muted.Render(shortID(t.ID)))
				if title, ok := bossTitles[t.BossID]; ok {
					line += " " + ui.Warn.Render(ui.IconSkull+" "+title)
				}
				fmt.Fprintln(out, line)
			}
			if shown == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing here, add a task with: nrpg add \"...\")"))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")
	return cmd
}
