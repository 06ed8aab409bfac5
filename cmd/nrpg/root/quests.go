package root

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quests [daily|weekly|event]",
		Short: "Show the quest board",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			// Expired quests should read as failed before they are shown.
			if _, err := a.svc.Tick(cmd.Context()); err != nil {
				return err
			}
			buckets, err := bucketArgs(args)
			if err != nil {
				return err
			}
			now := time.Now()
			out := cmd.OutOrStdout()
			for _, b := range buckets {
				printBucket(out, b, a.svc.Quests(b), now)
			}
			return nil
		}),
	}
	cmd.AddCommand(newQuestsRerollCmd())
	return cmd
}

func newQuestsRerollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reroll <daily|weekly|event>",
		Short: "Replace a bucket's quests with a fresh set",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			b, ok := engine.ParseBucket(args[0])
			if !ok {
				return fmt.Errorf("unknown bucket %q", args[0])
			}
			qs, err := a.svc.RerollQuests(cmd.Context(), b)
			if err != nil {
				return err
			}
			printBucket(cmd.OutOrStdout(), b, qs, time.Now())
			a.afterMutation(cmd)
			return nil
		}),
	}
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Expire overdue quests and regenerate buckets past their reset",
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			res, err := a.svc.Tick(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !res.Changed() {
				fmt.Fprintln(out, ui.Muted.Render("Nothing to do."))
				return nil
			}
			for _, bq := range res.Failed {
				fmt.Fprintf(out, "%s %s quest: %s\n", ui.StatusText("failed"), bq.Bucket, bq.Quest.Title)
			}
			for _, b := range res.Regenerated {
				fmt.Fprintf(out, "%s %s quests regenerated\n", ui.IconScroll, b)
			}
			a.afterMutation(cmd)
			return nil
		}),
	}
}

func bucketArgs(args []string) ([]engine.Bucket, error) {
	if len(args) == 0 {
		return engine.Buckets, nil
	}
	b, ok := engine.ParseBucket(args[0])
	if !ok {
		return nil, fmt.Errorf("unknown bucket %q", args[0])
	}
	return []engine.Bucket{b}, nil
}

func printBucket(w io.Writer, b engine.Bucket, qs []engine.Quest, now time.Time) {
	title := string(b)
	if next, err := engine.NextReset(b, now); err == nil && b != engine.BucketEvent {
		title += ui.Muted.Render(" resets in " + next.Sub(now).Truncate(time.Minute).String())
	}
	fmt.Fprintln(w, ui.Heading(ui.IconScroll, title))
	if len(qs) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("  (no quests)"))
		return
	}
	for _, q := range qs {
		status := "active"
		switch {
		case q.IsComplete:
			status = "complete"
		case q.IsFailed:
			status = "failed"
		}
		line := fmt.Sprintf("  %-44s %d/%d %s %s", q.Title, q.Condition.Current, q.Condition.Target,
			ui.Gold.Render(fmt.Sprintf("+%d XP", q.RewardXP)), ui.StatusText(status))
		if q.TimeLimit > 0 && !q.Terminal() {
			left := max(q.StartTime.Add(q.TimeLimit).Sub(now), 0).Truncate(time.Second)
			line += " " + ui.Warn.Render(ui.IconClock+" "+left.String())
		}
		fmt.Fprintln(w, line)
	}
}
