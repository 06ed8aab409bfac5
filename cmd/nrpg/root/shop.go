package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/engine"
	"github.com/phuchgg/neon-rpg/internal/ui"
)

func newShopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop [category]",
		Short: "Browse cosmetic rewards",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			var cats []engine.Category
			if len(args) == 1 {
				c, ok := engine.ParseCategory(args[0])
				if !ok {
					return fmt.Errorf("unknown category %q", args[0])
				}
				cats = append(cats, c)
			}

			ledger := a.svc.Rewards()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", ui.Heading(ui.IconShop, "Shop"), ui.LabelValue("Bank", a.svc.Progress().XPBank))
			for _, r := range engine.Catalog(cats...) {
				price := ui.Gold.Render(fmt.Sprintf("%d XP", r.Cost))
				switch {
				case ledger.EquippedID(r.Category) == r.ID:
					price = ui.Good.Render("equipped")
				case ledger.Has(r.ID) || r.Free():
					price = ui.Good.Render("owned")
				case r.StreakOnly:
					price = ui.Warn.Render(fmt.Sprintf("%d day streak", engine.StreakBadgeDay))
				}
				line := fmt.Sprintf("  %-6s %-22s %-18s %s", r.Category, r.ID, r.Name, price)
				if r.Buff != "" {
					line += " " + ui.Muted.Render(r.Buff)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		}),
	}
	cmd.AddCommand(newShopBuyCmd(), newShopEquipCmd())
	return cmd
}

func newShopBuyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "buy <reward>",
		Short: "Unlock a reward with banked XP",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			r, ok := engine.LookupReward(args[0])
			if !ok {
				return engine.NotFoundError{Kind: "reward", ID: args[0]}
			}
			if r.Cost > 0 && !r.StreakOnly && !a.svc.Rewards().Has(r.ID) {
				ok, err := confirm(fmt.Sprintf("Spend %d XP on %s?", r.Cost, r.Name), yes)
				if err != nil || !ok {
					return err
				}
			}

			res, err := a.svc.UnlockReward(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.Status {
			case engine.UnlockSuccess:
				fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconSparkle+" Unlocked"), r.Name, ui.Muted.Render("(equipped)"))
				a.afterMutation(cmd)
			case engine.UnlockAlreadyUnlocked:
				fmt.Fprintf(out, "%s already owned\n", r.Name)
			case engine.UnlockInsufficientFunds:
				return fmt.Errorf("not enough XP for %s: short by %d", r.Name, res.Shortfall)
			case engine.UnlockRejected:
				return fmt.Errorf("%s is earned with a %d day streak and cannot be bought", r.Name, engine.StreakBadgeDay)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newShopEquipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "equip <category> <reward>",
		Short: "Equip an owned reward",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			c, ok := engine.ParseCategory(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}
			res, err := a.svc.Equip(cmd.Context(), c, args[1])
			if err != nil {
				return err
			}
			if res.Status == engine.EquipNotUnlocked {
				return fmt.Errorf("%s is not unlocked yet (nrpg shop buy %s)", res.Reward.Name, res.Reward.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render("Equipped"), res.Reward.Name)
			a.afterMutation(cmd)
			return nil
		}),
	}
}
