package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phuchgg/neon-rpg/internal/ui"
)

const Version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:           "nrpg",
	Short:         "Neon RPG: a cyberpunk progression layer for your to-do list",
	Long:          "Neon RPG turns finished tasks into XP, streaks, boss fights, quests and unlockable cosmetics.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newReopenCmd(),
		newRmCmd(),
		newListCmd(),
		newBossCmd(),
		newQuestsCmd(),
		newTickCmd(),
		newShopCmd(),
		newClassCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newReportCmd(),
		newLeaderboardCmd(),
		newAchievementsCmd(),
		newSyncCmd(),
		newWipeCmd(),
		newBoardCmd(),
		newMirrorCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		stop()
		os.Exit(1)
	}
}
