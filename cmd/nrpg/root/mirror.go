package root

import (
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/phuchgg/neon-rpg/internal/config"
	"github.com/phuchgg/neon-rpg/internal/mirror"
)

func newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Run the sync mirror server",
	}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve player documents over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			fxApp := fx.New(
				mirror.Module,
				fx.Decorate(func(cfg *config.Config) *config.Config {
					if addr != "" {
						cfg.MirrorAddr = addr
					}
					return cfg
				}),
				fx.NopLogger,
				fx.Invoke(mirror.Run),
			)
			if err := fxApp.Err(); err != nil {
				return err
			}
			fxApp.Run()
			return nil
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "Listen address (overrides NRPG_MIRROR_ADDR)")

	cmd.AddCommand(serve)
	return cmd
}
