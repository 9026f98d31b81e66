package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/antonvlasov/gameroom-server/internal/app"
	"github.com/antonvlasov/gameroom-server/internal/config"
	"github.com/antonvlasov/gameroom-server/internal/log"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	cmd := &cobra.Command{
		Use:          "gameroom-server",
		Short:        "Multiplayer game room server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stdout, overrides.LogLevel)

			cfg, path, err := config.Load(logger, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)

			// Rebuild in case the config file set a different level than the flag.
			logger = log.New(os.Stdout, cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).
				Dur("heartbeat", cfg.Heartbeat).Msg("launching server")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			if err := application.Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "path to config file")
	flags.StringVar(&overrides.Addr, "addr", "", "address to bind the server to")
	flags.DurationVarP(&overrides.Heartbeat, "heartbeat", "b", 0, "heartbeat interval")
	flags.StringVar(&overrides.StaticDir, "static-dir", "", "directory with pages and assets")
	flags.StringVar(&overrides.DatabasePath, "db", "", "path to the results database")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd
}
