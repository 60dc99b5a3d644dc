package cli

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada-tasks/internal/logging"
	"github.com/Makepad-fr/tada-tasks/internal/server"
	"github.com/Makepad-fr/tada-tasks/internal/store/memstore"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory reference task service",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Output: os.Stdout})
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			store := memstore.New()
			if cfg.Server.Seed != "" {
				tasks, err := memstore.LoadSeed(cfg.Server.Seed)
				if err != nil {
					return err
				}
				if err := store.Seed(tasks); err != nil {
					return err
				}
				log.WithField("count", len(tasks)).Info("seeded tasks")
			}
			return server.New(store, log).Run(cmd.Context(), cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("seed", "", "JSON file of tasks to start with")
	return cmd
}
