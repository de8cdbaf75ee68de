package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the jobs table and indexes if they do not exist",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		store, err := openStore(ctx, cfg, log)
		if err != nil {
			log.Fatal("connecting to storage", zap.Error(err))
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal("applying schema", zap.Error(err))
		}

		count, err := store.CountAll(ctx)
		if err != nil {
			log.Fatal("counting jobs", zap.Error(err))
		}
		log.Info("schema ready", zap.Int64("jobs", count))
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
