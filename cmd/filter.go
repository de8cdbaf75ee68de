package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/dedupe"
)

var filterCmd = &cobra.Command{
	Use:   "filter-new",
	Short: "Plan the research queue from new candidates not yet in the database",
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

		existing, err := store.IdentityRows(ctx)
		if err != nil {
			log.Fatal("fetching existing jobs", zap.Error(err))
		}

		svc := newResearchService(cfg, log)
		if _, err := svc.PlanQueue(dedupe.NewIndex(existing)); err != nil {
			log.Fatal("planning research queue", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(filterCmd)
}
