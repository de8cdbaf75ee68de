package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch, score and save candidates from the configured job-board APIs",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		sources := buildSources(cfg, log)
		if len(sources) == 0 {
			log.Fatal("no board sources configured",
				zap.String("hint", "set ADZUNA_APP_ID/ADZUNA_APP_KEY or REED_API_KEY"),
			)
		}

		processor := fetch.NewProcessor(cfg.Pipeline, log)
		results := fetch.All(ctx, sources, processor, newFiles(cfg), log)

		failed := 0
		for _, result := range results {
			if result.Err != nil {
				failed++
				continue
			}
			log.Info("source fetched",
				zap.String("source", result.Source),
				zap.Int("candidates", result.Count),
			)
		}
		if failed == len(results) {
			log.Fatal("all board sources failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
