package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research the queued candidates and save the results",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		svc := newResearchService(cfg, log)
		queue, err := svc.LoadQueue()
		if err != nil {
			log.Fatal("loading research queue", zap.Error(err))
		}
		if len(queue) == 0 {
			log.Info("no jobs need research")
			if err := svc.SaveResults(nil); err != nil {
				log.Fatal("saving empty results", zap.Error(err))
			}
			return
		}

		researcher, err := newResearcher(ctx, cfg, log)
		if err != nil {
			log.Fatal("building researcher", zap.Error(err))
		}

		results, err := researcher.Research(ctx, queue)
		if err != nil {
			log.Fatal("research failed", zap.Error(err))
		}

		if err := svc.SaveResults(results); err != nil {
			log.Fatal("saving research results", zap.Error(err))
		}
		log.Info("research finished", zap.Int("results", len(results)))
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
