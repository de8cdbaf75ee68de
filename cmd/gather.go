package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/fetch"
)

var gatherCmd = &cobra.Command{
	Use:   "gather",
	Short: "Collect candidates through AI web and email intake",
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()
		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		gatherer, err := newGatherer(ctx, cfg, log)
		if err != nil {
			log.Fatal("building gatherer", zap.Error(err))
		}

		gathered, err := gatherer.Gather(ctx)
		if err != nil {
			log.Fatal("gather failed", zap.Error(err))
		}

		processor := fetch.NewProcessor(cfg.Pipeline, log)
		files := newFiles(cfg)
		for source, rows := range gathered {
			processed := processor.Process(source, rows)
			if err := files.Save(source, processed); err != nil {
				log.Fatal("saving gathered candidates", zap.String("source", source), zap.Error(err))
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(gatherCmd)
}
