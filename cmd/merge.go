package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
)

var mergeCmd = &cobra.Command{
	Use:   "merge-research",
	Short: "Merge saved research results back into the candidate files",
	Run: func(cmd *cobra.Command, _ []string) {
		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		svc := newResearchService(cfg, log)

		var results []ai.ResearchResult
		if file := cmd.Flag("results").Value.String(); file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				log.Fatal("reading results file", zap.Error(err))
			}
			if err := json.Unmarshal(data, &results); err != nil {
				log.Fatal("decoding results file", zap.Error(err))
			}
		} else {
			results, err = svc.LoadResults()
			if err != nil {
				log.Fatal("loading research results", zap.Error(err))
			}
		}

		if _, err := svc.MergeResults(results); err != nil {
			log.Fatal("merging research results", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().String("results", "", "research results file (default is the saved research-results artifact)")
}
