package cmd

import (
	"context"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/fetch"
	"github.com/jobsift/jobsift/internal/pipeline"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Start a full pipeline run?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"pipeline-run"},
	Short:   "Run the full pipeline: fetch, gather, filter, research, merge, sync",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before running")
	runCmd.Flags().Bool("no-ai", false, "skip the AI gather and research phases")
	runCmd.Flags().Duration("phase-timeout", 0, "per-phase deadline (default 35m)")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()
	log := mustLogger()

	cfg, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	log.Info("starting jobsift", zap.String("version", version))

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err := prompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
		if action == PromptNo {
			log.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("connecting to storage", zap.Error(err))
	}
	defer store.Close()

	deps := pipeline.Deps{
		Sources:    buildSources(cfg, log),
		Processor:  fetch.NewProcessor(cfg.Pipeline, log),
		Files:      newFiles(cfg),
		Research:   newResearchService(cfg, log),
		Syncer:     newSyncer(store, cfg, log),
		Identities: store,
		Notifier:   newNotifier(cfg, log),
		Logger:     log,
	}

	noAI := cmd.Flag("no-ai").Value.String() == "true"
	if !noAI && cfg.AI != nil && cfg.AI.Enabled {
		deps.Gatherer, err = newGatherer(ctx, cfg, log)
		if err != nil {
			log.Fatal("building gatherer", zap.Error(err))
		}
		deps.Researcher, err = newResearcher(ctx, cfg, log)
		if err != nil {
			log.Fatal("building researcher", zap.Error(err))
		}
	} else {
		log.Info("running without AI phases")
	}

	runner := pipeline.NewRunner(deps, cfg.Pipeline)
	if timeout, err := cmd.Flags().GetDuration("phase-timeout"); err == nil && timeout > 0 {
		runner.SetPhaseTimeout(timeout)
	}

	state, err := runner.Run(ctx)
	if err != nil {
		if ai.IsNeedsIntervention(err) {
			log.Fatal("pipeline needs intervention",
				zap.String("run_id", state.RunID),
				zap.Error(err),
			)
		}
		log.Fatal("pipeline failed",
			zap.String("run_id", state.RunID),
			zap.Error(err),
		)
	}

	log.Info("pipeline finished",
		zap.String("run_id", state.RunID),
		zap.Int("research_queue", state.Summary.ResearchQueue),
		zap.Int("researched", state.Summary.Researched),
		zap.Int("inserted", state.Summary.Inserted),
		zap.Duration("took", time.Since(state.StartedAt)),
	)
}
