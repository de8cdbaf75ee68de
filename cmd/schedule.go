package cmd

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/fetch"
	"github.com/jobsift/jobsift/internal/pipeline"
)

// defaultSchedule is weekly on Monday 07:00.
const defaultSchedule = "0 7 * * 1"

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the full pipeline on a recurring cron schedule",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := mustLogger()

		cfg, err := getConfig()
		if err != nil {
			log.Fatal("getting a config", zap.Error(err))
		}

		spec := cfg.Schedule
		if flagSpec := cmd.Flag("cron").Value.String(); flagSpec != "" {
			spec = flagSpec
		}
		if spec == "" {
			spec = defaultSchedule
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
		if cfg.AI != nil && cfg.AI.Enabled {
			deps.Gatherer, err = newGatherer(ctx, cfg, log)
			if err != nil {
				log.Fatal("building gatherer", zap.Error(err))
			}
			deps.Researcher, err = newResearcher(ctx, cfg, log)
			if err != nil {
				log.Fatal("building researcher", zap.Error(err))
			}
		}

		runner := pipeline.NewRunner(deps, cfg.Pipeline)

		// Runs share the candidates dir, so overlapping runs would corrupt
		// each other's artifacts. A still-running previous run wins.
		var busy atomic.Bool

		scheduler := cron.New()
		_, err = scheduler.AddFunc(spec, func() {
			if !busy.CompareAndSwap(false, true) {
				log.Warn("previous pipeline run still in progress, skipping this tick")
				return
			}
			defer busy.Store(false)

			state, err := runner.Run(ctx)
			if err != nil {
				log.Error("scheduled pipeline run failed",
					zap.String("run_id", state.RunID),
					zap.Error(err),
				)
				return
			}
			log.Info("scheduled pipeline run finished", zap.String("run_id", state.RunID))
		})
		if err != nil {
			log.Fatal("invalid cron schedule", zap.String("schedule", spec), zap.Error(err))
		}

		log.Info("scheduler started", zap.String("schedule", spec))
		scheduler.Start()

		<-ctx.Done()
		log.Info("scheduler stopping")
		<-scheduler.Stop().Done()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().String("cron", "", "cron schedule (overrides the 'schedule' config key)")
}
