package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/notify"
)

var ghostCmd = &cobra.Command{
	Use:   "ghost",
	Short: "Mark applications awaiting a reply for too long as ghosted",
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

		days := cfg.Pipeline.GhostAfterDays
		cutoff := time.Now().AddDate(0, 0, -days)
		note := fmt.Sprintf("Auto-ghosted after %d days without a reply", days)

		ghosted, err := store.AutoGhost(ctx, cutoff, note)
		if err != nil {
			log.Fatal("auto-ghost failed", zap.Error(err))
		}
		if len(ghosted) == 0 {
			log.Info("no applications to ghost")
			return
		}

		for _, g := range ghosted {
			log.Info("application ghosted",
				zap.String("id", g.ID),
				zap.String("company", g.Company),
				zap.String("title", g.Title),
			)
		}

		notifier := newNotifier(cfg, log)
		event := notify.Event{
			Title:     "Applications auto-ghosted",
			Body:      fmt.Sprintf("%d application(s) had no reply for %d days and were marked as ghosted.", len(ghosted), days),
			Severity:  notify.SeverityWarning,
			EventType: "applications_ghosted",
			Metadata:  map[string]string{"count": fmt.Sprintf("%d", len(ghosted))},
		}
		if err := notifier.Notify(ctx, event); err != nil {
			log.Warn("notification delivery failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(ghostCmd)
}
