package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Deduplicate the candidate files and insert new jobs into the database",
	Run: func(cmd *cobra.Command, _ []string) {
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

		syncer := newSyncer(store, cfg, log)

		if cmd.Flag("replay").Value.String() == "true" {
			if _, err := syncer.Replay(ctx); err != nil {
				log.Fatal("replay failed", zap.Error(err))
			}
			return
		}

		if _, err := syncer.Sync(ctx); err != nil {
			log.Fatal("sync failed", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("replay", false, "replay a previously written failed-import artifact instead of syncing")
}
