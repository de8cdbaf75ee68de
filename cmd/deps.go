package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobsift/jobsift/internal/ai"
	"github.com/jobsift/jobsift/internal/ai/gemini"
	"github.com/jobsift/jobsift/internal/candidate"
	"github.com/jobsift/jobsift/internal/fetch"
	"github.com/jobsift/jobsift/internal/logger"
	"github.com/jobsift/jobsift/internal/notify"
	"github.com/jobsift/jobsift/internal/research"
	"github.com/jobsift/jobsift/internal/secrets"
	"github.com/jobsift/jobsift/internal/storage"
	jobsync "github.com/jobsift/jobsift/internal/sync"
)

// mustLogger builds the process logger from the persistent flags.
func mustLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func openStore(ctx context.Context, cfg *Config, log *zap.Logger) (*storage.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database url is not configured (set DATABASE_URL or the 'database-url' key)")
	}
	return storage.New(ctx, cfg.DatabaseURL, storage.Options{}, log)
}

func newFiles(cfg *Config) *candidate.FileStore {
	return candidate.NewFileStore(cfg.Pipeline.CandidatesDir)
}

func newResearchService(cfg *Config, log *zap.Logger) *research.Service {
	return research.NewService(newFiles(cfg), cfg.Pipeline, log)
}

func newSyncer(store *storage.Store, cfg *Config, log *zap.Logger) *jobsync.Syncer {
	return jobsync.New(store, newFiles(cfg), cfg.Pipeline, log)
}

func newNotifier(cfg *Config, log *zap.Logger) notify.Notifier {
	url, project := "", app
	if cfg.Notify != nil {
		url = cfg.Notify.WebhookURL
		if cfg.Notify.Project != "" {
			project = cfg.Notify.Project
		}
	}
	return notify.New(url, project, log)
}

// buildSources assembles every board client with configured credentials.
// Boards without credentials are skipped with a log line, not an error, so
// a partially configured install can still run.
func buildSources(cfg *Config, log *zap.Logger) []fetch.Source {
	var sources []fetch.Source
	boards := cfg.Boards
	if boards == nil {
		boards = &BoardsConfig{}
	}

	if boards.Adzuna != nil && boards.Adzuna.AppID != "" && boards.Adzuna.AppKey != "" {
		sources = append(sources, fetch.NewAdzuna(boards.Adzuna.AppID, boards.Adzuna.AppKey, boards.Adzuna.Queries, log))
	} else {
		log.Info("adzuna skipped", zap.String("reason", "no credentials configured"))
	}

	if boards.Reed != nil && boards.Reed.APIKey != "" {
		sources = append(sources, fetch.NewReed(boards.Reed.APIKey, boards.Reed.Queries, log))
	} else {
		log.Info("reed skipped", zap.String("reason", "no credentials configured"))
	}

	return sources
}

func newGenerator(ctx context.Context, cfg *Config) (*gemini.Generator, *GeminiConfig, error) {
	aiCfg := cfg.AI
	if aiCfg == nil || !aiCfg.Enabled {
		return nil, nil, errors.New("ai is not enabled in the configuration")
	}
	if aiCfg.Provider != "" && aiCfg.Provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}
	gem := aiCfg.Gemini
	if gem == nil {
		gem = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gem.APIKey,
		File:  gem.APIKeyFile,
	})
	if err != nil {
		return nil, nil, ai.NeedsIntervention("gemini api key is missing (set GEMINI_API_KEY or ai.gemini.api-key-file)", err)
	}

	gen, err := gemini.NewGenerator(ctx, apiKey, gem.Model, gem.MaxTokens)
	if err != nil {
		return nil, nil, err
	}
	return gen, gem, nil
}

func newGatherer(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Gatherer, error) {
	gen, _, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gatherSources := gatherOnlySources(cfg)
	return gemini.NewSearch(gen, gatherSources, cfg.Pipeline.ScoreCutoff, logger.WithAI(log, "gemini", gen.Model())), nil
}

func newResearcher(ctx context.Context, cfg *Config, log *zap.Logger) (ai.Researcher, error) {
	gen, gem, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return gemini.NewInvestigator(gen, gem.ResearchBatchSize, logger.WithAI(log, "gemini", gen.Model())), nil
}

// gatherOnlySources removes the board-API sources from the configured list;
// those are fetched directly, never via the model.
func gatherOnlySources(cfg *Config) []string {
	direct := map[string]struct{}{"adzuna": {}, "reed": {}}
	var gatherSources []string
	for _, s := range cfg.Pipeline.Sources {
		if _, ok := direct[s]; ok {
			continue
		}
		gatherSources = append(gatherSources, s)
	}
	return gatherSources
}
