package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobsift/jobsift/internal/config"
	"github.com/jobsift/jobsift/internal/fetch"
)

const (
	app = "jobsift"
)

type Config struct {
	Pipeline    config.Params `mapstructure:"pipeline"`
	DatabaseURL string        `mapstructure:"database-url"`
	Schedule    string        `mapstructure:"schedule"`
	Notify      *NotifyConfig `mapstructure:"notify"`
	AI          *AIConfig     `mapstructure:"ai"`
	Boards      *BoardsConfig `mapstructure:"boards"`
}

type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook-url"`
	Project    string `mapstructure:"project"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey            string `mapstructure:"api-key"`
	APIKeyFile        string `mapstructure:"api-key-file"`
	Model             string `mapstructure:"model"`
	MaxTokens         int32  `mapstructure:"max-tokens"`
	ResearchBatchSize int    `mapstructure:"research-batch-size"`
}

type BoardsConfig struct {
	Adzuna *AdzunaConfig `mapstructure:"adzuna"`
	Reed   *ReedConfig   `mapstructure:"reed"`
}

type AdzunaConfig struct {
	AppID   string              `mapstructure:"app-id"`
	AppKey  string              `mapstructure:"app-key"`
	Queries []fetch.AdzunaQuery `mapstructure:"queries"`
}

type ReedConfig struct {
	APIKey  string            `mapstructure:"api-key"`
	Queries []fetch.ReedQuery `mapstructure:"queries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsift collects, scores and deduplicates job postings into a dashboard database",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv := func(key, env string) {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}
	bindEnv("database-url", "DATABASE_URL")
	bindEnv("ai.gemini.api-key", "GEMINI_API_KEY")
	bindEnv("boards.adzuna.app-id", "ADZUNA_APP_ID")
	bindEnv("boards.adzuna.app-key", "ADZUNA_APP_KEY")
	bindEnv("boards.reed.api-key", "REED_API_KEY")
	bindEnv("notify.webhook-url", "NOTIFY_WEBHOOK_URL")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local development keeps credentials in .env.local; a missing file is
	// the normal case everywhere else.
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		log.Printf("loading .env.local: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional: every knob has a default or an
		// environment binding.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	config.Pipeline = config.Pipeline.Merge()
	return config, nil
}
