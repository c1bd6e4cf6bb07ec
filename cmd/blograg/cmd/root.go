package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blograg/internal/app"
	"blograg/internal/config"
	"blograg/internal/logging"
)

var (
	// cfgPath overrides config lookup (./config.yaml, then ~/.config/blograg/config.yaml)
	cfgPath string
	// logLevel overrides log.level from the config file
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blograg",
	Short: "Blog content service with retrieval-augmented answers",
	Long: `blograg stores blog posts and answers questions about them by retrieving
the most relevant passages and handing them to a language model.

Examples:
  # Start the HTTP API on :5000
  blograg serve

  # Load the sample posts into the configured store
  blograg seed

  # Ask a question from the terminal
  blograg ask "What is machine learning?"

  # Open the interactive chat
  blograg chat`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (defaults to ./config.yaml or ~/.config/blograg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// setup loads config and builds the app. Commands own the returned cleanup.
func setup(ctx context.Context) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(context.Background()); err != nil {
			log.Warn("close store", zap.Error(err))
		}
		_ = log.Sync()
	}
	return a, cleanup, nil
}
