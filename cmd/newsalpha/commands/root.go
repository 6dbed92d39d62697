package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/pkg/config"
)

var (
	// Global flags
	secretsFile string
	env         string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newsalpha",
	Short: "NVIDIA 뉴스 감성 - 주가 분석 시스템",
	Long: `newsalpha Unified CLI

Collects NVIDIA news from three feeds, scores sentiment, stores daily
stock bars and relates the two.

Usage:
  go run ./cmd/newsalpha [command]

Examples:
  go run ./cmd/newsalpha api
  go run ./cmd/newsalpha ingest all --from 2024-01-01 --to 2024-01-31
  go run ./cmd/newsalpha analyze regression
  go run ./cmd/newsalpha test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&secretsFile, "config", "", "secrets file (default is .secrets/keys.toml)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if secretsFile != "" {
		cfg.SecretsFile = secretsFile
	}
	if env != "" {
		switch env {
		case "development", "staging", "production":
			cfg.Env = env
		default:
			return nil, fmt.Errorf("--env must be one of: development, staging, production")
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
