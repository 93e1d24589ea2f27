// Package main provides the brand_agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/brand-analyzer/internal/config"
	"github.com/jonathan/brand-analyzer/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "brand_agent",
	Short: "Brand analysis from a company website and public search results",
	Long: "brand_agent crawls a company's homepage and well-known pages, gathers public search results, " +
		"and asks a language model for a structured brand and marketing analysis (profile, SWOT, pain points, strategies, KPIs).",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: search ./config.yaml, /etc/brand-analyzer, ~/.brand-analyzer)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
}

// loadEnvironment loads configuration and builds the logger every command uses.
func loadEnvironment() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logging.WithLevel(cfg.Logging.Development, level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
