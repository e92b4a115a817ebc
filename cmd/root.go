/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ptyxes/recipebook/config"
	"github.com/ptyxes/recipebook/internal/engine"
	"github.com/ptyxes/recipebook/internal/logging"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "recipebook",
	Short: "Administer the recipe book store",
	Long: `Administers the recipe book data store: creates or resets the schema,
seeds users and browses the post feed.

	recipebook migrate up
	recipebook posts search --query pancake --sort Reputation`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults to environment variables)")
}

// loadConfig resolves the configuration for the current invocation.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)
	return cfg, logger, nil
}

// openEngine loads the configuration and opens the engine on it.
func openEngine(cmd *cobra.Command) (*engine.Engine, config.Config, *slog.Logger, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	eng, err := engine.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("open store: %w", err)
	}
	return eng, cfg, logging.CLI(logger), nil
}
