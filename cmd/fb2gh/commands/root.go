// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

// Package commands implements the fb2gh command line.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/similigh/fb2gh/internal/core/config"
	"github.com/similigh/fb2gh/internal/integrations/github"
	"github.com/similigh/fb2gh/internal/logger"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded once per invocation by the root pre-run hook.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fb2gh",
	Short: "Migrate FogBugz cases to GitHub issues",
	Long: `fb2gh migrates FogBugz cases into GitHub issues.

Each case becomes one issue: the opening event is the issue body, later
events become comments in order. Categories become labels, milestones are
reused or created, closed cases are closed and open ones assigned.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		if err := logger.Init(level, cfg.Log.Encoding); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	defer logger.Sync() //nolint:errcheck
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .github/fb2gh.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output, disables the interactive view")
}

// loadConfig loads the config file, resolving 'extends' through the GitHub
// contents API. Without a file it falls back to defaults and environment.
func loadConfig(ctx context.Context) (*config.Config, error) {
	path := config.FindConfigPath(cfgFile)
	if path == "" {
		if cfgFile != "" {
			return nil, fmt.Errorf("config file not found: %s", cfgFile)
		}
		return config.Default(), nil
	}

	// Prepare fetcher for inheritance
	fetcher := func(ref string) ([]byte, error) {
		org, repo, branch, filePath, err := config.ParseExtendsRef(ref)
		if err != nil {
			return nil, err
		}
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN required to fetch remote config %s", ref)
		}
		gh, err := github.NewClient(ctx, token, github.WithBaseURL(os.Getenv("GITHUB_API_URL")))
		if err != nil {
			return nil, err
		}
		return gh.GetFileContent(ctx, org, repo, filePath, branch)
	}

	loaded, err := config.LoadWithInheritance(path, fetcher)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return loaded, nil
}

// log returns the process logger.
func log() *zap.Logger {
	return logger.GetLogger()
}
