// Package cmd implements the adcopy command line.
package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agentic_ad_copy/config"
	"agentic_ad_copy/generator"
)

type rootOptions struct {
	configPath string
	envFile    string
	verbose    bool
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "adcopy",
		Short:         "Agentic ad copy generator",
		Long:          "Generates ready-to-post ad copy for Facebook, Instagram, LinkedIn and Google Ads with an LLM agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(opts.verbose)
			config.LoadEnv(opts.envFile)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "path to config file (.json, .yaml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logs")

	root.AddCommand(newServeCmd(opts), newGenerateCmd(opts), newOptionsCmd())
	return root
}

func initLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig tolerates a missing file only at the default path.
func (o *rootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.configPath, o.configPath == config.DefaultPath)
}

func (o *rootOptions) buildLLM(ctx context.Context, cfg config.Config) (generator.LLMClient, error) {
	settings := cfg.LLMSettings()
	slog.Debug("cmd.buildLLM: configuring provider", "provider", settings.Provider, "model", settings.Model, "apiKeySet", settings.APIKey != "", "baseURL", settings.BaseURL)
	return generator.NewLLM(ctx, settings)
}
