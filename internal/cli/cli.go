// Package cli wires configuration, logging and the imitation pipeline into
// the fakeimg command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abaddouh/fakeimg/internal/config"
	"github.com/abaddouh/fakeimg/internal/imitator"
	"github.com/abaddouh/fakeimg/internal/logging"
	"github.com/abaddouh/fakeimg/internal/synth"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewCLI() *cobra.Command {
	a := &app{}

	var (
		configPath string
		envFile    string
		strategy   string
		remoteURL  string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:   "fakeimg SRC DEST",
		Short: "Fake images based on the source images' size",
		Long: `Write placeholder images with the same pixel size as the source images.

SRC can be an image file or a directory containing images.
DEST should be a directory.`,
		Args: cobra.ExactArgs(2),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if strategy != "" {
				cfg.Strategy = strategy
			}
			if remoteURL != "" {
				cfg.Remote.BaseURL = remoteURL
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			a.cfg, a.logger = cfg, logger
			return nil
		},
		RunE: a.imitateHandler,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file, ignored when missing")
	rootCmd.PersistentFlags().StringVarP(&strategy, "strategy", "s", "", "Synthesis strategy: local or remote")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote-url", "", "Base URL of the remote placeholder service")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newRenderCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

func (a *app) imitator() (*imitator.Imitator, error) {
	strategy, err := synth.New(a.cfg)
	if err != nil {
		return nil, err
	}
	return imitator.New(strategy, imitator.WithLogger(a.logger)), nil
}

func (a *app) imitateHandler(cmd *cobra.Command, args []string) error {
	im, err := a.imitator()
	if err != nil {
		return err
	}

	results, err := im.Run(cmd.Context(), args[0], args[1])
	for _, r := range results {
		fmt.Fprintln(cmd.OutOrStdout(), r.String())
	}
	return err
}
