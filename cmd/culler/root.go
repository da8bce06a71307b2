package main

import (
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "culler",
		Short: "Triage a photo and video library",
		Long: `culler - triage a photo and video library

Scan a directory of photos and videos, pick a filter that narrows the
library to likely clutter, then review a batch one item at a time and
delete what you marked in a single step.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: discovered)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(
		newInitCmd(),
		newScanCmd(flags),
		newModesCmd(),
		newClassifyCmd(flags),
		newReviewCmd(flags),
		newHistoryCmd(flags),
		newTrashCmd(flags),
	)
	return cmd
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
