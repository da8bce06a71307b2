package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/culler/internal/classify"
	"github.com/vmunix/culler/internal/library"
)

func newClassifyCmd(flags *rootFlags) *cobra.Command {
	var (
		modeName string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Show the candidates a filter selects",
		Long:  "Apply a filter to the indexed library and list the candidates without starting a review.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if modeName == "" {
				modeName = a.cfg.Review.Filter
			}
			mode, err := classify.ParseMode(modeName)
			if err != nil {
				return err
			}

			now := time.Now()
			assets, err := a.lib.FetchAssets(cmd.Context(), classify.Window(mode, now))
			if err != nil {
				return err
			}
			candidates := classify.Classify(assets, mode, now, nil)

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s: %d of %d items\n\n", mode.Label(), len(candidates), len(assets))
			if len(candidates) == 0 {
				return nil
			}
			_, _ = fmt.Fprintf(out, "  %-4s %-6s %-12s %-10s %-11s %s\n", "#", "KIND", "CREATED", "SIZE", "DIMENSIONS", "ID")
			_, _ = fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
			shown := candidates
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for i, c := range shown {
				_, _ = fmt.Fprintf(out, "  %-4d %-6s %-12s %-10s %-11s %s\n",
					i+1, c.Kind, formatTimeAgo(c.CreatedAt), formatSize(c.SizeBytes), formatDims(c), c.ID)
			}
			if len(shown) < len(candidates) {
				_, _ = fmt.Fprintf(out, "  ... and %d more\n", len(candidates)-len(shown))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "Filter to apply (default: review.filter)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of candidates to show (0 = all)")
	return cmd
}

func formatDims(a library.Asset) string {
	if a.IsVideo() {
		return a.DurationLabel()
	}
	if a.Width == 0 || a.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", a.Width, a.Height)
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	ago := time.Since(t)

	switch {
	case ago < time.Minute:
		return "just now"
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}
}
