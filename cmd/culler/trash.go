package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/culler/internal/handlers"
)

func newTrashCmd(flags *rootFlags) *cobra.Command {
	var (
		empty bool
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "trash",
		Short: "List or empty deleted files kept in the trash",
		Long: `List or empty deleted files kept in the trash.

Deleted files are moved to <root>/.culler-trash unless library.purge is set.
--empty removes batches older than library.trash_retention; add --all to
remove everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			if empty {
				retention := a.cfg.Library.TrashRetentionDuration()
				h := handlers.NewTrashHandler(a.bus, a.lib, handlers.TrashConfig{Retention: retention}, a.logger.With("handler", "trash"))
				cutoff := time.Now().Add(-retention)
				if all {
					cutoff = time.Now()
				} else if retention <= 0 {
					_, _ = fmt.Fprintln(out, "Retention is disabled; use --all to empty the trash")
					return nil
				}
				removed, err := h.EmptyBefore(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				files := 0
				var size int64
				for _, b := range removed {
					files += b.Files
					size += b.Bytes
				}
				_, _ = fmt.Fprintf(out, "Removed %d file(s) in %d batch(es), %s freed\n", files, len(removed), formatSize(size))
				return nil
			}

			batches, err := a.lib.TrashBatches()
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				_, _ = fmt.Fprintln(out, "Trash is empty")
				return nil
			}
			_, _ = fmt.Fprintf(out, "  %-12s %-6s %-10s %s\n", "DELETED", "FILES", "SIZE", "DIR")
			_, _ = fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
			for _, b := range batches {
				_, _ = fmt.Fprintf(out, "  %-12s %-6d %-10s %s\n", formatTimeAgo(b.DeletedAt), b.Files, formatSize(b.Bytes), b.Dir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "Remove expired batches for good")
	cmd.Flags().BoolVar(&all, "all", false, "With --empty, remove every batch")
	return cmd
}
