package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/library"
)

func newScanCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Index the library directory",
		Long:  "Walk the library root, record every photo and video, and forget files that are gone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			scanner := library.NewScanner(a.store, a.logger.With("component", "scanner"))
			result, err := scanner.Scan(cmd.Context(), a.cfg.Library.Root)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			_ = a.bus.Publish(cmd.Context(), &events.LibraryScanned{
				BaseEvent: events.NewBaseEvent(events.EventLibraryScanned, events.EntityLibrary, result.Root),
				Root:      result.Root,
				Scanned:   result.Scanned,
				Skipped:   result.Skipped,
				Pruned:    result.Pruned,
			})

			total, err := a.store.Count(library.Filter{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Scanned %s\n", result.Root)
			_, _ = fmt.Fprintf(out, "  %d indexed, %d skipped, %d removed\n", result.Scanned, result.Skipped, result.Pruned)
			_, _ = fmt.Fprintf(out, "  %d items in library\n", total)
			return nil
		},
	}
}
