package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/culler/internal/events"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var (
		limit     int
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent review activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var evts []events.RawEvent
			if sessionID != "" {
				evts, err = a.events.ForEntity(events.EntitySession, sessionID)
			} else {
				evts, err = a.events.Recent(limit)
			}
			if err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(evts) == 0 {
				_, _ = fmt.Fprintln(out, "No events")
				return nil
			}

			_, _ = fmt.Fprintf(out, "Recent Events (%d):\n\n", len(evts))
			_, _ = fmt.Fprintf(out, "  %-12s %-20s %-45s %s\n", "TIME", "TYPE", "ENTITY", "DETAIL")
			_, _ = fmt.Fprintln(out, "  "+strings.Repeat("-", 100))
			for _, e := range evts {
				entity := fmt.Sprintf("%s/%s", e.EntityType, e.EntityID)
				_, _ = fmt.Fprintf(out, "  %-12s %-20s %-45s %s\n", formatTimeAgo(e.OccurredAt), e.EventType, entity, e.Payload)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to show")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only show events of one review")
	return cmd
}
