package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/culler/internal/classify"
)

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the available filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "  %-14s %-18s %s\n", "MODE", "LABEL", "DESCRIPTION")
			_, _ = fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
			for _, m := range classify.Modes {
				_, _ = fmt.Fprintf(out, "  %-14s %-18s %s\n", m, m.Label(), m.Description())
			}
			return nil
		},
	}
}
