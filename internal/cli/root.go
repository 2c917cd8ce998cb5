// Package cli implements lexisctl, the offline companion of the server:
// it normalizes terms, runs single scheduling steps, merges snapshot files
// and mints API tokens without touching a database.
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "text" | "json" | "yaml"

	// Now is the clock used by commands that stamp results.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the lexisctl CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Now: func() time.Time { return time.Now().UTC() }}

	cmd := &cobra.Command{
		Use:   "lexisctl",
		Short: "Offline tools for Lexis vocabulary data",
		Long: `lexisctl works on Lexis data without a server: normalize terms the way
the server keys them, preview a scheduling step, merge two exported
snapshots and mint bearer tokens for the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}
