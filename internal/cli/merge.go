package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/syncmerge"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	Out string
}

// MergeResult is what the merge command reports.
type MergeResult struct {
	Report  domain.MergeReport `json:"report"`
	Vocabs  int                `json:"vocabs"`
	Logs    int                `json:"review_logs"`
	Written string             `json:"written,omitempty"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge <local.json> <incoming.json>",
		Short: "Merge two exported snapshots",
		Long: `Merge an incoming snapshot into a local one with the same rules the
server applies on import, and report what would change. With --out the
merged snapshot is written to a file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the merged snapshot to this file")

	return cmd
}

func runMerge(rootOpts *RootOptions, opts *MergeOptions, localPath, incomingPath string, cmd *cobra.Command) error {
	var local, incoming *domain.SyncSnapshot
	var g errgroup.Group
	g.Go(func() (err error) {
		local, err = readSnapshot(localPath)
		return err
	})
	g.Go(func() (err error) {
		incoming, err = readSnapshot(incomingPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	merged, report, err := syncmerge.Merge(local, incoming, rootOpts.Now(), uuid.New)
	if err != nil {
		if errors.Is(err, domain.ErrIncompatibleSchema) || errors.Is(err, domain.ErrMergeInvariantViolation) {
			return WrapExitError(ExitFailure, "snapshots cannot be merged", err)
		}
		return WrapExitError(ExitCommandError, "merge failed", err)
	}

	result := MergeResult{Report: report, Vocabs: len(merged.Vocabs), Logs: len(merged.ReviewLogs)}
	if opts.Out != "" {
		if err := writeSnapshot(opts.Out, merged); err != nil {
			return err
		}
		result.Written = opts.Out
	}

	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return f.Print(result, func(w io.Writer) error {
		return printMergeText(w, result)
	})
}

func printMergeText(w io.Writer, r MergeResult) error {
	lines := []string{
		fmt.Sprintf("added vocabs:   %d", r.Report.AddedVocabs),
		fmt.Sprintf("updated vocabs: %d", r.Report.UpdatedVocabs),
		fmt.Sprintf("added logs:     %d", r.Report.AddedLogs),
		fmt.Sprintf("skipped:        %d vocabs, %d logs", r.Report.SkippedVocabs, r.Report.SkippedLogs),
		fmt.Sprintf("conflicts:      %d", len(r.Report.Conflicts)),
	}
	for _, c := range r.Report.Conflicts {
		lines = append(lines, fmt.Sprintf("  %s: kept %s (updated %s)",
			c.TermNormalized, c.Winner, c.LocalUpdatedAt.Format("2006-01-02T15:04:05Z07:00")))
	}
	lines = append(lines, fmt.Sprintf("result:         %d vocabs, %d logs", r.Vocabs, r.Logs))
	if r.Written != "" {
		lines = append(lines, "written to "+r.Written)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func readSnapshot(path string) (*domain.SyncSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "cannot read snapshot", err)
	}
	var snap domain.SyncSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("%s is not a snapshot", path), err)
	}
	return &snap, nil
}

func writeSnapshot(path string, snap *domain.SyncSnapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot encode merged snapshot", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "cannot write merged snapshot", err)
	}
	return nil
}
