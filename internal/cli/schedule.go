package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/srs"
	"github.com/spf13/cobra"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	Grade    int
	Ease     float64
	Interval int
	Reps     int
	Lapses   int
	At       string
}

// ScheduleResult is one scheduling step.
type ScheduleResult struct {
	Grade  int                    `json:"grade"`
	Before domain.SchedulingState `json:"before"`
	After  domain.SchedulingState `json:"after"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{}

	cmd := &cobra.Command{
		Use:   "schedule --grade N",
		Short: "Preview the state an item reaches after one review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Grade, "grade", -1, "review grade 0-5 (required)")
	cmd.Flags().Float64Var(&opts.Ease, "ease", domain.DefaultEaseFactor, "current ease factor")
	cmd.Flags().IntVar(&opts.Interval, "interval", 0, "current interval in days")
	cmd.Flags().IntVar(&opts.Reps, "reps", 0, "current number of consecutive successful reviews")
	cmd.Flags().IntVar(&opts.Lapses, "lapses", 0, "current number of lapses")
	cmd.Flags().StringVar(&opts.At, "at", "", "review time in RFC 3339 (default now)")
	_ = cmd.MarkFlagRequired("grade")

	return cmd
}

func runSchedule(rootOpts *RootOptions, opts *ScheduleOptions, cmd *cobra.Command) error {
	now := rootOpts.Now()
	if opts.At != "" {
		at, err := time.Parse(time.RFC3339, opts.At)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --at", err)
		}
		now = at
	}

	before := domain.SchedulingState{
		EaseFactor:   opts.Ease,
		IntervalDays: opts.Interval,
		Repetitions:  opts.Reps,
		Lapses:       opts.Lapses,
		DueAt:        now,
	}
	if opts.Reps > 0 {
		last := now.AddDate(0, 0, -opts.Interval)
		before.LastReviewedAt = &last
	}

	after, err := srs.NewDefaultService().Schedule(before, domain.Grade(opts.Grade), now)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot schedule", err)
	}

	result := ScheduleResult{Grade: opts.Grade, Before: before, After: after}
	f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return f.Print(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"grade %d: ease %.2f -> %.2f, interval %d -> %d days, reps %d -> %d, lapses %d -> %d, due %s\n",
			opts.Grade,
			before.EaseFactor, after.EaseFactor,
			before.IntervalDays, after.IntervalDays,
			before.Repetitions, after.Repetitions,
			before.Lapses, after.Lapses,
			after.DueAt.Format(time.RFC3339))
		return err
	})
}
