package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/riserite/internal/domain"
)

func newRecordCommand(opts *rootOptions) *cobra.Command {
	var session domain.WakeSession

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a wake session",
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			if session.Timestamp == 0 {
				session.Timestamp = time.Now().Unix()
			}
			if err := components.Service.RecordSession(cmd.Context(), session); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded session for %s on %s\n", session.UserID, session.Date)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&session.UserID, "user", "", "user id")
	flags.StringVar(&session.Date, "date", time.Now().Format(domain.DateLayout), "session date (YYYY-MM-DD)")
	flags.IntVar(&session.PushupCount, "pushups", 0, "push-up count")
	flags.IntVar(&session.BrushingSeconds, "brushing", 0, "brushing duration in seconds")
	flags.BoolVar(&session.WakeCompleted, "completed", false, "mark the wake routine as completed")
	flags.StringVar(&session.MotivationTrack, "track", "", "motivation track reference")
	flags.Int64Var(&session.Timestamp, "timestamp", 0, "client capture time in epoch seconds (default now)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newStreakCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak <userId>",
		Short: "Compute a user's current streak",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			result, err := components.Service.GetStreak(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			last := "-"
			if result.LastSessionDate != nil {
				last = *result.LastSessionDate
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User: %s\nStreak: %d\nLast session: %s\n", result.UserID, result.Streak, last)
			return nil
		},
	}
}

func newHistoryCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <userId>",
		Short: "Print a user's most recent sessions as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer components.Close()

			records, _, err := components.Service.ListSessions(cmd.Context(), args[0], nil, limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range records {
				if err := enc.Encode(historyLine{
					Date:            r.Date,
					PushupCount:     r.PushupCount,
					BrushingSeconds: r.BrushingSeconds,
					WakeCompleted:   int(r.WakeCompleted),
					MotivationTrack: r.MotivationTrack,
					Timestamp:       r.Timestamp,
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "number of sessions to print")
	return cmd
}

type historyLine struct {
	Date            string `json:"date"`
	PushupCount     int    `json:"pushupCount"`
	BrushingSeconds int    `json:"brushingSeconds"`
	WakeCompleted   int    `json:"wakeCompleted"`
	MotivationTrack string `json:"motivationTrack,omitempty"`
	Timestamp       int64  `json:"timestamp"`
}
