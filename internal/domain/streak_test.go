package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var streakNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

func completedOn(date string) SessionRecord {
	return SessionRecord{UserID: "user-1", Date: date, WakeCompleted: Completed}
}

func TestCalculateStreak(t *testing.T) {
	cases := []struct {
		name     string
		records  []SessionRecord
		wantDays int
		wantLast string
	}{
		{
			name:     "no records",
			records:  nil,
			wantDays: 0,
		},
		{
			name:     "only today completed",
			records:  []SessionRecord{completedOn("2026-10-18")},
			wantDays: 1,
			wantLast: "2026-10-18",
		},
		{
			name:     "only today not completed",
			records:  []SessionRecord{{UserID: "user-1", Date: "2026-10-18", WakeCompleted: NotCompleted}},
			wantDays: 0,
		},
		{
			name:     "today and yesterday",
			records:  []SessionRecord{completedOn("2026-10-18"), completedOn("2026-10-17")},
			wantDays: 2,
			wantLast: "2026-10-17",
		},
		{
			name:     "today then a three day gap",
			records:  []SessionRecord{completedOn("2026-10-18"), completedOn("2026-10-15")},
			wantDays: 1,
			wantLast: "2026-10-18",
		},
		{
			name:     "only yesterday",
			records:  []SessionRecord{completedOn("2026-10-17")},
			wantDays: 1,
			wantLast: "2026-10-17",
		},
		{
			name:     "most recent completion two days ago",
			records:  []SessionRecord{completedOn("2026-10-16"), completedOn("2026-10-15")},
			wantDays: 0,
		},
		{
			name:     "future record is counted and the scan continues",
			records:  []SessionRecord{completedOn("2026-10-19"), completedOn("2026-10-18")},
			wantDays: 2,
			wantLast: "2026-10-18",
		},
		{
			name:     "far future record becomes the reference",
			records:  []SessionRecord{completedOn("2026-10-25"), completedOn("2026-10-18")},
			wantDays: 1,
			wantLast: "2026-10-25",
		},
		{
			name: "halts after the first one day step",
			records: []SessionRecord{
				completedOn("2026-10-18"),
				completedOn("2026-10-17"),
				completedOn("2026-10-16"),
				completedOn("2026-10-15"),
			},
			wantDays: 2,
			wantLast: "2026-10-17",
		},
		{
			name: "malformed and incomplete records are skipped",
			records: []SessionRecord{
				completedOn("2026-13-45"),
				completedOn(""),
				completedOn("18/10/2026"),
				{UserID: "user-1", Date: "2026-10-18"},
				completedOn("2026-10-17"),
			},
			wantDays: 1,
			wantLast: "2026-10-17",
		},
		{
			name: "skipped records do not break a same day run",
			records: []SessionRecord{
				completedOn("2026-10-18"),
				{UserID: "user-1", Date: "2026-10-17", WakeCompleted: NotCompleted},
				completedOn("garbage"),
				completedOn("2026-10-17"),
			},
			wantDays: 2,
			wantLast: "2026-10-17",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateStreak("user-1", tc.records, streakNow)
			require.Equal(t, "user-1", got.UserID)
			require.Equal(t, tc.wantDays, got.Streak)
			if tc.wantLast == "" {
				require.Nil(t, got.LastSessionDate)
				return
			}
			require.NotNil(t, got.LastSessionDate)
			require.Equal(t, tc.wantLast, *got.LastSessionDate)
		})
	}
}

func TestCalculateStreakUsesCalendarDateOfClockZone(t *testing.T) {
	pacific := time.FixedZone("PDT", -7*60*60)
	// 02:00 UTC on the 18th is still the evening of the 17th in PDT.
	now := time.Date(2026, time.October, 18, 2, 0, 0, 0, time.UTC).In(pacific)

	got := CalculateStreak("user-1", []SessionRecord{completedOn("2026-10-17")}, now)
	require.Equal(t, 1, got.Streak)
	require.Equal(t, "2026-10-17", *got.LastSessionDate)

	got = CalculateStreak("user-1", []SessionRecord{completedOn("2026-10-16"), completedOn("2026-10-15")}, now)
	require.Equal(t, 1, got.Streak)
	require.Equal(t, "2026-10-16", *got.LastSessionDate)
}

func TestCompletionFlag(t *testing.T) {
	require.Equal(t, Completed, FlagFromBool(true))
	require.Equal(t, NotCompleted, FlagFromBool(false))
	require.True(t, CompletionFlag(7).IsCompleted())
	require.False(t, CompletionFlag(0).IsCompleted())
}
