package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DateLayout is the calendar date format used as the sort key of a user's sessions.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidSession is returned when a wake session is missing its key fields.
	ErrInvalidSession = errors.New("invalid wake session")
	// ErrSessionNotFound is returned when no session exists for a (user, date) pair.
	ErrSessionNotFound = errors.New("wake session not found")
	// ErrInvalidCursor is returned when a history cursor does not match the requested user.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// WakeSession is the payload captured by the mobile client after an alarm is dismissed.
type WakeSession struct {
	UserID          string
	Date            string
	PushupCount     int
	BrushingSeconds int
	WakeCompleted   bool
	MotivationTrack string
	Timestamp       int64
}

// Validate checks the fields the store relies on. The date format is not enforced.
func (s WakeSession) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidSession)
	}
	if strings.TrimSpace(s.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidSession)
	}
	if s.PushupCount < 0 {
		return fmt.Errorf("%w: pushupCount must be >= 0", ErrInvalidSession)
	}
	if s.BrushingSeconds < 0 {
		return fmt.Errorf("%w: brushingSeconds must be >= 0", ErrInvalidSession)
	}
	return nil
}

// Record converts the session into its persisted form.
func (s WakeSession) Record() SessionRecord {
	return SessionRecord{
		UserID:          s.UserID,
		Date:            s.Date,
		PushupCount:     s.PushupCount,
		BrushingSeconds: s.BrushingSeconds,
		WakeCompleted:   FlagFromBool(s.WakeCompleted),
		MotivationTrack: s.MotivationTrack,
		Timestamp:       s.Timestamp,
	}
}

// CompletionFlag is the integer form of the completion boolean kept in the store.
type CompletionFlag int

const (
	NotCompleted CompletionFlag = 0
	Completed    CompletionFlag = 1
)

// FlagFromBool maps true to 1 and false to 0.
func FlagFromBool(completed bool) CompletionFlag {
	if completed {
		return Completed
	}
	return NotCompleted
}

// IsCompleted reports whether the flag is truthy.
func (f CompletionFlag) IsCompleted() bool {
	return f != NotCompleted
}

// SessionRecord is a wake session as stored, keyed by (UserID, Date).
// An empty MotivationTrack means the attribute is absent from the stored item.
type SessionRecord struct {
	UserID          string
	Date            string
	PushupCount     int
	BrushingSeconds int
	WakeCompleted   CompletionFlag
	MotivationTrack string
	Timestamp       int64
}

// SessionRepository captures the sorted key-value operations the service needs.
type SessionRepository interface {
	// Put upserts the record under (UserID, Date).
	Put(ctx context.Context, record SessionRecord) error
	// Get returns nil, nil when the record does not exist.
	Get(ctx context.Context, userID, date string) (*SessionRecord, error)
	// ListRecent returns up to limit records ordered by date descending.
	// A non-empty before restricts results to dates strictly earlier than it.
	ListRecent(ctx context.Context, userID, before string, limit int) ([]SessionRecord, error)
	Delete(ctx context.Context, userID, date string) error
}

// TableReport describes the layout of the backing table as seen by the store.
type TableReport struct {
	Name         string
	Status       string
	PartitionKey string
	SortKey      string
	Problems     []string
}

// Healthy reports whether the table layout matched expectations.
func (r TableReport) Healthy() bool {
	return len(r.Problems) == 0
}

// TableVerifier is implemented by stores that can inspect their backing table.
type TableVerifier interface {
	VerifyTable(ctx context.Context) (TableReport, error)
}
