// Package domain defines the business logic for the wake session service.
package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	// DefaultPageSize is used when a history request does not specify a limit.
	DefaultPageSize = 20
	// MaxPageSize bounds a single history page.
	MaxPageSize = 100
)

// EventPublisher receives sessions after they have been persisted.
type EventPublisher interface {
	PublishSessionRecorded(ctx context.Context, record SessionRecord) error
}

type noopPublisher struct{}

func (noopPublisher) PublishSessionRecorded(context.Context, SessionRecord) error { return nil }

// Cursor models the pagination token for session history.
type Cursor struct {
	UserID string
	Date   string
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithPublisher sets the publisher notified after each successful write.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithClock overrides the time source used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone whose calendar date counts as "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger overrides the logger used to report publish failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service orchestrates wake session workflows.
type Service struct {
	repo      SessionRepository
	publisher EventPublisher
	now       func() time.Time
	location  *time.Location
	logger    *log.Logger
}

// NewService constructs a Service.
func NewService(repo SessionRepository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: noopPublisher{},
		now:       time.Now,
		location:  time.Local,
		logger:    log.New(log.Writer(), "[domain] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSession upserts the session under (userId, date). A single write is
// attempted; storage errors are returned to the caller unchanged in kind.
func (s *Service) RecordSession(ctx context.Context, session WakeSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	record := session.Record()
	if err := s.repo.Put(ctx, record); err != nil {
		return fmt.Errorf("record session: %w", err)
	}

	if err := s.publisher.PublishSessionRecorded(ctx, record); err != nil {
		s.logger.Printf("publish session recorded (user=%s, date=%s): %v", record.UserID, record.Date, err)
	}
	return nil
}

// GetStreak derives the user's current streak from the most recent records.
func (s *Service) GetStreak(ctx context.Context, userID string) (StreakResult, error) {
	records, err := s.repo.ListRecent(ctx, userID, "", LookbackWindow)
	if err != nil {
		return StreakResult{}, fmt.Errorf("calculate streak: %w", err)
	}
	return CalculateStreak(userID, records, s.Today()), nil
}

// GetSession fetches one record by its composite key.
func (s *Service) GetSession(ctx context.Context, userID, date string) (*SessionRecord, error) {
	record, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if record == nil {
		return nil, ErrSessionNotFound
	}
	return record, nil
}

// ListSessions pages through a user's history, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string, cursor *Cursor, limit int) ([]SessionRecord, *Cursor, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, nil, fmt.Errorf("%w: userId is required", ErrInvalidSession)
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	before := ""
	if cursor != nil {
		if cursor.UserID != userID {
			return nil, nil, ErrInvalidCursor
		}
		before = cursor.Date
	}

	records, err := s.repo.ListRecent(ctx, userID, before, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list sessions: %w", err)
	}

	var next *Cursor
	if len(records) == limit {
		next = &Cursor{UserID: userID, Date: records[len(records)-1].Date}
	}
	return records, next, nil
}

// Today returns the current time as seen in the configured location.
func (s *Service) Today() time.Time {
	return s.now().In(s.location)
}
