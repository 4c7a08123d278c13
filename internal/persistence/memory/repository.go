// Package memory keeps wake sessions in process memory for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"example.com/riserite/internal/domain"
)

type key struct {
	userID string
	date   string
}

// Repository is a map-backed domain.SessionRepository.
type Repository struct {
	mu      sync.RWMutex
	records map[key]domain.SessionRecord
}

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{records: make(map[key]domain.SessionRecord)}
}

// Put implements domain.SessionRepository.
func (r *Repository) Put(_ context.Context, record domain.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key{record.UserID, record.Date}] = record
	return nil
}

// Get implements domain.SessionRepository.
func (r *Repository) Get(_ context.Context, userID, date string) (*domain.SessionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[key{userID, date}]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// ListRecent implements domain.SessionRepository.
func (r *Repository) ListRecent(_ context.Context, userID, before string, limit int) ([]domain.SessionRecord, error) {
	r.mu.RLock()
	out := make([]domain.SessionRecord, 0)
	for k, record := range r.records {
		if k.userID != userID {
			continue
		}
		if before != "" && k.date >= before {
			continue
		}
		out = append(out, record)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete implements domain.SessionRepository.
func (r *Repository) Delete(_ context.Context, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key{userID, date})
	return nil
}

// VerifyTable reports the in-memory layout, which is always healthy.
func (r *Repository) VerifyTable(context.Context) (domain.TableReport, error) {
	return domain.TableReport{
		Name:         "memory",
		Status:       "ACTIVE",
		PartitionKey: "userId",
		SortKey:      "date",
	}, nil
}
