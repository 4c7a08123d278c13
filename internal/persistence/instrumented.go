package persistence

import (
	"context"
	"time"

	"example.com/riserite/internal/domain"
	"example.com/riserite/internal/observability"
)

// InstrumentedRepository records latency and errors for every store call.
type InstrumentedRepository struct {
	backend string
	next    domain.SessionRepository
}

// Instrument wraps repo so its calls are reported under the backend label.
func Instrument(backend string, repo domain.SessionRepository) *InstrumentedRepository {
	return &InstrumentedRepository{backend: backend, next: repo}
}

// Backend returns the backend label.
func (r *InstrumentedRepository) Backend() string {
	return r.backend
}

func (r *InstrumentedRepository) Put(ctx context.Context, record domain.SessionRecord) (err error) {
	defer func(start time.Time) { observability.ObserveStoreOp(r.backend, "put", start, err) }(time.Now())
	if err = r.next.Put(ctx, record); err != nil {
		return err
	}
	observability.RecordSessionPersisted(record.WakeCompleted.IsCompleted(), time.Now())
	return nil
}

func (r *InstrumentedRepository) Get(ctx context.Context, userID, date string) (_ *domain.SessionRecord, err error) {
	defer func(start time.Time) { observability.ObserveStoreOp(r.backend, "get", start, err) }(time.Now())
	return r.next.Get(ctx, userID, date)
}

func (r *InstrumentedRepository) ListRecent(ctx context.Context, userID, before string, limit int) (_ []domain.SessionRecord, err error) {
	defer func(start time.Time) { observability.ObserveStoreOp(r.backend, "list_recent", start, err) }(time.Now())
	return r.next.ListRecent(ctx, userID, before, limit)
}

func (r *InstrumentedRepository) Delete(ctx context.Context, userID, date string) (err error) {
	defer func(start time.Time) { observability.ObserveStoreOp(r.backend, "delete", start, err) }(time.Now())
	return r.next.Delete(ctx, userID, date)
}

// VerifyTable forwards to the wrapped store when it can inspect its table.
func (r *InstrumentedRepository) VerifyTable(ctx context.Context) (domain.TableReport, error) {
	verifier, ok := r.next.(domain.TableVerifier)
	if !ok {
		return domain.TableReport{Problems: []string{r.backend + " store cannot verify its table"}}, nil
	}
	return verifier.VerifyTable(ctx)
}
