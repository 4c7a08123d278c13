package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/riserite/internal/config"
	"example.com/riserite/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	token := EncodeCursor(&domain.Cursor{UserID: "auth0|user-1", Date: "2026-10-16"})
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, "auth0|user-1", cursor.UserID)
	require.Equal(t, "2026-10-16", cursor.Date)

	require.Empty(t, EncodeCursor(nil))
	cursor, err = DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, cursor)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	require.ErrorIs(t, err, domain.ErrInvalidCursor)

	_, err = DecodeCursor("bm9waXBl") // "nopipe"
	require.ErrorIs(t, err, domain.ErrInvalidCursor)
}

func TestOpenMemoryStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendMemory

	store, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer store.Close()
	require.Equal(t, config.BackendMemory, store.Backend())

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.SessionRecord{UserID: "user-1", Date: "2026-10-18"}))
	got, err := store.Get(ctx, "user-1", "2026-10-18")
	require.NoError(t, err)
	require.NotNil(t, got)

	report, err := store.VerifyTable(ctx)
	require.NoError(t, err)
	require.True(t, report.Healthy())
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = "cassandra"

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
}

type failingRepo struct{ err error }

func (f failingRepo) Put(context.Context, domain.SessionRecord) error { return f.err }
func (f failingRepo) Get(context.Context, string, string) (*domain.SessionRecord, error) {
	return nil, f.err
}
func (f failingRepo) ListRecent(context.Context, string, string, int) ([]domain.SessionRecord, error) {
	return nil, f.err
}
func (f failingRepo) Delete(context.Context, string, string) error { return f.err }

func TestInstrumentPassesErrorsThrough(t *testing.T) {
	cause := errors.New("store down")
	repo := Instrument("stub", failingRepo{err: cause})

	require.ErrorIs(t, repo.Put(context.Background(), domain.SessionRecord{}), cause)
	_, err := repo.ListRecent(context.Background(), "u", "", 1)
	require.ErrorIs(t, err, cause)

	report, err := repo.VerifyTable(context.Background())
	require.NoError(t, err)
	require.False(t, report.Healthy())
}
