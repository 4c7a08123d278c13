// Package postgres stores wake sessions in a relational table keyed by
// (user_id, session_date).
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/riserite/internal/domain"
)

// TableName is the relation holding wake sessions.
const TableName = "wake_sessions"

// Schema creates the wake_sessions table when it does not exist.
const Schema = `CREATE TABLE IF NOT EXISTS wake_sessions (
    user_id          TEXT    NOT NULL,
    session_date     TEXT    NOT NULL,
    pushup_count     INTEGER NOT NULL DEFAULT 0,
    brushing_seconds INTEGER NOT NULL DEFAULT 0,
    wake_completed   SMALLINT NOT NULL DEFAULT 0,
    motivation_track TEXT,
    recorded_at      BIGINT  NOT NULL DEFAULT 0,
    PRIMARY KEY (user_id, session_date)
)`

const selectColumns = `user_id, session_date, pushup_count, brushing_seconds, wake_completed, motivation_track, recorded_at`

// Repository provides Postgres-backed persistence for wake sessions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate applies Schema.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate wake_sessions: %w", err)
	}
	return nil
}

// Put upserts the full row. A NULL motivation_track mirrors an absent attribute.
func (r *Repository) Put(ctx context.Context, record domain.SessionRecord) error {
	const stmt = `INSERT INTO wake_sessions (user_id, session_date, pushup_count, brushing_seconds, wake_completed, motivation_track, recorded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id, session_date) DO UPDATE SET
            pushup_count = EXCLUDED.pushup_count,
            brushing_seconds = EXCLUDED.brushing_seconds,
            wake_completed = EXCLUDED.wake_completed,
            motivation_track = EXCLUDED.motivation_track,
            recorded_at = EXCLUDED.recorded_at`

	_, err := r.pool.Exec(ctx, stmt,
		record.UserID,
		record.Date,
		record.PushupCount,
		record.BrushingSeconds,
		int(record.WakeCompleted),
		nullIfEmpty(record.MotivationTrack),
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert wake session: %w", err)
	}
	return nil
}

// Get retrieves a session by key.
func (r *Repository) Get(ctx context.Context, userID, date string) (*domain.SessionRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM wake_sessions WHERE user_id=$1 AND session_date=$2`

	record, err := scanRecord(r.pool.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wake session: %w", err)
	}
	return &record, nil
}

// ListRecent returns the user's sessions ordered by date descending.
func (r *Repository) ListRecent(ctx context.Context, userID, before string, limit int) ([]domain.SessionRecord, error) {
	args := []interface{}{userID, limit}
	query := `SELECT ` + selectColumns + ` FROM wake_sessions WHERE user_id=$1`
	if before != "" {
		query += ` AND session_date < $3`
		args = append(args, before)
	}
	query += ` ORDER BY session_date DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wake sessions: %w", err)
	}
	defer rows.Close()

	results := make([]domain.SessionRecord, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wake session: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list wake sessions: %w", err)
	}
	return results, nil
}

// Delete removes a session by key.
func (r *Repository) Delete(ctx context.Context, userID, date string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM wake_sessions WHERE user_id=$1 AND session_date=$2`, userID, date); err != nil {
		return fmt.Errorf("delete wake session: %w", err)
	}
	return nil
}

// VerifyTable checks that the table exists and its primary key is (user_id, session_date).
func (r *Repository) VerifyTable(ctx context.Context) (domain.TableReport, error) {
	report := domain.TableReport{Name: TableName}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, TableName).Scan(&exists); err != nil {
		return report, fmt.Errorf("inspect table: %w", err)
	}
	if !exists {
		report.Problems = append(report.Problems, "table does not exist")
		return report, nil
	}
	report.Status = "ACTIVE"

	const keyQuery = `SELECT a.attname
        FROM pg_index i
        JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
        WHERE i.indrelid = $1::regclass AND i.indisprimary
        ORDER BY array_position(i.indkey, a.attnum)`

	rows, err := r.pool.Query(ctx, keyQuery, TableName)
	if err != nil {
		return report, fmt.Errorf("inspect primary key: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return report, fmt.Errorf("inspect primary key: %w", err)
		}
		keys = append(keys, name)
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("inspect primary key: %w", err)
	}

	if len(keys) > 0 {
		report.PartitionKey = keys[0]
	}
	if len(keys) > 1 {
		report.SortKey = keys[1]
	}
	if len(keys) != 2 || keys[0] != "user_id" || keys[1] != "session_date" {
		report.Problems = append(report.Problems, fmt.Sprintf("primary key is %v, want [user_id session_date]", keys))
	}
	return report, nil
}

func scanRecord(row pgx.Row) (domain.SessionRecord, error) {
	var (
		record    domain.SessionRecord
		completed int
		track     *string
	)
	if err := row.Scan(&record.UserID, &record.Date, &record.PushupCount, &record.BrushingSeconds, &completed, &track, &record.Timestamp); err != nil {
		return domain.SessionRecord{}, err
	}
	record.WakeCompleted = domain.CompletionFlag(completed)
	if track != nil {
		record.MotivationTrack = *track
	}
	return record, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
