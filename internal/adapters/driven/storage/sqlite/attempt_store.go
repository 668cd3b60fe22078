package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/kycup/internal/core/domain"
	"github.com/custodia-labs/kycup/internal/core/ports/driven"
)

// attemptStore implements driven.AttemptStore.
type attemptStore struct {
	store *Store
}

var _ driven.AttemptStore = (*attemptStore)(nil)

const attemptColumns = `id, document_type, number, progress, outcome, status_code, reason, bytes_total, started_at, finished_at`

// Save stores or updates an attempt.
func (s *attemptStore) Save(ctx context.Context, a domain.SubmissionAttempt) error {
	if a.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO attempts (`+attemptColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			progress = excluded.progress,
			outcome = excluded.outcome,
			status_code = excluded.status_code,
			reason = excluded.reason,
			finished_at = excluded.finished_at
	`, a.ID, string(a.DocumentType), a.Number, a.Progress, string(a.Outcome),
		a.StatusCode, nullString(a.Reason), a.BytesTotal,
		formatTime(a.StartedAt), formatNullableTime(a.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving attempt: %w", err)
	}
	return nil
}

// Get retrieves an attempt by ID.
func (s *attemptStore) Get(ctx context.Context, id string) (*domain.SubmissionAttempt, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+attemptColumns+` FROM attempts WHERE id = ?`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns attempts, most recent first.
func (s *attemptStore) List(ctx context.Context, limit int) ([]domain.SubmissionAttempt, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM attempts
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.SubmissionAttempt //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempts: %w", err)
	}
	return attempts, nil
}

// Prune keeps the most recent keep attempts.
func (s *attemptStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, domain.ErrInvalidInput
	}
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM attempts
		WHERE id NOT IN (
			SELECT id FROM attempts ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning attempts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning attempts: %w", err)
	}
	return int(n), nil
}

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row scanner) (*domain.SubmissionAttempt, error) {
	var a domain.SubmissionAttempt
	var docType, outcome, startedAt string
	var reason, finishedAt sql.NullString
	if err := row.Scan(&a.ID, &docType, &a.Number, &a.Progress, &outcome,
		&a.StatusCode, &reason, &a.BytesTotal, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning attempt: %w", err)
	}

	a.DocumentType = domain.DocumentType(docType)
	a.Outcome = domain.AttemptOutcome(outcome)
	a.Reason = reason.String
	a.StartedAt = parseNullableTime(sql.NullString{String: startedAt, Valid: true})
	a.FinishedAt = parseNullableTime(finishedAt)
	return &a, nil
}

// timeLayout keeps a fixed number of fractional digits so that stored
// timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime returns nil for the zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime returns the zero time for NULL or unparsable values.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
