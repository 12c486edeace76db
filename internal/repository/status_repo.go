package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"temp_monitor/internal/models"
)

type StatusSQLite struct {
	db *sql.DB
}

func NewStatusSQLite(db *sql.DB) *StatusSQLite {
	return &StatusSQLite{db: db}
}

const (
	uploadStatusRowID = 1

	upsertStatusSQL = `
		INSERT INTO upload_status (id, status, attempts, message, insecure, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			attempts=excluded.attempts,
			message=excluded.message,
			insecure=excluded.insecure,
			attempted_at=excluded.attempted_at
	`

	selectStatusSQL = `
		SELECT id, status, attempts, message, insecure, attempted_at
		FROM upload_status WHERE id=?
	`
)

// Save replaces the single upload_status row.
func (r *StatusSQLite) Save(ctx context.Context, s models.UploadStatus) error {
	at := s.AttemptedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, upsertStatusSQL,
		uploadStatusRowID,
		s.Status,
		s.Attempts,
		s.Message,
		s.Insecure,
		formatTime(at),
	)
	return err
}

// Load returns the stored row, or a zero value if no upload has happened yet.
func (r *StatusSQLite) Load(ctx context.Context) (models.UploadStatus, error) {
	row := r.db.QueryRowContext(ctx, selectStatusSQL, uploadStatusRowID)

	var s models.UploadStatus
	if err := row.Scan(
		&s.ID,
		&s.Status,
		&s.Attempts,
		&s.Message,
		&s.Insecure,
		&s.AttemptedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UploadStatus{}, nil
		}
		return models.UploadStatus{}, err
	}
	s.AttemptedAt = s.AttemptedAt.UTC()
	return s, nil
}
