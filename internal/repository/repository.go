package repository

import (
	"context"
	"database/sql"
	"time"

	"temp_monitor/internal/models"
)

type StatusRepo interface {
	Save(ctx context.Context, s models.UploadStatus) error
	Load(ctx context.Context) (models.UploadStatus, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
}

type Repository struct {
	StatusRepo StatusRepo
	EventRepo  EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		EventRepo:  NewEventSQLite(db),
	}
}

// sqliteTime is fixed-width so that stored values sort and compare as text.
const sqliteTime = "2006-01-02 15:04:05.000"

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTime) }
