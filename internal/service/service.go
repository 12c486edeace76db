package service

import (
	"context"
	"time"

	"temp_monitor/internal/device"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/store"
)

// Monitoring exposes the sample history and its resets.
type Monitoring interface {
	Snapshot(ctx context.Context) (models.SampleSnapshot, error)
	Status(ctx context.Context) (models.DeviceStatus, error)
	ResetMinMax(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Configuration exposes the device configuration and trust anchors.
type Configuration interface {
	Config(ctx context.Context) (models.DeviceConfig, error)
	ApplyForm(ctx context.Context, f device.FormValues) (bool, error)
	ApplyUpdate(ctx context.Context, u device.Update) (models.DeviceConfig, error)
	InstallRootCert(ctx context.Context, pem []byte) (bool, error)
	Files(ctx context.Context) ([]store.FileInfo, error)
}

// Cloud triggers uploads and reports their outcome.
type Cloud interface {
	UploadNow(ctx context.Context) (models.UploadStatus, error)
	UploadStatus(ctx context.Context) (models.UploadStatus, error)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.DeviceEvent, error)
}

// Runner is the control loop. Stop it by canceling ctx.
type Runner interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Monitoring
	Configuration
	Cloud
	EventLog
	Runner
}

var (
	_ Monitoring    = (*Monitor)(nil)
	_ Configuration = (*Monitor)(nil)
	_ Cloud         = (*Monitor)(nil)
	_ Runner        = (*Monitor)(nil)
)

// NewService exposes the monitor and the event log behind their interfaces.
func NewService(m *Monitor, repos *repository.Repository) *Service {
	return &Service{
		Monitoring:    m,
		Configuration: m,
		Cloud:         m,
		EventLog:      NewEventLogService(repos.EventRepo),
		Runner:        m,
	}
}
