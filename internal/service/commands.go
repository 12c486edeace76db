package service

import (
	"context"
	"fmt"

	"temp_monitor/internal/device"
	"temp_monitor/internal/models"
	"temp_monitor/internal/store"
	"temp_monitor/internal/uploader"
)

// Snapshot returns a copy of the sample buffer.
func (m *Monitor) Snapshot(ctx context.Context) (models.SampleSnapshot, error) {
	var snap models.SampleSnapshot
	err := m.do(ctx, func(context.Context) {
		snap = m.buffer.Snapshot()
	})
	return snap, err
}

// Status gathers the dashboard view.
func (m *Monitor) Status(ctx context.Context) (models.DeviceStatus, error) {
	var st models.DeviceStatus
	err := m.do(ctx, func(context.Context) {
		m.markStarted()
		cfg := m.config.Values()
		st = models.DeviceStatus{
			Summary:     m.buffer.Summary(),
			Samples:     m.buffer.Snapshot(),
			Config:      cfg,
			HasAPIKey:   cfg.HasAPIKey(),
			RelayOn:     m.relay.On(),
			LocalTime:   m.clock.Now().In(m.config.Location()),
			Uptime:      m.uptime(),
			LastResult:  m.uploader.LastResult(),
			LastUpload:  m.lastUpload,
			TrustAnchor: m.uploader.HasTrustAnchors(),
		}
	})
	return st, err
}

// ResetMinMax resets the extrema and persists the buffer.
func (m *Monitor) ResetMinMax(ctx context.Context) error {
	var perr error
	if err := m.do(ctx, func(ctx context.Context) {
		m.buffer.ResetMinMaxExtrema()
		perr = m.buffer.Persist()
		m.appendEvent(ctx, models.EventReset, "Min/max reset", map[string]any{"scope": "minmax"})
	}); err != nil {
		return err
	}
	if perr != nil {
		return fmt.Errorf("persist samples: %w", perr)
	}
	return nil
}

// ClearAll wipes the day's history and persists the empty buffer.
func (m *Monitor) ClearAll(ctx context.Context) error {
	var perr error
	if err := m.do(ctx, func(ctx context.Context) {
		m.buffer.ClearAll()
		perr = m.buffer.Persist()
		m.appendEvent(ctx, models.EventReset, "All samples cleared", map[string]any{"scope": "all"})
	}); err != nil {
		return err
	}
	if perr != nil {
		return fmt.Errorf("persist samples: %w", perr)
	}
	return nil
}

// Config returns the device configuration. The API key is never serialized.
func (m *Monitor) Config(ctx context.Context) (models.DeviceConfig, error) {
	var cfg models.DeviceConfig
	err := m.do(ctx, func(context.Context) {
		cfg = m.config.Values()
	})
	return cfg, err
}

// ApplyForm commits the configuration form. applied is false when the batch
// was rejected; a save failure after applying is returned as an error.
func (m *Monitor) ApplyForm(ctx context.Context, f device.FormValues) (bool, error) {
	var (
		applied bool
		serr    error
	)
	if err := m.do(ctx, func(ctx context.Context) {
		applied, serr = m.config.ApplyForm(f)
		if !applied {
			m.log.Infow("config_form_rejected", "minset", f.MinSet, "maxset", f.MaxSet)
			return
		}
		m.configChanged(ctx, "form")
	}); err != nil {
		return false, err
	}
	if serr != nil {
		return applied, fmt.Errorf("save config: %w", serr)
	}
	return applied, nil
}

// ApplyUpdate applies a partial JSON update atomically.
func (m *Monitor) ApplyUpdate(ctx context.Context, u device.Update) (models.DeviceConfig, error) {
	var (
		cfg  models.DeviceConfig
		aerr error
	)
	if err := m.do(ctx, func(ctx context.Context) {
		before := m.config.Values()
		aerr = m.config.Apply(u)
		cfg = m.config.Values()
		if cfg != before {
			m.configChanged(ctx, "api")
		}
	}); err != nil {
		return models.DeviceConfig{}, err
	}
	return cfg, aerr
}

// configChanged propagates timezone changes to the buffer and logs the change.
func (m *Monitor) configChanged(ctx context.Context, source string) {
	cfg := m.config.Values()
	m.buffer.SetLocation(m.config.Location())
	m.log.Infow("config_changed", "source", source,
		"tz", cfg.TimezoneOffsetHours, "on_below", cfg.RelayOnBelowTemp, "off_above", cfg.RelayOffAboveTemp)
	m.appendEvent(ctx, models.EventConfigChanged, "Configuration updated via "+source, map[string]any{
		"timezone_offset_hours": cfg.TimezoneOffsetHours,
		"relay_on_below_temp":   cfg.RelayOnBelowTemp,
		"relay_off_above_temp":  cfg.RelayOffAboveTemp,
		"cloud_endpoint_url":    cfg.CloudEndpointURL,
		"cloud_instance_id":     cfg.CloudInstanceID,
	})
}

// InstallRootCert stores new trust anchor material and reloads it. loaded is
// false when the data held no usable certificate.
func (m *Monitor) InstallRootCert(ctx context.Context, pem []byte) (bool, error) {
	var (
		loaded bool
		werr   error
	)
	if err := m.do(ctx, func(ctx context.Context) {
		if werr = m.store.WriteFile(uploader.RootCertFile, pem); werr != nil {
			return
		}
		loaded = m.uploader.LoadRootCert()
		m.log.Infow("root_cert_installed", "bytes", len(pem), "loaded", loaded)
		m.appendEvent(ctx, models.EventConfigChanged, "Root certificate uploaded",
			map[string]any{"bytes": len(pem), "loaded": loaded})
	}); err != nil {
		return false, err
	}
	if werr != nil {
		return false, fmt.Errorf("store root certificate: %w", werr)
	}
	return loaded, nil
}

// Files lists the durable store.
func (m *Monitor) Files(ctx context.Context) ([]store.FileInfo, error) {
	var (
		files []store.FileInfo
		lerr  error
	)
	if err := m.do(ctx, func(context.Context) {
		files, lerr = m.store.List()
	}); err != nil {
		return nil, err
	}
	return files, lerr
}

// UploadNow publishes the current snapshot immediately.
func (m *Monitor) UploadNow(ctx context.Context) (models.UploadStatus, error) {
	var st models.UploadStatus
	err := m.do(ctx, func(ctx context.Context) {
		st = m.publish(ctx, m.buffer.Snapshot())
	})
	return st, err
}

// UploadStatus returns the persisted outcome of the last upload, falling
// back to the in-memory one when nothing is stored.
func (m *Monitor) UploadStatus(ctx context.Context) (models.UploadStatus, error) {
	if m.status != nil {
		st, err := m.status.Load(ctx)
		if err != nil {
			return models.UploadStatus{}, err
		}
		if st.Status != "" {
			return st, nil
		}
	}
	var st models.UploadStatus
	err := m.do(ctx, func(context.Context) {
		st = m.lastUpload
	})
	return st, err
}
