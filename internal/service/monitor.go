package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"temp_monitor/internal/clock"
	"temp_monitor/internal/device"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/repository"
	"temp_monitor/internal/samples"
	"temp_monitor/internal/sensor"
	"temp_monitor/internal/store"
	"temp_monitor/internal/uploader"

	"github.com/google/uuid"
)

// ErrStopped is returned to callers once the control loop has exited.
var ErrStopped = errors.New("monitor is not running")

// Wall-clock readings before this are taken to mean the clock is unset.
var uptimeEpoch = time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)

// MonitorDeps are the collaborators owned by the control loop.
type MonitorDeps struct {
	Buffer   *samples.Buffer
	Config   *device.Config
	Uploader *uploader.Uploader
	Sensor   sensor.Sensor
	Relay    *Relay
	Store    store.Store
	Clock    clock.Clock
	Events   repository.EventRepo
	Status   repository.StatusRepo
	Log      *logger.Logger
}

type command struct {
	fn   func(ctx context.Context)
	done chan struct{}
}

// Monitor owns the sample buffer, device config and uploader and is the
// only goroutine that touches them. Web requests are queued onto the loop
// and wait for their turn.
type Monitor struct {
	buffer   *samples.Buffer
	config   *device.Config
	uploader *uploader.Uploader
	sensor   sensor.Sensor
	relay    *Relay
	store    store.Store
	clock    clock.Clock
	events   repository.EventRepo
	status   repository.StatusRepo
	log      *logger.Logger

	cmds     chan command
	stopped  chan struct{}
	stopOnce sync.Once

	startedAt  time.Time
	lastUpload models.UploadStatus
}

// NewMonitor wires the loop. Buffer, Config, Uploader and Sensor are required.
func NewMonitor(d MonitorDeps) *Monitor {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Relay == nil {
		d.Relay = NewRelay(NewLogSwitch(d.Log))
	}
	if d.Store == nil {
		d.Store = store.NewMemory()
	}
	return &Monitor{
		buffer:   d.Buffer,
		config:   d.Config,
		uploader: d.Uploader,
		sensor:   d.Sensor,
		relay:    d.Relay,
		store:    d.Store,
		clock:    d.Clock,
		events:   d.Events,
		status:   d.Status,
		log:      d.Log,
		cmds:     make(chan command),
		stopped:  make(chan struct{}),
	}
}

// Run polls the sensor every tick and serves queued commands until ctx is canceled.
func (m *Monitor) Run(ctx context.Context, tick time.Duration) {
	defer m.stopOnce.Do(func() { close(m.stopped) })

	t := time.NewTicker(tick)
	defer t.Stop()

	m.log.Infow("monitor_started", "tick", tick.String(), "buckets", m.buffer.BucketCount())
	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			m.log.Infow("monitor_stopped")
			return
		case <-t.C:
			m.poll(ctx)
		case c := <-m.cmds:
			c.fn(ctx)
			close(c.done)
		}
	}
}

// do runs fn on the control loop and waits for it to finish.
func (m *Monitor) do(ctx context.Context, fn func(ctx context.Context)) error {
	c := command{fn: fn, done: make(chan struct{})}
	select {
	case m.cmds <- c:
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-c.done
	return nil
}

// poll takes one reading and reacts to what it did to the buffer.
func (m *Monitor) poll(ctx context.Context) {
	m.markStarted()

	value, err := m.sensor.Read(ctx)
	if err != nil {
		m.log.Warnw("sensor_read_failed", "err", err)
		return
	}

	ev, perr := m.buffer.RecordReading(value)
	switch ev {
	case samples.EventRejected:
		m.resetSensor(ctx, value)
		return
	case samples.EventBucketChanged:
		if perr != nil {
			m.log.Errorw("samples_persist_failed", "err", perr)
		}
		snap := m.buffer.Snapshot()
		m.appendEvent(ctx, models.EventBucketChanged,
			fmt.Sprintf("Bucket %d started at %.1f C", snap.CurrentIndex, value),
			map[string]any{"index": snap.CurrentIndex, "value": value, "persisted": perr == nil})
		m.publish(ctx, snap)
	}

	m.driveRelay(ctx, value)
}

func (m *Monitor) resetSensor(ctx context.Context, value float64) {
	m.log.Warnw("sensor_out_of_range", "value", value)
	meta := map[string]any{"value": value}
	if err := m.sensor.Reset(ctx); err != nil {
		m.log.Errorw("sensor_reset_failed", "err", err)
		meta["error"] = err.Error()
	}
	m.appendEvent(ctx, models.EventSensorReset,
		fmt.Sprintf("Reading %.1f C out of range; sensor reset", value), meta)
}

func (m *Monitor) driveRelay(ctx context.Context, value float64) {
	cfg := m.config.Values()
	changed, err := m.relay.Update(value, cfg)
	if err != nil {
		m.log.Errorw("relay_set_failed", "err", err)
		return
	}
	if !changed {
		return
	}
	typ, desc := models.EventRelayOff, "Heater relay off"
	if m.relay.On() {
		typ, desc = models.EventRelayOn, "Heater relay on"
	}
	m.appendEvent(ctx, typ, desc, map[string]any{
		"temp_c":    value,
		"on_below":  cfg.RelayOnBelowTemp,
		"off_above": cfg.RelayOffAboveTemp,
	})
}

// publish uploads snap and records the outcome.
func (m *Monitor) publish(ctx context.Context, snap models.SampleSnapshot) models.UploadStatus {
	res := m.uploader.Publish(ctx, snap, m.config.Values())

	st := models.UploadStatus{
		ID:          1,
		Status:      res.Status,
		Attempts:    res.Attempts,
		Message:     res.Message,
		Insecure:    res.Insecure,
		AttemptedAt: res.At.UTC(),
	}
	m.lastUpload = st

	switch res.Status {
	case models.UploadDelivered:
		m.log.Infow("upload_delivered", "attempts", res.Attempts, "insecure", res.Insecure)
	case models.UploadNotConfigured:
		m.log.Debugw("upload_skipped", "reason", res.Message)
	default:
		m.log.Warnw("upload_failed", "attempts", res.Attempts, "result", res.Message)
	}

	if m.status != nil {
		if err := m.status.Save(ctx, st); err != nil {
			m.log.Warnw("upload_status_save_failed", "err", err)
		}
	}
	m.appendEvent(ctx, models.EventUpload, "Upload "+res.Status, map[string]any{
		"status":   res.Status,
		"attempts": res.Attempts,
		"insecure": res.Insecure,
	})
	return st
}

func (m *Monitor) appendEvent(ctx context.Context, typ, desc string, meta any) {
	if m.events == nil {
		return
	}
	err := m.events.Append(ctx, models.DeviceEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  m.clock.Now().UTC(),
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	})
	if err != nil {
		m.log.Warnw("event_append_failed", "type", typ, "err", err)
	}
}

func (m *Monitor) markStarted() {
	if !m.startedAt.IsZero() {
		return
	}
	if now := m.clock.Now(); now.After(uptimeEpoch) {
		m.startedAt = now
	}
}

// uptime is empty until the wall clock has been set.
func (m *Monitor) uptime() string {
	if m.startedAt.IsZero() {
		return ""
	}
	return FormatUptime(m.clock.Now().Sub(m.startedAt))
}

// FormatUptime renders d as "D days HH:MM:SS".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	return fmt.Sprintf("%d days %02d:%02d:%02d", days, secs/3600, (secs%3600)/60, secs%60)
}
