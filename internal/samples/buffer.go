// Package samples keeps the day's temperature history as fixed time-of-day
// buckets, each holding a running average, plus current/min/max readings.
package samples

import (
	"errors"
	"fmt"
	"math"
	"time"

	"temp_monitor/internal/clock"
	"temp_monitor/internal/models"
	"temp_monitor/internal/persist"
	"temp_monitor/internal/store"
)

const (
	DefaultBucketWidth = 30 * time.Minute
	DefaultMinValid    = 0.0
	DefaultMaxValid    = 100.0

	DataFile   = "avgs.csv"
	BackupFile = "avgs.bkp"

	minutesPerDay = 24 * 60
)

// ErrBucketWidth is returned for widths that do not split a day into whole-minute buckets.
var ErrBucketWidth = errors.New("bucket width must be a whole number of minutes dividing 24h")

// Event tells the caller what a reading did to the buffer.
type Event int

const (
	// EventNone: the reading was folded into the current bucket.
	EventNone Event = iota
	// EventRejected: the reading was outside the plausible range and ignored.
	EventRejected
	// EventBucketChanged: a new bucket was started and the buffer persisted.
	EventBucketChanged
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventRejected:
		return "rejected"
	case EventBucketChanged:
		return "bucket_changed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Options configures a Buffer. Zero values fall back to the defaults.
type Options struct {
	BucketWidth time.Duration
	MinValid    float64
	MaxValid    float64
	Clock       clock.Clock
	Location    *time.Location
	Store       store.Store
	Strategy    persist.Strategy
}

// Buffer is owned by a single control loop; it is not safe for concurrent use.
type Buffer struct {
	width    time.Duration
	minValid float64
	maxValid float64
	clock    clock.Clock
	loc      *time.Location
	record   persist.Record

	current      float64
	min          float64
	max          float64
	currentIndex int

	// placed is false until a reading has been bucketed since New or Reload,
	// so the first reading always starts a fresh bucket.
	placed  bool
	buckets []models.Bucket
}

// New builds an empty buffer with extrema at their sentinels.
func New(opts Options) (*Buffer, error) {
	width := opts.BucketWidth
	if width == 0 {
		width = DefaultBucketWidth
	}
	if width < time.Minute || width%time.Minute != 0 || minutesPerDay%int(width/time.Minute) != 0 {
		return nil, fmt.Errorf("%w: %s", ErrBucketWidth, width)
	}

	minValid, maxValid := opts.MinValid, opts.MaxValid
	if minValid == 0 && maxValid == 0 {
		minValid, maxValid = DefaultMinValid, DefaultMaxValid
	}
	if minValid >= maxValid {
		return nil, fmt.Errorf("invalid sensor range [%.1f, %.1f]", minValid, maxValid)
	}

	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	st := opts.Store
	if st == nil {
		st = store.NewMemory()
	}

	b := &Buffer{
		width:    width,
		minValid: minValid,
		maxValid: maxValid,
		clock:    c,
		loc:      loc,
		record: persist.Record{
			Store:    st,
			Primary:  DataFile,
			Backup:   BackupFile,
			Strategy: opts.Strategy,
		},
		buckets: make([]models.Bucket, minutesPerDay/int(width/time.Minute)),
	}
	b.ClearAll()
	b.current = minValid
	return b, nil
}

// BucketCount is the number of windows in a day.
func (b *Buffer) BucketCount() int { return len(b.buckets) }

// CurrentIndex is the bucket of the most recent accepted reading.
func (b *Buffer) CurrentIndex() int { return b.currentIndex }

// SetLocation changes the timezone used to place readings into buckets.
func (b *Buffer) SetLocation(loc *time.Location) {
	if loc != nil {
		b.loc = loc
	}
}

// InRange reports whether value is a plausible sensor reading.
func (b *Buffer) InRange(value float64) bool {
	return !math.IsNaN(value) && value >= b.minValid && value <= b.maxValid
}

// RecordReading folds value into the buffer. On a bucket transition the new
// bucket is overwritten with the reading and the whole buffer is persisted
// before EventBucketChanged is returned; a persistence failure is returned
// alongside the event.
func (b *Buffer) RecordReading(value float64) (Event, error) {
	if !b.InRange(value) {
		return EventRejected, nil
	}

	b.current = value
	if value < b.min {
		b.min = value
	}
	if value > b.max {
		b.max = value
	}

	idx := b.indexAt(b.clock.Now())
	if b.placed && idx == b.currentIndex {
		bk := &b.buckets[idx]
		bk.Average = (bk.Average*float64(bk.Count) + value) / float64(bk.Count+1)
		bk.Count++
		return EventNone, nil
	}

	b.currentIndex = idx
	b.placed = true
	b.buckets[idx] = models.Bucket{Average: value, Count: 1}
	if err := b.Persist(); err != nil {
		return EventBucketChanged, fmt.Errorf("persist after bucket change: %w", err)
	}
	return EventBucketChanged, nil
}

// ResetMinMaxExtrema puts min/max back to their sentinels. Buckets are untouched
// and nothing is persisted.
func (b *Buffer) ResetMinMaxExtrema() {
	b.min = b.maxValid
	b.max = b.minValid
}

// ClearAll zeroes every bucket and resets extrema. Nothing is persisted.
func (b *Buffer) ClearAll() {
	for i := range b.buckets {
		b.buckets[i] = models.Bucket{}
	}
	b.ResetMinMaxExtrema()
}

// Summary renders current/min/max with one decimal.
func (b *Buffer) Summary() string {
	return fmt.Sprintf("Now: %.1f C,  Min: %.1f C,  Max: %.1f C", b.current, b.min, b.max)
}

// Snapshot returns a copy that readers may keep.
func (b *Buffer) Snapshot() models.SampleSnapshot {
	buckets := make([]models.Bucket, len(b.buckets))
	copy(buckets, b.buckets)
	return models.SampleSnapshot{
		Current:      b.current,
		Min:          b.min,
		Max:          b.max,
		CurrentIndex: b.currentIndex,
		BucketWidth:  b.width,
		Buckets:      buckets,
	}
}

func (b *Buffer) indexAt(t time.Time) int {
	local := t.In(b.loc)
	minutes := local.Hour()*60 + local.Minute()
	return minutes / int(b.width/time.Minute)
}
