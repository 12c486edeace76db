package service

import (
	"errors"
	"strings"
	"time"

	"temp_monitor/internal/models"
)

// MaxLogLimit caps LogFilter.Limit.
const MaxLogLimit = 1000

var (
	ErrInvalidRange     = errors.New("from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidLimit     = errors.New("limit out of range")
)

// LogFilter narrows the device event history.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // one of models.EventTypes, or empty for all
	Limit int       // keep only the newest Limit events; 0 means all
}

// normalize returns f with UTC bounds and a canonical type, or the first
// validation error.
func (f LogFilter) normalize() (LogFilter, error) {
	if !f.From.IsZero() {
		f.From = f.From.UTC()
	}
	if !f.To.IsZero() {
		f.To = f.To.UTC()
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return f, ErrInvalidRange
	}
	f.Type = strings.ToUpper(strings.TrimSpace(f.Type))
	if f.Type != "" && !models.IsEventType(f.Type) {
		return f, ErrUnknownEventType
	}
	if f.Limit < 0 || f.Limit > MaxLogLimit {
		return f, ErrInvalidLimit
	}
	return f, nil
}

// IsFilterError reports whether err came from filter validation.
func IsFilterError(err error) bool {
	return errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrUnknownEventType) || errors.Is(err, ErrInvalidLimit)
}
