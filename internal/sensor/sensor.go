// Package sensor defines the temperature sensor driver interface and a
// simulated driver for running without hardware.
package sensor

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"temp_monitor/internal/clock"
)

// Sensor produces one reading per call. Readings are not range-checked;
// callers decide what is plausible and call Reset to re-initialize a
// sensor that returns garbage.
type Sensor interface {
	Read(ctx context.Context) (float64, error)
	Reset(ctx context.Context) error
}

// Disconnected is what a half-degree I2C thermometer reports when the bus
// reads back all ones.
const Disconnected = 255.5

// Simulation constants.
const (
	DefaultAmbientC    = 20.0
	DefaultDriftPerMin = 0.05 // fraction of the gap to ambient closed per minute
	DefaultNoiseC      = 0.4
	resolutionC        = 0.5
)

// SimOptions configures a Simulated sensor.
type SimOptions struct {
	StartC      float64
	AmbientC    float64
	DriftPerMin float64
	NoiseC      float64
	// FaultEvery makes every Nth read start returning Disconnected until Reset. 0 disables.
	FaultEvery int
	Seed       int64
}

// Simulated drifts toward an ambient temperature with noise and reports at
// half-degree resolution.
type Simulated struct {
	mu    sync.Mutex
	clock clock.Clock
	opts  SimOptions
	rng   *rand.Rand

	tempC   float64
	last    time.Time
	reads   int
	faulted bool
	resets  int
}

var _ Sensor = (*Simulated)(nil)

func NewSimulated(c clock.Clock, opts SimOptions) *Simulated {
	if c == nil {
		c = clock.Real()
	}
	if opts.AmbientC == 0 {
		opts.AmbientC = DefaultAmbientC
	}
	if opts.StartC == 0 {
		opts.StartC = opts.AmbientC
	}
	if opts.DriftPerMin == 0 {
		opts.DriftPerMin = DefaultDriftPerMin
	}
	if opts.NoiseC < 0 {
		opts.NoiseC = 0
	}
	return &Simulated{
		clock: c,
		opts:  opts,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		tempC: opts.StartC,
		last:  c.Now(),
	}
}

// Read advances the simulation to the current time and returns a reading.
func (s *Simulated) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.opts.FaultEvery > 0 && s.reads%s.opts.FaultEvery == 0 {
		s.faulted = true
	}
	if s.faulted {
		return Disconnected, nil
	}

	now := s.clock.Now()
	elapsedMin := now.Sub(s.last).Minutes()
	s.last = now
	if elapsedMin > 0 {
		s.driftToAmbient(elapsedMin)
	}

	reading := s.tempC + (s.rng.Float64()*2-1)*s.opts.NoiseC
	return math.Round(reading/resolutionC) * resolutionC, nil
}

// Reset clears a simulated fault.
func (s *Simulated) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faulted = false
	s.resets++
	return nil
}

// Resets reports how many times Reset was called.
func (s *Simulated) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}

// driftToAmbient closes part of the gap to ambient, never overshooting.
func (s *Simulated) driftToAmbient(elapsedMin float64) {
	frac := math.Min(1, s.opts.DriftPerMin*elapsedMin)
	s.tempC += (s.opts.AmbientC - s.tempC) * frac
}
