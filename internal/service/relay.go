package service

import (
	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
)

// Switch drives the heater relay output.
type Switch interface {
	Set(on bool) error
}

// LogSwitch stands in for relay hardware by logging each change.
type LogSwitch struct {
	log *logger.Logger
}

func NewLogSwitch(log *logger.Logger) *LogSwitch {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSwitch{log: log}
}

func (s *LogSwitch) Set(on bool) error {
	s.log.Infow("relay_output", "on", on)
	return nil
}

// Relay applies on/off hysteresis to a Switch.
type Relay struct {
	sw    Switch
	on    bool
	known bool
}

func NewRelay(sw Switch) *Relay {
	return &Relay{sw: sw}
}

// On reports the last state driven to the switch.
func (r *Relay) On() bool { return r.on }

// Update turns the relay on below RelayOnBelowTemp and off above
// RelayOffAboveTemp; between the two it holds its state. It reports whether
// the output changed.
func (r *Relay) Update(temp float64, cfg models.DeviceConfig) (bool, error) {
	want := r.on
	switch {
	case temp < cfg.RelayOnBelowTemp:
		want = true
	case temp > cfg.RelayOffAboveTemp:
		want = false
	}
	if r.known && want == r.on {
		return false, nil
	}
	if err := r.sw.Set(want); err != nil {
		return false, err
	}
	changed := !r.known || want != r.on
	r.on, r.known = want, true
	return changed, nil
}
