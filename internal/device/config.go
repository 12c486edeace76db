// Package device holds the validated, persisted device configuration:
// timezone, heater relay thresholds and the cloud upload destination.
package device

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"temp_monitor/internal/models"
	"temp_monitor/internal/persist"
	"temp_monitor/internal/store"
)

const (
	DefaultTimezoneOffset    = 12
	DefaultRelayOnBelowTemp  = 21.0
	DefaultRelayOffAboveTemp = 21.5
	DefaultInstanceID        = "1"

	MinTimezoneOffset = -12
	MaxTimezoneOffset = 12

	ConfigFile       = "config.csv"
	ConfigBackupFile = "config.bkp"

	// A submitted key starting with this prefix is the masked placeholder
	// echoed back by the form, not a new key.
	maskedKeyPrefix = "**"
)

var (
	ErrTimezoneRange  = fmt.Errorf("timezone offset must be within [%d, %d]", MinTimezoneOffset, MaxTimezoneOffset)
	ErrThresholdOrder = errors.New("relay on-below temperature must be lower than off-above temperature")
	ErrInvalidNumber  = errors.New("invalid number")
)

// Defaults returns the compiled-in configuration.
func Defaults() models.DeviceConfig {
	return models.DeviceConfig{
		TimezoneOffsetHours: DefaultTimezoneOffset,
		RelayOnBelowTemp:    DefaultRelayOnBelowTemp,
		RelayOffAboveTemp:   DefaultRelayOffAboveTemp,
		CloudInstanceID:     DefaultInstanceID,
	}
}

// Config owns the device configuration. Every successful mutation is persisted.
type Config struct {
	values models.DeviceConfig
	record persist.Record
}

func New(s store.Store, strategy persist.Strategy) *Config {
	return &Config{
		values: Defaults(),
		record: persist.Record{
			Store:    s,
			Primary:  ConfigFile,
			Backup:   ConfigBackupFile,
			Strategy: strategy,
		},
	}
}

// Values returns a copy of the current configuration.
func (c *Config) Values() models.DeviceConfig {
	return c.values
}

// Location is the fixed zone for the configured offset.
func (c *Config) Location() *time.Location {
	h := c.values.TimezoneOffsetHours
	return time.FixedZone(fmt.Sprintf("UTC%+d", h), h*3600)
}

// SetTimezoneOffset ignores out-of-range values and reports whether it applied.
func (c *Config) SetTimezoneOffset(hours int) (bool, error) {
	if checkTimezone(hours) != nil {
		return false, nil
	}
	c.values.TimezoneOffsetHours = hours
	return true, c.Save()
}

// SetThresholds stores the pair rounded to 0.1 C and rejects it, keeping the
// prior values, when the rounded pair is not strictly ascending.
func (c *Config) SetThresholds(onBelow, offAbove float64) (bool, error) {
	onBelow, offAbove, err := checkThresholds(onBelow, offAbove)
	if err != nil {
		return false, nil
	}
	c.values.RelayOnBelowTemp = onBelow
	c.values.RelayOffAboveTemp = offAbove
	return true, c.Save()
}

// FormValues are the raw fields of the configuration form.
type FormValues struct {
	MinSet          string
	MaxSet          string
	CloudURL        string
	CloudAPIKey     string
	CloudInstanceID string
}

// ApplyForm commits the whole form only when both thresholds parse and
// MinSet < MaxSet; otherwise nothing changes. A masked key keeps the stored key.
func (c *Config) ApplyForm(f FormValues) (bool, error) {
	onBelow, err1 := parseFloat(f.MinSet)
	offAbove, err2 := parseFloat(f.MaxSet)
	if err1 != nil || err2 != nil {
		return false, nil
	}
	onBelow, offAbove, err := checkThresholds(onBelow, offAbove)
	if err != nil {
		return false, nil
	}

	c.values.RelayOnBelowTemp = onBelow
	c.values.RelayOffAboveTemp = offAbove
	c.values.CloudEndpointURL = strings.TrimSpace(f.CloudURL)
	if !strings.HasPrefix(f.CloudAPIKey, maskedKeyPrefix) {
		c.values.CloudAPIKey = strings.TrimSpace(f.CloudAPIKey)
	}
	c.values.CloudInstanceID = strings.TrimSpace(f.CloudInstanceID)
	return true, c.Save()
}

// Update is a partial change from the JSON API. Nil fields are left alone.
type Update struct {
	TimezoneOffsetHours *int     `json:"timezone_offset_hours,omitempty"`
	RelayOnBelowTemp    *float64 `json:"relay_on_below_temp,omitempty"`
	RelayOffAboveTemp   *float64 `json:"relay_off_above_temp,omitempty"`
	CloudEndpointURL    *string  `json:"cloud_endpoint_url,omitempty"`
	CloudAPIKey         *string  `json:"cloud_api_key,omitempty"`
	CloudInstanceID     *string  `json:"cloud_instance_id,omitempty"`
}

// Apply validates the merged result first and commits all fields or none.
func (c *Config) Apply(u Update) error {
	next := c.values
	if u.TimezoneOffsetHours != nil {
		if err := checkTimezone(*u.TimezoneOffsetHours); err != nil {
			return err
		}
		next.TimezoneOffsetHours = *u.TimezoneOffsetHours
	}
	if u.RelayOnBelowTemp != nil {
		next.RelayOnBelowTemp = *u.RelayOnBelowTemp
	}
	if u.RelayOffAboveTemp != nil {
		next.RelayOffAboveTemp = *u.RelayOffAboveTemp
	}
	var err error
	next.RelayOnBelowTemp, next.RelayOffAboveTemp, err = checkThresholds(next.RelayOnBelowTemp, next.RelayOffAboveTemp)
	if err != nil {
		return err
	}
	if u.CloudEndpointURL != nil {
		next.CloudEndpointURL = strings.TrimSpace(*u.CloudEndpointURL)
	}
	if u.CloudAPIKey != nil && !strings.HasPrefix(*u.CloudAPIKey, maskedKeyPrefix) {
		next.CloudAPIKey = strings.TrimSpace(*u.CloudAPIKey)
	}
	if u.CloudInstanceID != nil {
		next.CloudInstanceID = strings.TrimSpace(*u.CloudInstanceID)
	}

	c.values = next
	return c.Save()
}

func validTimezone(hours int) bool {
	return hours >= MinTimezoneOffset && hours <= MaxTimezoneOffset
}

func checkTimezone(hours int) error {
	if !validTimezone(hours) {
		return ErrTimezoneRange
	}
	return nil
}

// checkThresholds rounds both values to the one decimal the config file
// keeps, so an accepted pair is still ascending after a save and load.
func checkThresholds(onBelow, offAbove float64) (float64, float64, error) {
	onBelow, offAbove = roundTenth(onBelow), roundTenth(offAbove)
	if !(onBelow < offAbove) {
		return 0, 0, ErrThresholdOrder
	}
	return onBelow, offAbove, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}
