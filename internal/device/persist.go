package device

import (
	"temp_monitor/internal/csvfield"
)

// Save writes timezone, thresholds, URL, key and instance id in that order.
func (c *Config) Save() error {
	v := c.values
	return c.record.Save(func(w *csvfield.Writer) {
		w.Int(v.TimezoneOffsetHours)
		w.Float(v.RelayOnBelowTemp)
		w.Float(v.RelayOffAboveTemp)
		w.Text(v.CloudEndpointURL)
		w.Text(v.CloudAPIKey)
		w.Text(v.CloudInstanceID)
	})
}

// Load reads the primary or backup file. It returns persist.ErrNoState when
// neither exists, leaving the defaults in place. An out-of-range timezone or
// an inverted threshold pair is replaced by the defaults.
func (c *Config) Load() error {
	rd, err := c.record.Load()
	if err != nil {
		return err
	}

	next := Defaults()
	if tz, ok := rd.Int(); ok && validTimezone(tz) {
		next.TimezoneOffsetHours = tz
	}

	onBelow, okOn := rd.Float()
	offAbove, okOff := rd.Float()
	if okOn && okOff && onBelow < offAbove {
		next.RelayOnBelowTemp = onBelow
		next.RelayOffAboveTemp = offAbove
	}

	if s, ok := rd.Text(); ok {
		next.CloudEndpointURL = s
	}
	if s, ok := rd.Text(); ok {
		next.CloudAPIKey = s
	}
	if s, ok := rd.Text(); ok {
		next.CloudInstanceID = s
	}

	c.values = next
	return nil
}
