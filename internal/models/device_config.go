package models

// DeviceConfig is the tunable device configuration.
// CloudAPIKey is never serialized to clients.
type DeviceConfig struct {
	TimezoneOffsetHours int     `json:"timezone_offset_hours"`
	RelayOnBelowTemp    float64 `json:"relay_on_below_temp"`
	RelayOffAboveTemp   float64 `json:"relay_off_above_temp"`
	CloudEndpointURL    string  `json:"cloud_endpoint_url"`
	CloudAPIKey         string  `json:"-"`
	CloudInstanceID     string  `json:"cloud_instance_id"`
}

// HasAPIKey reports whether a key is stored, without exposing it.
func (c DeviceConfig) HasAPIKey() bool {
	return c.CloudAPIKey != ""
}
