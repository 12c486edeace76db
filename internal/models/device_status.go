package models

import "time"

// DeviceStatus is everything the dashboard shows, captured in one pass of
// the control loop.
type DeviceStatus struct {
	Summary     string         `json:"summary"`
	Samples     SampleSnapshot `json:"samples"`
	Config      DeviceConfig   `json:"config"`
	HasAPIKey   bool           `json:"has_api_key"`
	RelayOn     bool           `json:"relay_on"`
	LocalTime   time.Time      `json:"local_time"`
	Uptime      string         `json:"uptime"`
	LastResult  string         `json:"last_result"`
	LastUpload  UploadStatus   `json:"last_upload"`
	TrustAnchor bool           `json:"trust_anchor"`
}
