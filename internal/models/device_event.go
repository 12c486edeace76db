package models

import "time"

// Event types recorded in the device event log.
const (
	EventBucketChanged = "BUCKET_CHANGED"
	EventSensorReset   = "SENSOR_RESET"
	EventUpload        = "UPLOAD"
	EventConfigChanged = "CONFIG_CHANGED"
	EventRelayOn       = "RELAY_ON"
	EventRelayOff      = "RELAY_OFF"
	EventReset         = "RESET"
)

// EventTypes lists every type the log accepts, in display order.
var EventTypes = []string{
	EventBucketChanged,
	EventSensorReset,
	EventUpload,
	EventConfigChanged,
	EventRelayOn,
	EventRelayOff,
	EventReset,
}

// IsEventType reports whether s is one of EventTypes.
func IsEventType(s string) bool {
	for _, t := range EventTypes {
		if t == s {
			return true
		}
	}
	return false
}

// DeviceEvent is a single log entry.
type DeviceEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // BUCKET_CHANGED | SENSOR_RESET | UPLOAD | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
