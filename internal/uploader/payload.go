package uploader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"temp_monitor/internal/models"
)

// fixed renders a float with a fixed number of decimals as a JSON number.
type fixed struct {
	v        float64
	decimals int
}

func (f fixed) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(f.v, 'f', f.decimals, 64)), nil
}

// payload is the upload body. Field order is part of the wire format.
type payload struct {
	InstanceID   json.RawMessage `json:"instanceId"`
	MinimumValue fixed           `json:"minimumValue"`
	MaximumValue fixed           `json:"maximumValue"`
	Timestamp    int64           `json:"timestamp"`
	Value        fixed           `json:"value"`
}

// buildPayload encodes the snapshot. The instance id is embedded verbatim,
// so it must already be a JSON value (normally a number).
func buildPayload(snap models.SampleSnapshot, instanceID string, now time.Time) ([]byte, error) {
	raw := json.RawMessage(instanceID)
	if !json.Valid(raw) {
		return nil, fmt.Errorf("instance id %q is not a JSON value", instanceID)
	}
	return json.Marshal(payload{
		InstanceID:   raw,
		MinimumValue: fixed{v: snap.Min, decimals: 1},
		MaximumValue: fixed{v: snap.Max, decimals: 1},
		Timestamp:    now.Unix(),
		Value:        fixed{v: snap.CurrentAverage(), decimals: 2},
	})
}
