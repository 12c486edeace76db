package models

import "time"

// Upload outcomes.
const (
	UploadNotConfigured = "NOT_CONFIGURED"
	UploadDelivered     = "DELIVERED"
	UploadFailed        = "FAILED"
)

// UploadStatus is the outcome of the most recent publish.
type UploadStatus struct {
	ID          int       `json:"id"`
	Status      string    `json:"status"`   // NOT_CONFIGURED | DELIVERED | FAILED
	Attempts    int       `json:"attempts"` // network attempts made
	Message     string    `json:"message"`  // last result text
	Insecure    bool      `json:"insecure"` // server certificate was not verified
	AttemptedAt time.Time `json:"attempted_at"`
}
