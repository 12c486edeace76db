// Package uploader delivers the latest readings to the cloud endpoint with a
// small, fixed retry budget.
package uploader

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"time"

	"temp_monitor/internal/clock"
	"temp_monitor/internal/logger"
	"temp_monitor/internal/models"
	"temp_monitor/internal/store"
)

const (
	DefaultTimeout    = 15 * time.Second // cold-starting serverless endpoints are slow
	DefaultAttempts   = 3
	DefaultRetryDelay = 10 * time.Millisecond

	minURLLength = 8
	minKeyLength = 4

	notConfigured = "Not configured"
	apiKeyHeader  = "x-api-key"
	maxBodyBytes  = 4 << 10
)

// Options tunes delivery. Zero values use the defaults.
type Options struct {
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
}

// Result describes one Publish call.
type Result struct {
	Status   string // models.UploadNotConfigured | UploadDelivered | UploadFailed
	Attempts int
	Message  string
	Insecure bool
	At       time.Time
}

// Delivered reports a 2xx response on some attempt.
func (r Result) Delivered() bool { return r.Status == models.UploadDelivered }

// Uploader posts snapshots. It is used from a single control loop.
type Uploader struct {
	store  store.Store
	clock  clock.Clock
	log    *logger.Logger
	opts   Options
	roots  *x509.CertPool
	client *http.Client

	lastResult string
}

func New(s store.Store, c clock.Clock, log *logger.Logger, opts Options) *Uploader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if c == nil {
		c = clock.Real()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Uploader{store: s, clock: c, log: log, opts: opts}
}

// LastResult is the outcome text of the most recent Publish.
func (u *Uploader) LastResult() string {
	return u.lastResult
}

// Publish sends the snapshot to cfg's endpoint. It never returns an error:
// an unconfigured destination is reported as UploadNotConfigured with no
// network activity, and transport failures end up in Result.Message.
func (u *Uploader) Publish(ctx context.Context, snap models.SampleSnapshot, cfg models.DeviceConfig) Result {
	now := u.clock.Now()
	if len(cfg.CloudEndpointURL) < minURLLength || len(cfg.CloudAPIKey) < minKeyLength {
		u.lastResult = notConfigured
		return Result{Status: models.UploadNotConfigured, Message: notConfigured, At: now}
	}

	body, err := buildPayload(snap, cfg.CloudInstanceID, now)
	if err != nil {
		u.lastResult = "Failed. err=" + err.Error()
		u.log.Warnw("upload_payload_invalid", "err", err)
		return Result{Status: models.UploadFailed, Message: u.lastResult, At: now}
	}

	client, insecure := u.httpClient()
	if insecure {
		u.log.Warnw("upload_insecure", "reason", "no root certificate to verify server")
	}

	res := Result{Status: models.UploadFailed, Insecure: insecure, At: now}
	for attempt := 1; attempt <= u.opts.Attempts; attempt++ {
		if attempt > 1 {
			u.clock.Sleep(u.opts.RetryDelay)
		}
		if ctx.Err() != nil {
			u.lastResult = "Failed. err=" + ctx.Err().Error()
			break
		}
		res.Attempts = attempt
		ok := u.post(ctx, client, cfg, body)
		if ok {
			res.Status = models.UploadDelivered
			break
		}
	}
	res.Message = u.lastResult
	return res
}

// post performs one attempt and records its outcome in lastResult.
func (u *Uploader) post(ctx context.Context, client *http.Client, cfg models.DeviceConfig, body []byte) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.CloudEndpointURL, bytes.NewReader(body))
	if err != nil {
		u.lastResult = "Failed to begin"
		u.log.Warnw("upload_failed", "result", u.lastResult, "err", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, cfg.CloudAPIKey)

	resp, err := client.Do(req)
	if err != nil {
		u.lastResult = "Failed. err=" + err.Error()
		u.log.Warnw("upload_failed", "result", u.lastResult)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	u.lastResult = fmt.Sprintf("HTTP Response: %d\n%s", resp.StatusCode, respBody)

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok {
		u.log.Infow("upload_delivered", "status", resp.StatusCode)
	} else {
		u.log.Warnw("upload_failed", "status", resp.StatusCode)
	}
	return ok
}
