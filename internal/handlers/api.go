package handlers

import (
	"errors"
	"net/http"

	"temp_monitor/internal/device"
	"temp_monitor/internal/models"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusReset   = "reset"
	statusCleared = "cleared"

	errGetSamples      = "failed to load samples"
	errResetMinMax     = "failed to reset min/max"
	errClearSamples    = "failed to clear samples"
	errGetConfig       = "failed to load config"
	errSaveConfig      = "failed to save config"
	errUpload          = "failed to run upload"
	errUploadStatus    = "failed to load upload status"
	errUnavailable     = "monitor is not running"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// serviceError maps a stopped control loop to 503 and everything else to 500.
func (h *Handler) serviceError(c *gin.Context, userMsg, logKey string, err error) {
	if errors.Is(err, service.ErrStopped) {
		h.logAndJSONError(c, http.StatusServiceUnavailable, errUnavailable, logKey, err)
		return
	}
	h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err)
}

// configResponse is the public view of the device config.
type configResponse struct {
	models.DeviceConfig
	HasAPIKey bool `json:"has_api_key"`
}

func newConfigResponse(cfg models.DeviceConfig) configResponse {
	return configResponse{DeviceConfig: cfg, HasAPIKey: cfg.HasAPIKey()}
}

// ConfigUpdateRequest is an exported model for Swagger docs of the config payload.
type ConfigUpdateRequest struct {
	// Fixed UTC offset in hours, -12..12
	TimezoneOffsetHours *int `json:"timezone_offset_hours,omitempty" example:"12"`
	// Heater relay switches on below this temperature
	RelayOnBelowTemp *float64 `json:"relay_on_below_temp,omitempty" example:"21"`
	// Heater relay switches off above this temperature
	RelayOffAboveTemp *float64 `json:"relay_off_above_temp,omitempty" example:"21.5"`
	// Upload destination
	CloudEndpointURL *string `json:"cloud_endpoint_url,omitempty" example:"https://example.com/readings"`
	// Write-only upload API key
	CloudAPIKey *string `json:"cloud_api_key,omitempty" example:"abcd1234"`
	// Raw JSON value sent as instanceId
	CloudInstanceID *string `json:"cloud_instance_id,omitempty" example:"1"`
}

func (r ConfigUpdateRequest) toUpdate() device.Update {
	return device.Update{
		TimezoneOffsetHours: r.TimezoneOffsetHours,
		RelayOnBelowTemp:    r.RelayOnBelowTemp,
		RelayOffAboveTemp:   r.RelayOffAboveTemp,
		CloudEndpointURL:    r.CloudEndpointURL,
		CloudAPIKey:         r.CloudAPIKey,
		CloudInstanceID:     r.CloudInstanceID,
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get samples
// @Description  Current, min and max readings, the day's buckets, and the chart series starting at the oldest bucket.
// @Tags         samples
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "summary, samples, chart"
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/samples [get]
func (h *Handler) getSamples(c *gin.Context) {
	st, err := h.services.Monitoring.Status(c.Request.Context())
	if err != nil {
		h.serviceError(c, errGetSamples, "samples_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": st.Summary,
		"samples": st.Samples,
		"chart":   st.Samples.Chart(),
	})
}

// @Summary      Reset min/max
// @Description  Resets the running extrema and persists the buffer. Buckets are kept.
// @Tags         samples
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/samples/reset-minmax [post]
func (h *Handler) resetMinMax(c *gin.Context) {
	if err := h.services.Monitoring.ResetMinMax(c.Request.Context()); err != nil {
		h.serviceError(c, errResetMinMax, "samples_reset_minmax_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusReset})
}

// @Summary      Clear samples
// @Description  Zeroes every bucket, resets extrema and persists the buffer.
// @Tags         samples
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/samples/clear [post]
func (h *Handler) clearSamples(c *gin.Context) {
	if err := h.services.Monitoring.ClearAll(c.Request.Context()); err != nil {
		h.serviceError(c, errClearSamples, "samples_clear_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusCleared})
}

// @Summary      Get config
// @Description  The API key is never returned; has_api_key tells whether one is stored.
// @Tags         config
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/config [get]
func (h *Handler) getConfig(c *gin.Context) {
	cfg, err := h.services.Configuration.Config(c.Request.Context())
	if err != nil {
		h.serviceError(c, errGetConfig, "config_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, newConfigResponse(cfg))
}

// @Summary      Update config
// @Description  Partial update. The merged result is validated first; an invalid timezone or inverted relay thresholds reject the whole request.
// @Tags         config
// @Accept       json
// @Produce      json
// @Param        body  body      ConfigUpdateRequest  true  "Fields to change"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/config [put]
func (h *Handler) putConfig(c *gin.Context) {
	var req ConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	cfg, err := h.services.Configuration.ApplyUpdate(c.Request.Context(), req.toUpdate())
	switch {
	case errors.Is(err, device.ErrTimezoneRange), errors.Is(err, device.ErrThresholdOrder):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.serviceError(c, errSaveConfig, "config_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, newConfigResponse(cfg))
}

// @Summary      Upload now
// @Description  Publishes the current snapshot to the configured endpoint and returns the outcome.
// @Tags         upload
// @Produce      json
// @Success      200  {object}  models.UploadStatus
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/upload [post]
func (h *Handler) uploadNow(c *gin.Context) {
	st, err := h.services.Cloud.UploadNow(c.Request.Context())
	if err != nil {
		h.serviceError(c, errUpload, "upload_now_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Last upload status
// @Tags         upload
// @Produce      json
// @Success      200  {object}  models.UploadStatus
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/upload/status [get]
func (h *Handler) getUploadStatus(c *gin.Context) {
	st, err := h.services.Cloud.UploadStatus(c.Request.Context())
	if err != nil {
		h.serviceError(c, errUploadStatus, "upload_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
