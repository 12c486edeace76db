package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"net/http"

	"temp_monitor/internal/device"
	"temp_monitor/internal/models"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("pages").Funcs(template.FuncMap{
	"temp": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}).ParseFS(templateFS, "templates/*.html"))

// Form field and button names of the configure page.
const (
	fieldMinSet          = "minset"
	fieldMaxSet          = "maxset"
	fieldCloudURL        = "cloudUrl"
	fieldCloudAPIKey     = "cloudApiKey"
	fieldCloudInstanceID = "cloudInstanceId"
	fieldRootCert        = "rootcert"
	buttonResetMinMax    = "resetminmax"
	buttonResetAll       = "resetall"

	// The form shows this instead of a stored API key.
	maskedAPIKey = "********"

	maxRootCertBytes = 16 << 10

	chartWidth  = 480
	chartHeight = 160
)

type chartBar struct {
	Label  string
	Value  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
	Empty  bool
}

type rootView struct {
	Status   models.DeviceStatus
	Bars     []chartBar
	Width    int
	Height   int
	AxisLow  float64
	AxisHigh float64
}

type configureView struct {
	Config     models.DeviceConfig
	APIKey     string
	Trusted    bool
	LastResult string
}

// chartBars lays the chart series out as SVG bars scaled to the populated range.
func chartBars(points []models.ChartPoint) ([]chartBar, float64, float64) {
	low, high := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if p.Value == 0 {
			continue
		}
		low = math.Min(low, p.Value)
		high = math.Max(high, p.Value)
	}
	if math.IsInf(low, 1) {
		low, high = 0, 1
	}
	low, high = math.Floor(low)-1, math.Ceil(high)+1

	bars := make([]chartBar, len(points))
	if len(points) == 0 {
		return bars, low, high
	}
	w := float64(chartWidth) / float64(len(points))
	for i, p := range points {
		b := chartBar{Label: p.Label, Value: p.Value, X: float64(i) * w, Width: w * 0.8}
		if p.Value == 0 {
			b.Empty = true
		} else {
			b.Height = (p.Value - low) / (high - low) * chartHeight
		}
		b.Y = chartHeight - b.Height
		bars[i] = b
	}
	return bars, low, high
}

func (h *Handler) pageError(c *gin.Context, logKey string, err error) {
	if h.log != nil {
		h.log.Errorw(logKey, "err", err)
	}
	code := http.StatusInternalServerError
	if errors.Is(err, service.ErrStopped) {
		code = http.StatusServiceUnavailable
	}
	c.String(code, "Error: %v", err)
}

func (h *Handler) rootPage(c *gin.Context) {
	st, err := h.services.Monitoring.Status(c.Request.Context())
	if err != nil {
		h.pageError(c, "page_root_failed", err)
		return
	}
	bars, low, high := chartBars(st.Samples.Chart())
	c.HTML(http.StatusOK, "root.html", rootView{
		Status:   st,
		Bars:     bars,
		Width:    chartWidth,
		Height:   chartHeight,
		AxisLow:  low,
		AxisHigh: high,
	})
}

func (h *Handler) configurePage(c *gin.Context) {
	st, err := h.services.Monitoring.Status(c.Request.Context())
	if err != nil {
		h.pageError(c, "page_configure_failed", err)
		return
	}
	view := configureView{Config: st.Config, Trusted: st.TrustAnchor, LastResult: st.LastResult}
	if st.HasAPIKey {
		view.APIKey = maskedAPIKey
	}
	c.HTML(http.StatusOK, "configure.html", view)
}

// submitConfigure handles both the settings form and the reset buttons.
// It always redirects to the dashboard; a rejected form leaves the config untouched.
func (h *Handler) submitConfigure(c *gin.Context) {
	ctx := c.Request.Context()
	var err error
	switch {
	case c.PostForm(buttonResetMinMax) != "":
		err = h.services.Monitoring.ResetMinMax(ctx)
	case c.PostForm(buttonResetAll) != "":
		err = h.services.Monitoring.ClearAll(ctx)
	default:
		var applied bool
		applied, err = h.services.Configuration.ApplyForm(ctx, device.FormValues{
			MinSet:          c.PostForm(fieldMinSet),
			MaxSet:          c.PostForm(fieldMaxSet),
			CloudURL:        c.PostForm(fieldCloudURL),
			CloudAPIKey:     c.PostForm(fieldCloudAPIKey),
			CloudInstanceID: c.PostForm(fieldCloudInstanceID),
		})
		if err == nil && !applied && h.log != nil {
			h.log.Warnw("configure_rejected", "minset", c.PostForm(fieldMinSet), "maxset", c.PostForm(fieldMaxSet))
		}
	}
	if errors.Is(err, service.ErrStopped) {
		h.pageError(c, "configure_failed", err)
		return
	}
	if err != nil && h.log != nil {
		h.log.Errorw("configure_failed", "err", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) uploadRootCert(c *gin.Context) {
	fh, err := c.FormFile(fieldRootCert)
	if err != nil {
		c.String(http.StatusBadRequest, "missing %s file", fieldRootCert)
		return
	}
	if fh.Size > maxRootCertBytes {
		c.String(http.StatusRequestEntityTooLarge, "certificate larger than %d bytes", maxRootCertBytes)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.pageError(c, "rootcert_open_failed", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxRootCertBytes))
	if err != nil {
		h.pageError(c, "rootcert_read_failed", err)
		return
	}

	loaded, err := h.services.Configuration.InstallRootCert(c.Request.Context(), data)
	if err != nil {
		h.pageError(c, "rootcert_install_failed", err)
		return
	}
	if !loaded && h.log != nil {
		h.log.Warnw("rootcert_unusable", "bytes", len(data))
	}
	c.Redirect(http.StatusSeeOther, "/configure")
}

func (h *Handler) dirPage(c *gin.Context) {
	files, err := h.services.Configuration.Files(c.Request.Context())
	if err != nil {
		h.pageError(c, "page_dir_failed", err)
		return
	}
	c.HTML(http.StatusOK, "dir.html", files)
}

// testCode runs an upload immediately and shows the raw outcome.
func (h *Handler) testCode(c *gin.Context) {
	st, err := h.services.Cloud.UploadNow(c.Request.Context())
	if err != nil {
		h.pageError(c, "testcode_failed", err)
		return
	}
	c.String(http.StatusOK, "%s", st.Message)
}
