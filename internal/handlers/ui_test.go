package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"temp_monitor/internal/models"
	"temp_monitor/internal/service"
	"temp_monitor/internal/store"
)

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func dashboardStatus() models.DeviceStatus {
	buckets := make([]models.Bucket, 48)
	buckets[10] = models.Bucket{Average: 20.5, Count: 4}
	return models.DeviceStatus{
		Summary:   "Now: 20.5 C,  Min: 19.0 C,  Max: 21.0 C",
		Samples:   models.SampleSnapshot{CurrentIndex: 10, BucketWidth: 30 * time.Minute, Buckets: buckets},
		Config:    models.DeviceConfig{RelayOnBelowTemp: 21, RelayOffAboveTemp: 21.5, CloudInstanceID: "1", CloudAPIKey: "abcd"},
		HasAPIKey: true,
		Uptime:    "0 days 01:02:03",
		LocalTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRootPage(t *testing.T) {
	mon := &mockMonitoring{status: dashboardStatus()}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := doRequest(t, r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("root: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Now: 20.5 C", "0 days 01:02:03", "05:00 20.5 C", `name="resetminmax"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("root page missing %q", want)
		}
	}
}

func TestConfigurePage_MasksAPIKey(t *testing.T) {
	mon := &mockMonitoring{status: dashboardStatus()}
	r := newTestRouter(&service.Service{Monitoring: mon})

	w := doRequest(t, r, http.MethodGet, "/configure", "")
	if w.Code != http.StatusOK {
		t.Fatalf("configure: %d", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "abcd") {
		t.Fatalf("stored key rendered in form")
	}
	if !strings.Contains(body, `value="********"`) || !strings.Contains(body, `value="21.5"`) {
		t.Fatalf("form values missing: %s", body)
	}
}

func TestSubmitConfigure(t *testing.T) {
	mon := &mockMonitoring{}
	cfg := &mockConfiguration{applied: true}
	r := newTestRouter(&service.Service{Monitoring: mon, Configuration: cfg})

	w := postForm(t, r, "/configure", url.Values{
		"minset": {"20"}, "maxset": {"22"}, "cloudUrl": {"https://x.example/in"},
		"cloudApiKey": {"********"}, "cloudInstanceId": {"9"},
	})
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("expected 302 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
	if cfg.lastForm.MinSet != "20" || cfg.lastForm.CloudAPIKey != "********" || cfg.lastForm.CloudInstanceID != "9" {
		t.Fatalf("form not passed through: %+v", cfg.lastForm)
	}

	cfg.applied = false
	w = postForm(t, r, "/configure", url.Values{"minset": {"25"}, "maxset": {"20"}})
	if w.Code != http.StatusFound {
		t.Fatalf("rejected form should still redirect, got %d", w.Code)
	}

	postForm(t, r, "/configure", url.Values{"resetminmax": {"1"}})
	postForm(t, r, "/configure", url.Values{"resetall": {"1"}})
	if mon.resetCalls != 1 || mon.clearCalls != 1 || cfg.formCalls != 2 {
		t.Fatalf("buttons: reset=%d clear=%d form=%d", mon.resetCalls, mon.clearCalls, cfg.formCalls)
	}

	mon.resetErr = service.ErrStopped
	if w := postForm(t, r, "/configure", url.Values{"resetall": {"1"}}); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when loop stopped, got %d", w.Code)
	}
}

func TestUploadRootCert(t *testing.T) {
	cfg := &mockConfiguration{certOK: true}
	r := newTestRouter(&service.Service{Configuration: cfg})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("rootcert", "ca.pem")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write([]byte("-----BEGIN CERTIFICATE-----\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/rootcert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d %s", w.Code, w.Body.String())
	}
	if string(cfg.lastCert) != "-----BEGIN CERTIFICATE-----\n" {
		t.Fatalf("cert bytes not passed through: %q", cfg.lastCert)
	}

	w = postForm(t, r, "/rootcert", url.Values{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", w.Code)
	}
}

func TestDirAndTestCode(t *testing.T) {
	cfg := &mockConfiguration{files: []store.FileInfo{{Name: "avgs.csv", Size: 412}, {Name: "config.csv", Size: 57}}}
	cloud := &mockCloud{result: models.UploadStatus{Status: models.UploadNotConfigured, Message: "Not configured"}}
	r := newTestRouter(&service.Service{Configuration: cfg, Cloud: cloud})

	w := doRequest(t, r, http.MethodGet, "/dir", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "avgs.csv") || !strings.Contains(w.Body.String(), "412") {
		t.Fatalf("dir: %d %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodGet, "/testcode", "")
	if w.Code != http.StatusOK || w.Body.String() != "Not configured" || cloud.uploadCalls != 1 {
		t.Fatalf("testcode: %d %q calls=%d", w.Code, w.Body.String(), cloud.uploadCalls)
	}
}

func TestChartBars(t *testing.T) {
	bars, low, high := chartBars([]models.ChartPoint{
		{Label: "00:00", Value: 0},
		{Label: "00:30", Value: 20},
		{Label: "01:00", Value: 22},
	})
	if low != 19 || high != 23 {
		t.Fatalf("axis=%v..%v", low, high)
	}
	if !bars[0].Empty || bars[0].Height != 0 {
		t.Fatalf("empty bucket drawn: %+v", bars[0])
	}
	if bars[2].Height <= bars[1].Height {
		t.Fatalf("warmer bucket should be taller: %+v %+v", bars[1], bars[2])
	}
	if bars[1].Y+bars[1].Height != chartHeight {
		t.Fatalf("bars must sit on the baseline: %+v", bars[1])
	}
}
