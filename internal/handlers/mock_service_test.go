package handlers

import (
	"context"
	"time"

	"temp_monitor/internal/device"
	"temp_monitor/internal/models"
	"temp_monitor/internal/service"
	"temp_monitor/internal/store"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockMonitoring struct {
	status   models.DeviceStatus
	err      error
	resetErr error

	resetCalls int
	clearCalls int
}

func (m *mockMonitoring) Snapshot(ctx context.Context) (models.SampleSnapshot, error) {
	return m.status.Samples, m.err
}
func (m *mockMonitoring) Status(ctx context.Context) (models.DeviceStatus, error) {
	return m.status, m.err
}
func (m *mockMonitoring) ResetMinMax(ctx context.Context) error {
	m.resetCalls++
	return m.resetErr
}
func (m *mockMonitoring) ClearAll(ctx context.Context) error {
	m.clearCalls++
	return m.resetErr
}

type mockConfiguration struct {
	cfg       models.DeviceConfig
	err       error
	applied   bool
	updateErr error
	files     []store.FileInfo
	certOK    bool

	lastForm   device.FormValues
	formCalls  int
	lastUpdate device.Update
	lastCert   []byte
}

func (m *mockConfiguration) Config(ctx context.Context) (models.DeviceConfig, error) {
	return m.cfg, m.err
}
func (m *mockConfiguration) ApplyForm(ctx context.Context, f device.FormValues) (bool, error) {
	m.formCalls++
	m.lastForm = f
	return m.applied, m.err
}
func (m *mockConfiguration) ApplyUpdate(ctx context.Context, u device.Update) (models.DeviceConfig, error) {
	m.lastUpdate = u
	return m.cfg, m.updateErr
}
func (m *mockConfiguration) InstallRootCert(ctx context.Context, pem []byte) (bool, error) {
	m.lastCert = pem
	return m.certOK, m.err
}
func (m *mockConfiguration) Files(ctx context.Context) ([]store.FileInfo, error) {
	return m.files, m.err
}

type mockCloud struct {
	result      models.UploadStatus
	err         error
	uploadCalls int
}

func (m *mockCloud) UploadNow(ctx context.Context) (models.UploadStatus, error) {
	m.uploadCalls++
	return m.result, m.err
}
func (m *mockCloud) UploadStatus(ctx context.Context) (models.UploadStatus, error) {
	return m.result, m.err
}

type mockEventLog struct {
	resp     []models.DeviceEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	last     service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.DeviceEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
