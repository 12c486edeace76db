package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"temp_monitor/internal/logger"
	"temp_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMsgSize      = 1 << 12 // 4 KB
	defaultInterval = 1 * time.Second
	maxInterval     = 10 * time.Second

	wsTypeStatus  = "status"
	wsTypeRefresh = "refresh"
)

// wsEnvelope wraps every frame in both directions.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // LAN appliance; no origin policy
}

// statusStream pushes the dashboard status to one client: on connect, on
// every tick and whenever the client sends {"type":"refresh"}.
type statusStream struct {
	conn    *websocket.Conn
	monitor service.Monitoring
	log     *logger.Logger

	refresh chan struct{}
	closed  chan struct{}
}

// @Summary      Live status stream
// @Description  WebSocket; sends {"type":"status","data":DeviceStatus} every interval (?interval=2s or ?interval_ms=2000, max 10s).
// @Tags         samples
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	s := &statusStream{
		conn:    conn,
		monitor: h.services.Monitoring,
		log:     h.log,
		refresh: make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
	s.serve(c.Request.Context(), interval)
}

func (s *statusStream) serve(ctx context.Context, interval time.Duration) {
	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.readLoop()

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer ping.Stop()

	if err := s.push(ctx); err != nil {
		s.debug("ws_write_failed_initial", err)
		return
	}
	for {
		var err error
		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err = s.conn.WriteMessage(websocket.PingMessage, nil)
		case <-ticker.C:
			err = s.push(ctx)
		case <-s.refresh:
			err = s.push(ctx)
		}
		if err != nil {
			s.debug("ws_write_failed", err)
			return
		}
	}
}

// readLoop handles control frames, turns refresh requests into pushes and
// closes s.closed when the peer goes away.
func (s *statusStream) readLoop() {
	defer close(s.closed)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			s.debug("ws_read_closed", err)
			return
		}
		var in wsEnvelope
		if json.Unmarshal(msg, &in) != nil || in.Type != wsTypeRefresh {
			continue
		}
		select {
		case s.refresh <- struct{}{}:
		default:
		}
	}
}

func (s *statusStream) push(ctx context.Context) error {
	st, err := s.monitor.Status(ctx)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("ws_get_status_failed", "err", err)
		}
		return err
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(wsEnvelope{Type: wsTypeStatus, Data: st})
}

func (s *statusStream) debug(event string, err error) {
	if s.log != nil {
		s.log.Debugw(event, "err", err)
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000; out-of-range or
// malformed values fall back to defaultInterval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 {
			if d := time.Duration(v) * time.Millisecond; d <= maxInterval {
				return d
			}
		}
	}
	return defaultInterval
}
