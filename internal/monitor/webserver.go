// Package monitor provides the HTTP debug interface for a live detector:
// health and status, runtime threshold tuning, manual triggering, and a
// chart view of a session's current motion buffer. Debug-only surface, no
// auth — bind it to localhost.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/banshee-data/wiggle/internal/config"
	"github.com/banshee-data/wiggle/internal/gesture"
	"github.com/banshee-data/wiggle/internal/monitoring"
)

// WebServer handles the HTTP monitoring interface for one detector.
type WebServer struct {
	addr     string
	detector *gesture.Detector
	server   *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Addr     string
	Detector *gesture.Detector
}

// NewWebServer builds the server and its routes. Call Start to serve.
func NewWebServer(cfg WebServerConfig) *WebServer {
	ws := &WebServer{
		addr:     cfg.Addr,
		detector: cfg.Detector,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", ws.handleHealth)
	mux.HandleFunc("/api/status", ws.handleStatus)
	mux.HandleFunc("/api/params", ws.handleParams)
	mux.HandleFunc("/api/enable", ws.handleEnable)
	mux.HandleFunc("/api/trigger", ws.handleTrigger)
	mux.HandleFunc("/debug/trail", ws.handleTrailChart)

	ws.server = &http.Server{
		Addr:         ws.addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return ws
}

// Start serves until the listener fails or Shutdown is called.
func (ws *WebServer) Start() error {
	monitoring.Logf("monitor: listening on %s", ws.addr)
	err := ws.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	return ws.server.Shutdown(ctx)
}

// Handler exposes the route mux for tests and embedding hosts.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	Stats    gesture.Stats          `json:"stats"`
	Sessions []gesture.SessionState `json:"sessions"`
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, statusResponse{
		Stats:    ws.detector.Stats(),
		Sessions: ws.detector.SessionStates(false),
	})
}

// handleParams reads or updates the detection thresholds at runtime. POST
// accepts the same partial JSON schema as the tuning config file; only the
// fields present in the body are applied.
func (ws *WebServer) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ws.writeJSON(w, ws.detector.Thresholds())
	case http.MethodPost:
		var update config.TuningConfig
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid params JSON: %v", err))
			return
		}
		if err := update.Validate(); err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		ws.detector.SetThresholds(func(th *gesture.Thresholds) {
			applyUpdate(th, &update)
		})
		monitoring.Logf("monitor: thresholds updated to %+v", ws.detector.Thresholds())
		ws.writeJSON(w, ws.detector.Thresholds())
	default:
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// applyUpdate copies only the fields the caller set. A sensitivity change
// re-resolves the preset-controlled values first so explicit fields in the
// same request still win.
func applyUpdate(th *gesture.Thresholds, update *config.TuningConfig) {
	if update.Sensitivity != nil {
		preset := &config.TuningConfig{Sensitivity: update.Sensitivity}
		th.MinDirectionChanges = preset.GetMinDirectionChanges()
		th.WiggleRatioThreshold = preset.GetWiggleRatioThreshold()
		th.MinTotalDistancePx = preset.GetMinTotalDistancePx()
	}
	if update.TimeWindowSeconds != nil {
		th.TimeWindow = *update.TimeWindowSeconds
	}
	if update.MinDirectionChanges != nil {
		th.MinDirectionChanges = *update.MinDirectionChanges
	}
	if update.WiggleRatioThreshold != nil {
		th.WiggleRatioThreshold = *update.WiggleRatioThreshold
	}
	if update.MinMovementPx != nil {
		th.MinMovementPx = *update.MinMovementPx
	}
	if update.MinTotalDistancePx != nil {
		th.MinTotalDistancePx = *update.MinTotalDistancePx
	}
}

// handleEnable arms or disarms detection globally: POST with ?on=true|false.
func (ws *WebServer) handleEnable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	switch r.URL.Query().Get("on") {
	case "true", "1":
		ws.detector.Enable()
	case "false", "0":
		ws.detector.Disable()
	default:
		ws.writeJSONError(w, http.StatusBadRequest, "missing or invalid 'on' parameter")
		return
	}
	ws.writeJSON(w, ws.detector.Stats())
}

// handleTrigger fires the trigger manually for one entity, bypassing
// classification — the HTTP analog of the host's "disconnect now" action.
func (ws *WebServer) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing entity_id")
		return
	}
	ev := ws.detector.ForceTrigger(entityID, float64(time.Now().UnixNano())/1e9)
	ws.writeJSON(w, ev)
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("monitor: failed to encode response: %v", err)
	}
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
