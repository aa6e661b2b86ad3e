// Package api provides the localhost control server the UI/tray layer
// drives: device and region listings, assignments, and intercept
// session control, plus a WebSocket status stream.
package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"mseat/internal/controller"
	"mseat/internal/device"
	"mseat/internal/display"
)

// Router is the control surface the server exposes. The concrete
// implementation is *controller.Controller.
type Router interface {
	ListPointingDevices() []device.Device
	ListTypingDevices() []device.Device
	Regions() []display.Region
	RefreshRegions() error
	Assign(class device.Class, dev device.ID, region display.RegionID)
	Enable(class device.Class) error
	Disable(class device.Class)
	IsActive(class device.Class) bool
	RecordForegroundNow()
	Status() controller.Status
}

// Server provides the HTTP control API.
type Server struct {
	router Router
	token  string
	wsMgr  *WSManager
	log    *logrus.Entry
}

// NewServer creates a control server around a router.
func NewServer(router Router, token string) *Server {
	s := &Server{
		router: router,
		token:  token,
		log:    logrus.WithField("component", "api"),
	}
	s.wsMgr = newWSManager(s)
	return s
}

// Start serves the control API on the loopback interface. Blocking.
func (s *Server) Start(port int) error {
	go s.wsMgr.start()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/devices", s.handleDevices)
	mux.HandleFunc("/api/regions", s.handleRegions)
	mux.HandleFunc("/api/regions/refresh", s.handleRefreshRegions)
	mux.HandleFunc("/api/assign", s.handleAssign)
	mux.HandleFunc("/api/enable", s.handleEnable)
	mux.HandleFunc("/api/disable", s.handleDisable)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	// Loopback only: this is a local UI bridge, never a network API.
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return fmt.Errorf("control server listen on %s: %w", addr, err)
	}
	s.log.WithField("addr", addr).Info("control server listening")

	server := &http.Server{
		Handler: s.authMiddleware(s.recoverMiddleware(mux)),
	}
	if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.WithField("panic", err).Error("request handler panicked")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the bearer token if one is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if s.token != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.token {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func parseClass(name string) (device.Class, error) {
	switch name {
	case "pointing":
		return device.Pointing, nil
	case "typing":
		return device.Typing, nil
	default:
		return 0, fmt.Errorf("unknown device class %q", name)
	}
}

// handleDevices handles GET /api/devices?class=pointing|typing
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	class, err := parseClass(r.URL.Query().Get("class"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var devices []device.Device
	if class == device.Typing {
		devices = s.router.ListTypingDevices()
	} else {
		devices = s.router.ListPointingDevices()
	}
	writeJSON(w, devices)
}

// handleRegions handles GET /api/regions
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.router.Regions())
}

// handleRefreshRegions handles POST /api/regions/refresh. The UI calls
// this after a display topology change; assignments made against old
// region ids must be re-created afterwards.
func (s *Server) handleRefreshRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.router.RefreshRegions(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.broadcastStatus()
	writeJSON(w, s.router.Regions())
}

type assignRequest struct {
	Class  string `json:"class"`
	Device uint64 `json:"device"`
	// Region zero clears the assignment.
	Region uint64 `json:"region"`
}

// handleAssign handles POST /api/assign
func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	class, err := parseClass(req.Class)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.router.Assign(class, device.ID(req.Device), display.RegionID(req.Region))
	s.broadcastStatus()
	writeJSON(w, s.router.Status())
}

type classRequest struct {
	Class string `json:"class"`
}

// handleEnable handles POST /api/enable
func (s *Server) handleEnable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	class, err := parseClass(req.Class)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.router.Enable(class); err != nil {
		// Registration refusal is reported, not retried; the caller
		// may re-attempt manually.
		s.log.WithError(err).WithField("class", req.Class).Warn("enable refused")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	s.broadcastStatus()
	writeJSON(w, s.router.Status())
}

// handleDisable handles POST /api/disable
func (s *Server) handleDisable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	class, err := parseClass(req.Class)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.router.Disable(class)
	s.broadcastStatus()
	writeJSON(w, s.router.Status())
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.router.Status())
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) broadcastStatus() {
	s.wsMgr.BroadcastStatus(s.router.Status())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("response encoding failed")
	}
}
