// Package api provides the local HTTP and WebSocket server behind the
// overlay and the control panel.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"keyoverlay/internal/app"
	"keyoverlay/internal/config"
	"keyoverlay/internal/filter"
	"keyoverlay/internal/protocol"
	"keyoverlay/internal/ui"
	"keyoverlay/internal/window"
)

// Server provides the HTTP API, the pages and the WebSocket hub
type Server struct {
	state *app.State
	log   zerolog.Logger
	wsMgr *WSManager
}

// NewServer creates a new API server. Overlay changes are pushed to
// connected clients from then on.
func NewServer(state *app.State, log zerolog.Logger) *Server {
	s := &Server{
		state: state,
		log:   log,
	}
	s.wsMgr = newWSManager(s)
	state.OnConfigChange(func(cfg config.Config) {
		s.wsMgr.Broadcast(protocol.NewConfigMessage(cfg.Overlay))
	})
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	pageData := func() ui.PageData {
		return ui.PageData{Language: s.state.Config.Get().Language}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.Handle("/overlay", ui.Handler(ui.Overlay, pageData))
	mux.Handle("/overlay.html", ui.Handler(ui.Overlay, pageData))
	mux.Handle("/control", ui.Handler(ui.Control, pageData))
	mux.Handle("/control.html", ui.Handler(ui.Control, pageData))
	mux.HandleFunc("/ws", s.wsMgr.handleWebSocket)
	mux.HandleFunc("/api/keys", s.handleKeys)
	mux.HandleFunc("/api/keys/reset", s.handleKeysReset)
	mux.HandleFunc("/api/target", s.handleTarget)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/config/reset", s.handleConfigReset)
	mux.HandleFunc("/api/overlay-config", s.handleOverlayConfig)
	mux.HandleFunc("/api/windows", s.handleWindows)
	mux.HandleFunc("/api/foreground", s.handleForeground)
	mux.HandleFunc("/api/focus", s.handleFocus)
	mux.HandleFunc("/api/launcher-language", s.handleLanguage)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/health", s.handleHealth)

	return s.logMiddleware(s.corsMiddleware(s.recoverMiddleware(mux)))
}

// Start listens on the loopback interface and serves until ctx is done
func (s *Server) Start(ctx context.Context, port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.log.Info().Str("addr", "http://"+addr).Msg("Starting API server")
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves HTTP on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.wsMgr.start(hubCtx)

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		defer done()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error().Err(err).Msg("API server stopped")
		return err
	}
	return nil
}

// ClientCount returns the number of connected WebSocket clients
func (s *Server) ClientCount() int {
	return s.wsMgr.ClientCount()
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("Recovered from handler panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows the pages to be embedded from any origin
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("Request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, protocol.Result{OK: false, Message: msg})
}

func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// handleRoot redirects / to the control panel
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/control", http.StatusFound)
}

// handleKeys handles GET /api/keys
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewKeysMessage(s.state.Tracker.Snapshot()))
}

// handleKeysReset handles POST /api/keys/reset
func (s *Server) handleKeysReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	s.state.ResetKeys()
	writeJSON(w, http.StatusOK, protocol.Result{OK: true})
}

// handleTarget handles GET (read) and POST (update) of the target window
func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodPost {
		var t filter.Target
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			fail(w, http.StatusBadRequest, "Invalid target data")
			return
		}
		if t.Mode == "" {
			t.Mode = filter.Disabled
		}
		if err := s.state.SetTarget(t); err != nil {
			if errors.Is(err, filter.ErrUnknownMode) {
				fail(w, http.StatusBadRequest, err.Error())
				return
			}
			s.log.Error().Err(err).Msg("Failed to save target")
			fail(w, http.StatusInternalServerError, "Failed to save target")
			return
		}
	}
	writeJSON(w, http.StatusOK, s.state.Target())
}

// handleConfig handles GET (read) and POST (update) of the server port
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]int{"port": s.state.Config.Get().Port})
		return
	}

	var req protocol.PortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid configuration data")
		return
	}
	port := s.state.Config.Get().Port
	if req.Port != nil {
		port = *req.Port
	}
	if port < config.MinPort || port > config.MaxPort {
		fail(w, http.StatusBadRequest, fmt.Sprintf("Port must be between %d-%d", config.MinPort, config.MaxPort))
		return
	}
	if err := s.state.Config.Update(func(c *config.Config) { c.Port = port }); err != nil {
		s.log.Error().Err(err).Msg("Failed to save port")
		fail(w, http.StatusInternalServerError, "Failed to save configuration")
		return
	}
	writeJSON(w, http.StatusOK, protocol.Result{OK: true, Message: "Saved. Restart server to apply.", Port: port})
}

// handleConfigReset handles POST /api/config/reset
func (s *Server) handleConfigReset(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if err := s.state.Config.Reset(); err != nil {
		s.log.Error().Err(err).Msg("Failed to reset settings")
		fail(w, http.StatusInternalServerError, "Failed to reset settings")
		return
	}
	s.log.Info().Msg("Settings reset to defaults")
	writeJSON(w, http.StatusOK, protocol.Result{OK: true})
}

// handleOverlayConfig handles GET (read) and POST (partial update) of the
// overlay appearance. Fields absent from the body keep their value.
func (s *Server) handleOverlayConfig(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, s.state.Config.Get().Overlay)
		return
	}

	overlay := s.state.Config.Get().Overlay
	if err := json.NewDecoder(r.Body).Decode(&overlay); err != nil {
		fail(w, http.StatusBadRequest, "Invalid overlay data")
		return
	}
	if err := s.state.Config.Update(func(c *config.Config) { c.Overlay = overlay }); err != nil {
		s.log.Error().Err(err).Msg("Failed to save overlay settings")
		fail(w, http.StatusInternalServerError, "Failed to save overlay settings")
		return
	}
	writeJSON(w, http.StatusOK, protocol.Result{OK: true})
}

// handleWindows handles GET /api/windows, sorted by process then title
func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	list := s.state.Windows.List()
	if list == nil {
		list = []window.Info{}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Process != list[j].Process {
			return list[i].Process < list[j].Process
		}
		return list[i].Title < list[j].Title
	})
	writeJSON(w, http.StatusOK, list)
}

// handleForeground handles GET /api/foreground
func (s *Server) handleForeground(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, protocol.NewForeground(s.state.Windows.Foreground()))
}

// handleFocus handles POST /api/focus
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req protocol.FocusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HWND == "" {
		fail(w, http.StatusBadRequest, "invalid hwnd")
		return
	}
	if err := window.Focus(s.state.Windows, req.HWND); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, protocol.Result{OK: true})
}

// handleLanguage handles GET /api/launcher-language
func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, protocol.LanguageResponse{Language: s.state.Config.Get().Language})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.state.Status())
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": s.wsMgr.ClientCount()})
}
