// Package editor serves the browser editor: the page itself, the per-session
// timeline API, and the play-head stream.
package editor

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"reeledit/composition"
	"reeledit/config"
	"reeledit/fcp"
	"reeledit/gate"
	"reeledit/layout"
	"reeledit/logging"
	"reeledit/script"
	"reeledit/timeline"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Server hosts the editor.
type Server struct {
	cfg      config.Config
	sessions *Sessions
	tmpl     *template.Template
	static   http.Handler
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

// New creates a server from cfg.
func New(cfg config.Config, log *zap.SugaredLogger) (*Server, error) {
	log = logging.OrNop(log)

	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	newStore := func() *timeline.Store {
		return timeline.NewStore(
			timeline.WithClipSource(cfg.ClipSource),
			timeline.WithClipDuration(cfg.ClipDuration),
			timeline.WithTextDuration(cfg.TextDuration),
			timeline.WithLogger(log),
		)
	}

	return &Server{
		cfg:      cfg,
		sessions: newSessions(newStore, cfg.BlockedMaxWidth, log),
		tmpl:     tmpl,
		static:   http.StripPrefix("/static/", http.FileServer(http.FS(static))),
		log:      log,
	}, nil
}

// Sessions exposes the live session set.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", s.static)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDropSession)
	mux.HandleFunc("POST /api/sessions/{id}/close", s.handleDropSession)
	mux.HandleFunc("POST /api/sessions/{id}/clips", s.handleAddClip)
	mux.HandleFunc("POST /api/sessions/{id}/texts", s.handleAddText)
	mux.HandleFunc("GET /api/sessions/{id}/timeline", s.handleTimeline)
	mux.HandleFunc("GET /api/sessions/{id}/composition", s.handleComposition)
	mux.HandleFunc("GET /api/sessions/{id}/export.fcpxml", s.handleExport)
	mux.HandleFunc("GET /api/sessions/{id}/script.yaml", s.handleScript)
	mux.HandleFunc("POST /api/sessions/{id}/viewport", s.handleViewport)
	mux.HandleFunc("GET /api/sessions/{id}/playhead", s.handlePlayhead)

	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.SessionIdle > 0 {
		reapCtx, stopReaper := context.WithCancel(ctx)
		defer stopReaper()
		go s.sessions.RunReaper(reapCtx, reapInterval(s.cfg.SessionIdle), s.cfg.SessionIdle)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("editor listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Infow("shutting down", "sessions", s.sessions.Len())
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// reapInterval checks for idle sessions a few times per idle window.
func reapInterval(idle time.Duration) time.Duration {
	return max(idle/4, time.Second)
}

// TimelineView is what the timeline track renders.
type TimelineView struct {
	TotalDuration  int                    `json:"totalDuration"`
	PlayerDuration int                    `json:"playerDuration"`
	Blocks         []layout.Block         `json:"blocks"`
	Clips          []timeline.Clip        `json:"clips"`
	TextOverlays   []timeline.TextOverlay `json:"textOverlays"`
}

func newTimelineView(snap timeline.Snapshot) TimelineView {
	return TimelineView{
		TotalDuration:  snap.TotalDuration,
		PlayerDuration: snap.PlayerDuration(),
		Blocks:         layout.Blocks(snap),
		Clips:          snap.Clips,
		TextOverlays:   snap.TextOverlays,
	}
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

type appendResponse struct {
	Item     timeline.Item `json:"item"`
	Timeline TimelineView  `json:"timeline"`
}

type viewportRequest struct {
	Width int `json:"width"`
}

type viewportResponse struct {
	Mode      gate.Mode `json:"mode"`
	Changed   bool      `json:"changed"`
	Threshold int       `json:"threshold"`
}

type pageData struct {
	SessionID string
	Mode      gate.Mode
	Threshold int
	Timeline  TimelineView
	Player    composition.Composition
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()

	if v := r.URL.Query().Get("width"); v != "" {
		if width, err := strconv.Atoi(v); err == nil {
			sess.Gate.Observe(width)
		}
	}
	mode := sess.Gate.Mode()

	snap := sess.Store.Snapshot()
	data := pageData{
		SessionID: sess.ID,
		Mode:      mode,
		Threshold: sess.Gate.Threshold(),
		Timeline:  newTimelineView(snap),
		Player:    composition.New(snap),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	cw := brotli.HTTPCompressor(w, r)
	defer cw.Close()
	if err := s.tmpl.ExecuteTemplate(cw, "index.html", data); err != nil {
		s.log.Errorw("render index", "error", err)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.writeJSON(w, r, http.StatusCreated, sessionResponse{SessionID: sess.ID})
}

func (s *Server) handleDropSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Drop(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleAddClip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	clip := sess.Store.AddClip()
	s.log.Infow("clip added", "session", sess.ID, "id", clip.ID, "start", clip.Start)
	s.writeJSON(w, r, http.StatusCreated, appendResponse{
		Item:     clip,
		Timeline: newTimelineView(sess.Store.Snapshot()),
	})
}

func (s *Server) handleAddText(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	overlay := sess.Store.AddTextOverlay()
	s.log.Infow("text overlay added", "session", sess.ID, "id", overlay.ID, "start", overlay.Start)
	s.writeJSON(w, r, http.StatusCreated, appendResponse{
		Item:     overlay,
		Timeline: newTimelineView(sess.Store.Snapshot()),
	})
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, newTimelineView(sess.Store.Snapshot()))
}

func (s *Server) handleComposition(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, r, http.StatusOK, composition.New(sess.Store.Snapshot()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ml, err := fcp.FromComposition(composition.New(sess.Store.Snapshot()), fcp.ExportOptions{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := fcp.Marshal(ml)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.fcpxml"`)
	cw := brotli.HTTPCompressor(w, r)
	defer cw.Close()
	if _, err := cw.Write(data); err != nil {
		s.log.Warnw("write export", "session", sess.ID, "error", err)
	}
}

// handleScript downloads the session as a script that `reeledit build`
// can replay.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := script.FromSnapshot(sess.Store.Snapshot()).Marshal()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Content-Disposition", `attachment; filename="timeline.yaml"`)
	if _, err := w.Write(data); err != nil {
		s.log.Warnw("write script", "session", sess.ID, "error", err)
	}
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req viewportRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Width < 0 {
		s.writeError(w, r, fmt.Errorf("%w: width must not be negative", errBadRequest))
		return
	}

	mode, changed := sess.Gate.Observe(req.Width)
	if changed {
		s.log.Debugw("viewport mode", "session", sess.ID, "width", req.Width, "mode", mode)
	}
	s.writeJSON(w, r, http.StatusOK, viewportResponse{
		Mode:      mode,
		Changed:   changed,
		Threshold: sess.Gate.Threshold(),
	})
}
