// Package web serves the netscreend status page, restart action, live
// websocket updates and a JSON status endpoint.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/rbright/netscreen/internal/capture"
	"github.com/rbright/netscreen/internal/session"
	"github.com/rbright/netscreen/internal/supervisor"
)

// Source exposes the session state.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
}

// Playback restarts the playback process.
type Playback interface {
	RestartPlayback(ctx context.Context) error
	Restarts() int64
}

// Options configures a Server.
type Options struct {
	Address string
	Port    int
	Dark    bool
	Refresh time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// Status is the JSON payload of /status.json and /ws.
type Status struct {
	session.Snapshot
	Restarts int64 `json:"restarts"`
}

type Server struct {
	opts     Options
	source   Source
	playback Playback
	logger   *slog.Logger
	mux      *http.ServeMux
}

type pageData struct {
	Dark           bool
	RefreshSeconds int
	WebAddress     string
	ListenURL      string
	Elapsed        string
	Status         Status
	Examples       []pageExample
}

type pageExample struct {
	Platform string
	Tool     string
	Lines    []string
}

func New(opts Options, source Source, playback Playback) (*Server, error) {
	if source == nil {
		return nil, errors.New("web server requires a session source")
	}
	if playback == nil {
		return nil, errors.New("web server requires a playback restarter")
	}
	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid web port %d", opts.Port)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:     opts,
		source:   source,
		playback: playback,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /restart", s.handleRestart)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /status.json", s.handleStatus)
	return s, nil
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Address, strconv.Itoa(s.opts.Port))
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe binds Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen web %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve handles requests on listener until ctx is cancelled, then shuts down
// gracefully. Open websockets are closed through the request context.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "address", listener.Addr().String())
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve web: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		_ = server.Close()
	}
	<-errCh
	return nil
}

func (s *Server) status() Status {
	return s.statusFor(s.source.Snapshot())
}

func (s *Server) statusFor(snap session.Snapshot) Status {
	return Status{Snapshot: snap, Restarts: s.playback.Restarts()}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	status := s.status()

	examples := capture.Examples(status.ListenAddress, status.ListenPort)
	data := pageData{
		Dark:           s.opts.Dark,
		RefreshSeconds: int(s.opts.Refresh / time.Second),
		WebAddress:     s.Addr(),
		ListenURL:      supervisor.ListenURL(status.Protocol, status.ListenAddress, status.ListenPort),
		Elapsed:        s.opts.Now().Sub(status.Since).Truncate(time.Second).String(),
		Status:         status,
		Examples:       make([]pageExample, 0, len(examples)),
	}
	for _, example := range examples {
		lines := make([]string, 0, len(example.Lines))
		for _, line := range example.Lines {
			lines = append(lines, example.Prompt+" "+line)
		}
		data.Examples = append(data.Examples, pageExample{Platform: example.Platform, Tool: example.Tool, Lines: lines})
	}

	var body bytes.Buffer
	if err := pageTemplate.Execute(&body, data); err != nil {
		s.logger.Error("render status page failed", "error", err.Error())
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body.Bytes())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("playback restart requested", "remote", r.RemoteAddr)
	if err := s.playback.RestartPlayback(r.Context()); err != nil {
		s.logger.Error("restart playback failed", "error", err.Error())
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	payload, err := json.Marshal(s.status())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(append(payload, '\n'))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err.Error())
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	updates, release := s.source.Subscribe()
	defer release()

	if err := s.push(ctx, conn, s.status()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := s.push(ctx, conn, s.statusFor(snap)); err != nil {
				return
			}
		}
	}
}

func (s *Server) push(ctx context.Context, conn *websocket.Conn, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, status)
}
