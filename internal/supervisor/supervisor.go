// Package supervisor keeps the playback tool running inside a tmux session.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alessio/shellescape"
)

const (
	LogWindow      = "log"
	PlaybackWindow = "ffmpeg"
)

var ErrAlreadyRunning = errors.New("netscreend already running")

// Runner is the subset of multiplexer control the supervisor needs.
type Runner interface {
	HasSession(ctx context.Context, sessionName string) (bool, error)
	NewSession(ctx context.Context, sessionName, windowName string) error
	NewWindow(ctx context.Context, sessionName, windowName string) error
	SendInterrupt(ctx context.Context, target string) error
	SendCommand(ctx context.Context, target, commandLine string) error
	KillSession(ctx context.Context, sessionName string) error
}

// Config describes the supervised session.
type Config struct {
	SessionName  string
	LogFile      string
	PlaybackArgv []string
}

// Supervisor owns the tmux session hosting the log tail and playback windows.
type Supervisor struct {
	runner Runner
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	restarts atomic.Int64
}

// New validates cfg and returns a supervisor bound to runner.
func New(runner Runner, cfg Config, logger *slog.Logger) (*Supervisor, error) {
	if runner == nil {
		return nil, errors.New("supervisor requires a runner")
	}
	if strings.TrimSpace(cfg.SessionName) == "" {
		return nil, errors.New("supervisor requires a session name")
	}
	if len(cfg.PlaybackArgv) == 0 {
		return nil, errors.New("supervisor requires a playback command")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Supervisor{runner: runner, cfg: cfg, logger: logger}, nil
}

// SessionName returns the reserved tmux session name.
func (s *Supervisor) SessionName() string {
	return s.cfg.SessionName
}

// PlaybackCommandLine renders the playback argv as one shell-safe line.
func (s *Supervisor) PlaybackCommandLine() string {
	return shellescape.QuoteCommand(s.cfg.PlaybackArgv)
}

// Restarts returns how many playback restarts were issued.
func (s *Supervisor) Restarts() int64 {
	return s.restarts.Load()
}

// StartSession creates the session with its log and playback windows and
// launches playback.
func (s *Supervisor) StartSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.runner.HasSession(ctx, s.cfg.SessionName)
	if err != nil {
		return fmt.Errorf("check tmux session %q: %w", s.cfg.SessionName, err)
	}
	if exists {
		return fmt.Errorf("%w in tmux session '%s'", ErrAlreadyRunning, s.cfg.SessionName)
	}

	if err := s.runner.NewSession(ctx, s.cfg.SessionName, LogWindow); err != nil {
		return fmt.Errorf("create tmux session: %w", err)
	}
	if err := s.populateLocked(ctx); err != nil {
		if killErr := s.runner.KillSession(context.WithoutCancel(ctx), s.cfg.SessionName); killErr != nil {
			return errors.Join(err, fmt.Errorf("remove partial tmux session: %w", killErr))
		}
		return err
	}
	return nil
}

// populateLocked fills a freshly created session. A failure leaves the
// session for the caller to remove.
func (s *Supervisor) populateLocked(ctx context.Context) error {
	if s.cfg.LogFile != "" {
		tail := shellescape.QuoteCommand([]string{"tail", "-F", s.cfg.LogFile})
		if err := s.runner.SendCommand(ctx, s.target(LogWindow), tail); err != nil {
			return fmt.Errorf("start log tail: %w", err)
		}
	}
	if err := s.runner.NewWindow(ctx, s.cfg.SessionName, PlaybackWindow); err != nil {
		return fmt.Errorf("create playback window: %w", err)
	}
	return s.restartLocked(ctx)
}

// RestartPlayback interrupts whatever runs in the playback window and types
// the playback command again. Interrupting an idle shell is harmless.
func (s *Supervisor) RestartPlayback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restartLocked(ctx)
}

func (s *Supervisor) restartLocked(ctx context.Context) error {
	s.logger.Info("restarting playback", "session", s.cfg.SessionName, "command", s.PlaybackCommandLine())

	target := s.target(PlaybackWindow)
	if err := s.runner.SendInterrupt(ctx, target); err != nil {
		return fmt.Errorf("interrupt playback: %w", err)
	}
	if err := s.runner.SendCommand(ctx, target, s.PlaybackCommandLine()); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	s.restarts.Add(1)
	return nil
}

// Close kills the supervised session.
func (s *Supervisor) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.runner.KillSession(ctx, s.cfg.SessionName); err != nil {
		return fmt.Errorf("kill tmux session %q: %w", s.cfg.SessionName, err)
	}
	return nil
}

// target names a window of the exact session, matching HasSession and
// KillSession which never prefix-match.
func (s *Supervisor) target(window string) string {
	return "=" + s.cfg.SessionName + ":" + window
}

// PlaybackArgv appends the listen URL for protocol://host:port to base.
func PlaybackArgv(base []string, protocol, host string, port int) []string {
	argv := make([]string, 0, len(base)+1)
	argv = append(argv, base...)
	return append(argv, ListenURL(protocol, host, port))
}

// ListenURL is the playback input URL that waits for one inbound peer.
func ListenURL(protocol, host string, port int) string {
	if protocol == "" {
		protocol = "tcp"
	}
	return protocol + "://" + net.JoinHostPort(host, strconv.Itoa(port)) + "?listen=1"
}
