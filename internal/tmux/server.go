// Package tmux drives a tmux server through its command-line interface.
//
// Every call builds an argv array; nothing is passed through a shell. An
// empty socket path targets the user's default tmux server.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tmux invocation.
const DefaultTimeout = 5 * time.Second

// Server is a handle on one tmux server.
type Server struct {
	socketPath string
	timeout    time.Duration
}

// NewServer returns a Server for socketPath ("" for the default server).
func NewServer(socketPath string, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Server{socketPath: strings.TrimSpace(socketPath), timeout: timeout}
}

// SocketPath returns the configured socket, empty for the default server.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// HasSession reports whether sessionName exists. A missing server is not an error.
func (s *Server) HasSession(ctx context.Context, sessionName string) (bool, error) {
	_, err := s.Run(ctx, "has-session", "-t", exactTarget(sessionName))
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

// NewSession creates a detached session whose first window is named windowName.
func (s *Server) NewSession(ctx context.Context, sessionName, windowName string) error {
	args := []string{"new-session", "-d", "-s", sessionName}
	if windowName != "" {
		args = append(args, "-n", windowName)
	}
	_, err := s.Run(ctx, args...)
	return err
}

// NewWindow adds a window to sessionName without selecting it.
func (s *Server) NewWindow(ctx context.Context, sessionName, windowName string) error {
	_, err := s.Run(ctx, "new-window", "-d", "-t", exactTarget(sessionName)+":", "-n", windowName)
	return err
}

// SendInterrupt sends C-c to the active pane of target.
func (s *Server) SendInterrupt(ctx context.Context, target string) error {
	_, err := s.Run(ctx, "send-keys", "-t", target, "C-c")
	return err
}

// SendCommand types commandLine literally into target and presses Enter.
func (s *Server) SendCommand(ctx context.Context, target, commandLine string) error {
	if strings.TrimSpace(commandLine) == "" {
		return errors.New("tmux send-keys requires a non-empty command line")
	}
	if _, err := s.Run(ctx, "send-keys", "-t", target, "-l", "--", commandLine); err != nil {
		return err
	}
	_, err := s.Run(ctx, "send-keys", "-t", target, "Enter")
	return err
}

// KillSession terminates sessionName. A session or server that is already
// gone is not an error.
func (s *Server) KillSession(ctx context.Context, sessionName string) error {
	_, err := s.Run(ctx, "kill-session", "-t", exactTarget(sessionName))
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "can't find session") ||
		strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "error connecting to") {
		return nil
	}
	return err
}

// Run executes a tmux subcommand and returns its combined output.
func (s *Server) Run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tmux", s.args(args...)...)
	cmd.WaitDelay = 500 * time.Millisecond
	out, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return "", fmt.Errorf("tmux %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("tmux %s: %w (%s)", strings.Join(args, " "), err, trimmed)
	}
	return string(out), nil
}

func (s *Server) args(args ...string) []string {
	if s.socketPath == "" {
		return args
	}
	return append([]string{"-S", s.socketPath}, args...)
}

// exactTarget disables tmux's prefix matching on session names.
func exactTarget(sessionName string) string {
	return "=" + sessionName
}
