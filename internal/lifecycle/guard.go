// Package lifecycle enforces a single netscreend instance, detaches the
// daemon from the terminal, and tears a running instance down.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/rbright/netscreen/internal/supervisor"
)

// ErrAlreadyRunning reports that another instance owns the tmux session or pidfile.
var ErrAlreadyRunning = supervisor.ErrAlreadyRunning

// SessionProbe is the subset of the tmux runner the guard needs.
type SessionProbe interface {
	HasSession(ctx context.Context, sessionName string) (bool, error)
	KillSession(ctx context.Context, sessionName string) error
}

// Guard holds the pidfile lock for the lifetime of the daemon.
type Guard struct {
	probe       SessionProbe
	sessionName string
	pidfile     string
	file        *os.File
}

func NewGuard(probe SessionProbe, sessionName string, pidfile string) *Guard {
	return &Guard{probe: probe, sessionName: sessionName, pidfile: pidfile}
}

// Check fails with ErrAlreadyRunning when the tmux session exists. It has no
// side effects.
func (g *Guard) Check(ctx context.Context) error {
	exists, err := g.probe.HasSession(ctx, g.sessionName)
	if err != nil {
		return fmt.Errorf("check tmux session %q: %w", g.sessionName, err)
	}
	if exists {
		return fmt.Errorf("%w in tmux session '%s'", ErrAlreadyRunning, g.sessionName)
	}
	return nil
}

// Acquire runs Check, then creates, locks and writes the pidfile.
func (g *Guard) Acquire(ctx context.Context) error {
	if g.file != nil {
		return errors.New("pidfile already held")
	}
	if err := g.Check(ctx); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(g.pidfile), 0o755); err != nil {
		return fmt.Errorf("create pidfile dir: %w", err)
	}
	f, err := os.OpenFile(g.pidfile, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open pidfile %s: %w", g.pidfile, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("%w: pidfile %s is locked", ErrAlreadyRunning, g.pidfile)
		}
		return fmt.Errorf("lock pidfile %s: %w", g.pidfile, err)
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return fmt.Errorf("truncate pidfile: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		_ = f.Close()
		return fmt.Errorf("write pidfile: %w", err)
	}
	g.file = f
	return nil
}

// Release removes and unlocks the pidfile. A pidfile already removed (for
// example by Kill) is fine.
func (g *Guard) Release() error {
	if g.file == nil {
		return nil
	}
	f := g.file
	g.file = nil

	if err := os.Remove(g.pidfile); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = f.Close()
		return fmt.Errorf("remove pidfile: %w", err)
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return f.Close()
}
