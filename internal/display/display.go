// Package display enumerates monitors and windows on X11 or Hyprland and
// resolves a capture source argument to a concrete target.
package display

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/hypr"
)

var (
	ErrNoDisplay          = errors.New("no display available")
	ErrMonitorNotFound    = errors.New("monitor not found")
	ErrWindowNotFound     = errors.New("window not found")
	ErrPrimaryNotFound    = errors.New("primary monitor not found")
	ErrSelectUnsupported  = errors.New("interactive window selection is not supported on this backend")
	ErrNoFocusedWindow    = errors.New("no focused window")
	ErrSelectionCancelled = errors.New("window selection cancelled")
)

// Monitor is one active output with its geometry in the global screen space.
type Monitor struct {
	Name    string
	Width   int
	Height  int
	X       int
	Y       int
	Primary bool
}

// Window is one top-level window.
type Window struct {
	ID     uint64
	Class  string
	Title  string
	Width  int
	Height int
	X      int
	Y      int
}

// Layout is the monitor enumeration: active outputs in enumeration order plus
// names of connected-but-inactive outputs.
type Layout struct {
	Active   []Monitor
	Inactive []string
}

// Enumerator lists capture sources for one display backend.
type Enumerator interface {
	Backend() string
	DisplayName() string
	Monitors(ctx context.Context) (Layout, error)
	Windows(ctx context.Context) ([]Window, error)
	Focused(ctx context.Context) (Window, error)
	Select(ctx context.Context) (Window, error)
	Close() error
}

// ResolveBackend maps a requested backend (auto, x11, hypr, or empty) to a
// concrete one using the session environment.
func ResolveBackend(requested string) (string, error) {
	hyprland := hypr.Available()
	x11 := strings.TrimSpace(os.Getenv("DISPLAY")) != ""

	switch requested {
	case config.BackendHypr:
		if !hyprland {
			return "", fmt.Errorf("%w: HYPRLAND_INSTANCE_SIGNATURE not set", ErrNoDisplay)
		}
		return config.BackendHypr, nil
	case config.BackendX11:
		if !x11 {
			return "", fmt.Errorf("%w: DISPLAY variable not set", ErrNoDisplay)
		}
		return config.BackendX11, nil
	case "", config.BackendAuto:
		switch {
		case hyprland:
			return config.BackendHypr, nil
		case x11:
			return config.BackendX11, nil
		}
		return "", fmt.Errorf("%w: DISPLAY variable not set", ErrNoDisplay)
	default:
		return "", fmt.Errorf("unknown display backend %q", requested)
	}
}

// Open connects an Enumerator for the requested backend.
func Open(requested string, selectArgv []string) (Enumerator, error) {
	backend, err := ResolveBackend(requested)
	if err != nil {
		return nil, err
	}
	if backend == config.BackendHypr {
		return hyprEnumerator{}, nil
	}
	return openX11(strings.TrimSpace(os.Getenv("DISPLAY")), selectArgv)
}
