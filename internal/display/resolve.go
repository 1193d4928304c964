package display

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Source keywords.
const (
	SourceSelect = "select"
	SourceFocus  = "focus"
)

// Target is the resolved capture source. Window is nil for monitor capture.
type Target struct {
	Backend string
	Display string
	Monitor Monitor
	Window  *Window
}

// LookupError is a not-found result carrying the listing of valid alternatives.
type LookupError struct {
	Err     error
	Query   string
	Listing string
}

func (e *LookupError) Error() string {
	switch e.Err {
	case ErrMonitorNotFound:
		return fmt.Sprintf("monitor '%s' not found", e.Query)
	case ErrWindowNotFound:
		return fmt.Sprintf("window '%s' not found", e.Query)
	}
	return e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Primary returns the primary monitor of the layout.
func (l Layout) Primary() (Monitor, error) {
	for _, monitor := range l.Active {
		if monitor.Primary {
			return monitor, nil
		}
	}
	return Monitor{}, &LookupError{Err: ErrPrimaryNotFound, Listing: FormatMonitors(l)}
}

// Lookup returns the active monitor called name.
func (l Layout) Lookup(name string) (Monitor, error) {
	for _, monitor := range l.Active {
		if monitor.Name == name {
			return monitor, nil
		}
	}
	return Monitor{}, &LookupError{Err: ErrMonitorNotFound, Query: name, Listing: FormatMonitors(l)}
}

// ParseWindowID accepts decimal or 0x-prefixed hex window ids.
func ParseWindowID(raw string) (uint64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	base := 10
	digits := raw
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		base = 16
		digits = raw[2:]
	}
	id, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FindWindow returns the window with id.
func FindWindow(windows []Window, id uint64, query string) (Window, error) {
	for _, window := range windows {
		if window.ID == id {
			return window, nil
		}
	}
	return Window{}, &LookupError{Err: ErrWindowNotFound, Query: query, Listing: FormatWindows(windows)}
}

// Resolve maps a source argument to a Target. An empty source selects the
// primary monitor.
func Resolve(ctx context.Context, enum Enumerator, source string) (Target, error) {
	target := Target{Backend: enum.Backend(), Display: enum.DisplayName()}

	switch source {
	case SourceFocus:
		window, err := enum.Focused(ctx)
		if err != nil {
			return Target{}, err
		}
		target.Window = &window
		return target, nil
	case SourceSelect:
		window, err := enum.Select(ctx)
		if err != nil {
			return Target{}, err
		}
		target.Window = &window
		return target, nil
	}

	if id, ok := ParseWindowID(source); ok {
		windows, err := enum.Windows(ctx)
		if err != nil {
			return Target{}, err
		}
		window, err := FindWindow(windows, id, source)
		if err != nil {
			return Target{}, err
		}
		target.Window = &window
		return target, nil
	}

	layout, err := enum.Monitors(ctx)
	if err != nil {
		return Target{}, err
	}

	var monitor Monitor
	if source == "" {
		monitor, err = layout.Primary()
	} else {
		monitor, err = layout.Lookup(source)
	}
	if err != nil {
		return Target{}, err
	}
	target.Monitor = monitor
	return target, nil
}
