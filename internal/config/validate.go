package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var x264Presets = map[string]struct{}{
	"ultrafast": {}, "superfast": {}, "veryfast": {}, "faster": {}, "fast": {},
	"medium": {}, "slow": {}, "slower": {}, "veryslow": {}, "placebo": {},
}

// Validate enforces semantic constraints and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	d := cfg.Daemon
	if strings.TrimSpace(d.TmuxSession) == "" {
		return nil, errors.New("daemon.tmux_session must not be empty")
	}
	if strings.ContainsAny(d.TmuxSession, ":.") {
		return nil, fmt.Errorf("daemon.tmux_session %q must not contain ':' or '.'", d.TmuxSession)
	}
	if d.TmuxTimeout <= 0 {
		return nil, errors.New("daemon.tmux_timeout_ms must be > 0")
	}
	if strings.TrimSpace(d.PIDFile) == "" {
		return nil, errors.New("daemon.pidfile must not be empty")
	}
	if strings.TrimSpace(d.LogFile) == "" {
		return nil, errors.New("daemon.logfile must not be empty")
	}
	if d.PIDFile == d.LogFile {
		return nil, errors.New("daemon.pidfile and daemon.logfile must differ")
	}
	switch d.Protocol {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("daemon.protocol must be tcp, tcp4, or tcp6 (got %q)", d.Protocol)
	}
	if len(d.Playback.Argv) == 0 {
		return nil, errors.New("daemon.playback_cmd must not be empty")
	}
	if d.PollInterval < 100*time.Millisecond {
		return nil, errors.New("daemon.poll_interval_ms must be >= 100")
	}
	if d.WebRefresh < 0 {
		return nil, errors.New("daemon.web_refresh_s must be >= 0")
	}
	if !filepath.IsAbs(d.PIDFile) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("daemon.pidfile %q is relative; it resolves against the working directory", d.PIDFile)})
	}
	if !filepath.IsAbs(d.LogFile) {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("daemon.logfile %q is relative; it resolves against the working directory", d.LogFile)})
	}

	c := cfg.Capture
	switch c.Backend {
	case BackendAuto, BackendX11, BackendHypr:
	default:
		return nil, fmt.Errorf("capture.backend must be auto, x11, or hypr (got %q)", c.Backend)
	}
	if c.Framerate < 1 || c.Framerate > 240 {
		return nil, errors.New("capture.framerate must be between 1 and 240")
	}
	if strings.TrimSpace(c.BufSize) == "" {
		return nil, errors.New("capture.bufsize must not be empty")
	}
	if _, ok := x264Presets[c.Preset]; !ok {
		return nil, fmt.Errorf("capture.preset %q is not an x264 preset", c.Preset)
	}
	if len(c.Select.Argv) == 0 {
		return nil, errors.New("capture.select_cmd must not be empty")
	}
	if c.Preset != "ultrafast" && c.Preset != "superfast" && c.Preset != "veryfast" {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("capture.preset %q may add noticeable latency", c.Preset)})
	}

	i := cfg.Indicator
	if i.ErrorTimeoutMS < 0 {
		return nil, errors.New("indicator.error_timeout_ms must be >= 0")
	}
	if i.Enable && strings.TrimSpace(i.DesktopAppName) == "" {
		return nil, errors.New("indicator.desktop_app_name must not be empty when indicator.enable is true")
	}

	return warnings, nil
}
