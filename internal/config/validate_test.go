package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty session", mutate: func(c *Config) { c.Daemon.TmuxSession = "" }, wantErr: "tmux_session"},
		{name: "session with target separator", mutate: func(c *Config) { c.Daemon.TmuxSession = "a:b" }, wantErr: "tmux_session"},
		{name: "zero tmux timeout", mutate: func(c *Config) { c.Daemon.TmuxTimeout = 0 }, wantErr: "tmux_timeout_ms"},
		{name: "empty pidfile", mutate: func(c *Config) { c.Daemon.PIDFile = "" }, wantErr: "daemon.pidfile"},
		{name: "empty logfile", mutate: func(c *Config) { c.Daemon.LogFile = "" }, wantErr: "daemon.logfile"},
		{name: "pidfile equals logfile", mutate: func(c *Config) { c.Daemon.LogFile = c.Daemon.PIDFile }, wantErr: "must differ"},
		{name: "udp protocol", mutate: func(c *Config) { c.Daemon.Protocol = "udp" }, wantErr: "daemon.protocol"},
		{name: "empty playback", mutate: func(c *Config) { c.Daemon.Playback = CommandConfig{} }, wantErr: "playback_cmd"},
		{name: "fast poll", mutate: func(c *Config) { c.Daemon.PollInterval = 10 * time.Millisecond }, wantErr: "poll_interval_ms"},
		{name: "negative refresh", mutate: func(c *Config) { c.Daemon.WebRefresh = -time.Second }, wantErr: "web_refresh_s"},
		{name: "unknown backend", mutate: func(c *Config) { c.Capture.Backend = "wayland" }, wantErr: "capture.backend"},
		{name: "zero framerate", mutate: func(c *Config) { c.Capture.Framerate = 0 }, wantErr: "capture.framerate"},
		{name: "empty bufsize", mutate: func(c *Config) { c.Capture.BufSize = " " }, wantErr: "capture.bufsize"},
		{name: "unknown preset", mutate: func(c *Config) { c.Capture.Preset = "turbo" }, wantErr: "capture.preset"},
		{name: "empty select", mutate: func(c *Config) { c.Capture.Select.Argv = nil }, wantErr: "select_cmd"},
		{name: "negative error timeout", mutate: func(c *Config) { c.Indicator.ErrorTimeoutMS = -1 }, wantErr: "error_timeout_ms"},
		{name: "empty app name", mutate: func(c *Config) { c.Indicator.DesktopAppName = "" }, wantErr: "desktop_app_name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnsOnSlowPresetAndRelativePaths(t *testing.T) {
	cfg := Default()
	cfg.Capture.Preset = "medium"
	cfg.Daemon.PIDFile = "netscreend.pid"

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	require.Contains(t, warnings[0].Message, "relative")
	require.Contains(t, warnings[1].Message, "latency")
}
