// Package config resolves, parses, validates, and defaults netscreen configuration.
package config

import "time"

// Config is the fully materialized runtime configuration shared by both binaries.
type Config struct {
	Daemon    DaemonConfig
	Capture   CaptureConfig
	Indicator IndicatorConfig
}

// DaemonConfig controls the receiving daemon.
type DaemonConfig struct {
	TmuxSession   string
	TmuxSocket    string
	TmuxTimeout   time.Duration
	PIDFile       string
	LogFile       string
	ControlSocket string
	Protocol      string
	Playback      CommandConfig
	PollInterval  time.Duration
	WebRefresh    time.Duration
}

// CaptureConfig controls encoder construction on the client.
type CaptureConfig struct {
	Backend   string
	Framerate int
	Preset    string
	BufSize   string
	Select    CommandConfig
}

// IndicatorConfig controls the client's streaming notifications and audio cues.
type IndicatorConfig struct {
	Enable         bool
	DesktopAppName string
	ErrorTimeoutMS int
	SoundEnable    bool
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
