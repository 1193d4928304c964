package config

import "time"

const (
	BackendAuto = "auto"
	BackendX11  = "x11"
	BackendHypr = "hypr"
)

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	playback := "ffplay -framedrop -probesize 32 -sync ext -fs -fflags nobuffer"
	selectCmd := "xdotool selectwindow"

	return Config{
		Daemon: DaemonConfig{
			TmuxSession:  "netscd",
			TmuxTimeout:  5 * time.Second,
			PIDFile:      "/tmp/netscreend.pid",
			LogFile:      "/tmp/netscreend.log",
			Protocol:     "tcp",
			Playback:     CommandConfig{Raw: playback, Argv: mustParseArgv(playback)},
			PollInterval: time.Second,
			WebRefresh:   5 * time.Second,
		},
		Capture: CaptureConfig{
			Backend:   BackendAuto,
			Framerate: 25,
			Preset:    "ultrafast",
			BufSize:   "500k",
			Select:    CommandConfig{Raw: selectCmd, Argv: mustParseArgv(selectCmd)},
		},
		Indicator: IndicatorConfig{
			Enable:         true,
			DesktopAppName: "netscreen",
			ErrorTimeoutMS: 3000,
			SoundEnable:    false,
		},
	}
}
