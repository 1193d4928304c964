package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
)

type fileConfig struct {
	Daemon    *daemonFile    `json:"daemon"`
	Capture   *captureFile   `json:"capture"`
	Indicator *indicatorFile `json:"indicator"`
}

type daemonFile struct {
	TmuxSession    *string `json:"tmux_session"`
	TmuxSocket     *string `json:"tmux_socket"`
	TmuxTimeoutMS  *int    `json:"tmux_timeout_ms"`
	PIDFile        *string `json:"pidfile"`
	LogFile        *string `json:"logfile"`
	ControlSocket  *string `json:"control_socket"`
	Protocol       *string `json:"protocol"`
	PlaybackCmd    *string `json:"playback_cmd"`
	PollIntervalMS *int    `json:"poll_interval_ms"`
	WebRefreshS    *int    `json:"web_refresh_s"`
}

type captureFile struct {
	Backend   *string `json:"backend"`
	Framerate *int    `json:"framerate"`
	Preset    *string `json:"preset"`
	BufSize   *string `json:"bufsize"`
	SelectCmd *string `json:"select_cmd"`
}

type indicatorFile struct {
	Enable         *bool   `json:"enable"`
	DesktopAppName *string `json:"desktop_app_name"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms"`
	SoundEnable    *bool   `json:"sound_enable"`
}

// Parse decodes JSONC content on top of base, then validates the result.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		return base, warnings, err
	}

	normalized := jsonc.ToJSON([]byte(content))

	var file fileConfig
	decoder := json.NewDecoder(bytes.NewReader(normalized))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := applyDaemon(&cfg.Daemon, file.Daemon); err != nil {
		return Config{}, nil, err
	}
	if err := applyCapture(&cfg.Capture, file.Capture); err != nil {
		return Config{}, nil, err
	}
	applyIndicator(&cfg.Indicator, file.Indicator)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func applyDaemon(cfg *DaemonConfig, file *daemonFile) error {
	if file == nil {
		return nil
	}

	setString(&cfg.TmuxSession, file.TmuxSession)
	setString(&cfg.TmuxSocket, file.TmuxSocket)
	setString(&cfg.PIDFile, file.PIDFile)
	setString(&cfg.LogFile, file.LogFile)
	setString(&cfg.ControlSocket, file.ControlSocket)
	setString(&cfg.Protocol, file.Protocol)

	if file.TmuxTimeoutMS != nil {
		cfg.TmuxTimeout = time.Duration(*file.TmuxTimeoutMS) * time.Millisecond
	}
	if file.PollIntervalMS != nil {
		cfg.PollInterval = time.Duration(*file.PollIntervalMS) * time.Millisecond
	}
	if file.WebRefreshS != nil {
		cfg.WebRefresh = time.Duration(*file.WebRefreshS) * time.Second
	}
	if file.PlaybackCmd != nil {
		command, err := parseCommand("daemon.playback_cmd", *file.PlaybackCmd)
		if err != nil {
			return err
		}
		cfg.Playback = command
	}
	return nil
}

func applyCapture(cfg *CaptureConfig, file *captureFile) error {
	if file == nil {
		return nil
	}

	setString(&cfg.Backend, file.Backend)
	setString(&cfg.Preset, file.Preset)
	setString(&cfg.BufSize, file.BufSize)
	if file.Framerate != nil {
		cfg.Framerate = *file.Framerate
	}
	if file.SelectCmd != nil {
		command, err := parseCommand("capture.select_cmd", *file.SelectCmd)
		if err != nil {
			return err
		}
		cfg.Select = command
	}
	return nil
}

func applyIndicator(cfg *IndicatorConfig, file *indicatorFile) {
	if file == nil {
		return
	}

	setBool(&cfg.Enable, file.Enable)
	setBool(&cfg.SoundEnable, file.SoundEnable)
	setString(&cfg.DesktopAppName, file.DesktopAppName)
	if file.ErrorTimeoutMS != nil {
		cfg.ErrorTimeoutMS = *file.ErrorTimeoutMS
	}
}

func setBool(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func parseCommand(field string, raw string) (CommandConfig, error) {
	argv, err := parseArgv(raw)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("%s: %w", field, err)
	}
	return CommandConfig{Raw: strings.TrimSpace(raw), Argv: argv}, nil
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var trailing any
	err := decoder.Decode(&trailing)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	return errors.New("multiple JSON values are not allowed")
}

func wrapJSONDecodeError(content []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("invalid JSONC at line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("invalid JSONC value at line %d column %d: %w", line, col, err)
	}

	return fmt.Errorf("invalid JSONC config: %w", err)
}

func offsetToLineCol(content []byte, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	line := 1
	col := 1
	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
