// Package cli parses netscreend and netscreen command lines.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// DefaultWebPort is the status surface port when -w is not given.
const DefaultWebPort = 8080

// Mode selects what a binary does once parsed.
type Mode string

const (
	ModeRun     Mode = "run"
	ModeKill    Mode = "kill"
	ModeStatus  Mode = "status"
	ModeRestart Mode = "restart"
	ModeDoctor  Mode = "doctor"
	ModeVersion Mode = "version"
	ModeHelp    Mode = "help"
)

// Source keywords accepted by the client in place of a monitor name or window id.
const (
	SourceListMonitors = "list-mon"
	SourceListWindows  = "list-win"
	SourceSelect       = "select"
	SourceFocus        = "focus"
)

// Daemon is the parsed netscreend invocation.
type Daemon struct {
	Mode       Mode
	ConfigPath string
	ListenIP   string
	ListenPort int
	WebPort    int
	Foreground bool
	Verbose    bool
	Dark       bool
}

// Client is the parsed netscreen invocation.
type Client struct {
	Mode       Mode
	ConfigPath string
	Backend    string
	IP         string
	Port       int
	Source     string
	HideCursor bool
	Verbose    bool
}

// ParseDaemon parses netscreend arguments (without argv[0]).
func ParseDaemon(args []string) (Daemon, error) {
	parsed := Daemon{Mode: ModeRun}

	flags := newFlagSet("netscreend")
	var kill, status, restart, doctor, showVersion, help bool
	flags.BoolVarP(&parsed.Foreground, "foreground", "f", false, "run in the foreground")
	flags.BoolVarP(&kill, "kill", "k", false, "kill the running server")
	flags.BoolVarP(&parsed.Verbose, "verbose", "v", false, "debug logging")
	flags.IntVarP(&parsed.WebPort, "web-port", "w", DefaultWebPort, "status web view port")
	flags.BoolVarP(&parsed.Dark, "dark", "B", false, "dark theme for the web view")
	flags.BoolVarP(&status, "status", "s", false, "print status from the running server")
	flags.BoolVarP(&restart, "restart", "r", false, "ask the running server to restart playback")
	flags.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	flags.BoolVar(&doctor, "doctor", false, "run readiness checks")
	flags.BoolVar(&showVersion, "version", false, "print version")
	flags.BoolVarP(&help, "help", "h", false, "show help")

	if err := flags.Parse(args); err != nil {
		return Daemon{}, err
	}

	switch {
	case help:
		return Daemon{Mode: ModeHelp}, nil
	case showVersion:
		return Daemon{Mode: ModeVersion}, nil
	}

	selected, err := exclusiveMode(map[Mode]bool{
		ModeKill:    kill,
		ModeStatus:  status,
		ModeRestart: restart,
		ModeDoctor:  doctor,
	})
	if err != nil {
		return Daemon{}, err
	}
	if selected != "" {
		parsed.Mode = selected
	}

	if parsed.WebPort < 1 || parsed.WebPort > 65535 {
		return Daemon{}, fmt.Errorf("invalid web port: %d", parsed.WebPort)
	}

	positional := flags.Args()
	if parsed.Mode == ModeKill && len(positional) <= 2 {
		// netscreend -k <listen_ip> <listen_port> keeps working; the address is ignored.
		return parsed, nil
	}
	if parsed.Mode != ModeRun {
		if len(positional) > 0 {
			extra := positional[0]
			if parsed.Mode == ModeKill {
				extra = positional[2]
			}
			return Daemon{}, fmt.Errorf("unexpected argument: %s", extra)
		}
		return parsed, nil
	}

	if len(positional) != 2 {
		return Daemon{}, errors.New("expected <listen_ip> <listen_port>")
	}
	parsed.ListenIP = positional[0]
	parsed.ListenPort, err = parsePort(positional[1])
	if err != nil {
		return Daemon{}, err
	}
	return parsed, nil
}

// ParseClient parses netscreen arguments (without argv[0]).
func ParseClient(args []string) (Client, error) {
	parsed := Client{Mode: ModeRun}

	flags := newFlagSet("netscreen")
	var kill, doctor, showVersion, help bool
	flags.BoolVarP(&kill, "kill", "k", false, "kill the matching running capture")
	flags.BoolVarP(&parsed.HideCursor, "hide-cursor", "c", false, "do not draw the mouse cursor")
	flags.BoolVarP(&parsed.Verbose, "verbose", "v", false, "verbose encoder output")
	flags.StringVar(&parsed.ConfigPath, "config", "", "config file path")
	flags.StringVar(&parsed.Backend, "backend", "", "display backend: auto, x11, or hypr")
	flags.BoolVar(&doctor, "doctor", false, "run readiness checks")
	flags.BoolVar(&showVersion, "version", false, "print version")
	flags.BoolVarP(&help, "help", "h", false, "show help")

	if err := flags.Parse(args); err != nil {
		return Client{}, err
	}

	switch {
	case help:
		return Client{Mode: ModeHelp}, nil
	case showVersion:
		return Client{Mode: ModeVersion}, nil
	}

	switch parsed.Backend {
	case "", "auto", "x11", "hypr":
	default:
		return Client{}, fmt.Errorf("invalid backend: %s", parsed.Backend)
	}

	positional := flags.Args()
	if doctor {
		if kill {
			return Client{}, errors.New("--doctor cannot be combined with -k")
		}
		if len(positional) > 0 {
			return Client{}, fmt.Errorf("unexpected argument: %s", positional[0])
		}
		parsed.Mode = ModeDoctor
		return parsed, nil
	}
	if kill {
		parsed.Mode = ModeKill
	}

	if len(positional) < 2 || len(positional) > 3 {
		return Client{}, errors.New("expected <ip> <port> [source]")
	}
	parsed.IP = positional[0]
	port, err := parsePort(positional[1])
	if err != nil {
		return Client{}, err
	}
	parsed.Port = port
	if len(positional) == 3 {
		parsed.Source = positional[2]
	}

	if kill && IsListing(parsed.Source) {
		return Client{}, fmt.Errorf("-k cannot be combined with %s", parsed.Source)
	}
	return parsed, nil
}

// IsListing reports whether source only prints an enumeration.
func IsListing(source string) bool {
	return source == SourceListMonitors || source == SourceListWindows
}

func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SetInterspersed(true)
	return flags
}

func exclusiveMode(candidates map[Mode]bool) (Mode, error) {
	var selected []string
	var mode Mode
	for _, candidate := range []Mode{ModeKill, ModeStatus, ModeRestart, ModeDoctor} {
		if candidates[candidate] {
			selected = append(selected, string(candidate))
			mode = candidate
		}
	}
	if len(selected) > 1 {
		return "", fmt.Errorf("conflicting modes: %s", strings.Join(selected, ", "))
	}
	return mode, nil
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port: %s", raw)
	}
	return port, nil
}

// DaemonHelpText returns netscreend usage.
func DaemonHelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <listen_ip> <listen_port>

Receives an MPEG-TS screen stream and plays it in a tmux session.

Flags:
  -f, --foreground      Run in the foreground
  -k, --kill            Kill the running server
  -v, --verbose         Debug logging
  -w, --web-port PORT   Status web view port (default: %[2]d)
  -B, --dark            Dark theme for the web view
  -s, --status          Print status from the running server
  -r, --restart         Ask the running server to restart playback
  --config PATH         Config file path (default: $XDG_CONFIG_HOME/netscreen/config.jsonc)
  --doctor              Run readiness checks
  --version             Show version
  -h, --help            Show help
`, binaryName, DefaultWebPort)
}

// ClientHelpText returns netscreen usage.
func ClientHelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [flags] <ip> <port> [source]

Streams a monitor or window to a netscreend server.

Source:
  (none)        Primary monitor
  NAME          Monitor output name
  ID            Window id (decimal or 0x hex)
  list-mon      List monitors
  list-win      List windows
  select        Pick a window with the mouse
  focus         Focused window

Flags:
  -k, --kill          Kill the matching running capture
  -c, --hide-cursor   Do not draw the mouse cursor
  -v, --verbose       Verbose encoder output
  --backend NAME      Display backend: auto, x11, or hypr
  --config PATH       Config file path (default: $XDG_CONFIG_HOME/netscreen/config.jsonc)
  --doctor            Run readiness checks
  --version           Show version
  -h, --help          Show help
`, binaryName)
}
