// Package doctor runs readiness diagnostics for the daemon and capture client.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rbright/netscreen/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RunDaemon checks what netscreend needs to host playback.
func RunDaemon(cfg config.Loaded, controlSocket string) Report {
	checks := []Check{configCheck(cfg)}

	d := cfg.Config.Daemon
	checks = append(checks, checkBinary("tmux", "hosts the log and playback windows"))
	checks = append(checks, checkBinary("tail", "follows the log window"))
	checks = append(checks, checkCommand(d.Playback.Argv, "playback_cmd"))
	checks = append(checks, checkWritableDir("pidfile", d.PIDFile))
	checks = append(checks, checkWritableDir("logfile", d.LogFile))
	checks = append(checks, checkWritableDir("control_socket", controlSocket))

	return Report{Checks: checks}
}

// RunClient checks what netscreen needs for backend ("x11", "hypr", or "" when unresolved).
func RunClient(cfg config.Loaded, backend string) Report {
	checks := []Check{configCheck(cfg)}

	checks = append(checks, checkDisplay())

	switch backend {
	case config.BackendHypr:
		checks = append(checks, checkBinary("hyprctl", "lists monitors and windows"))
		checks = append(checks, checkBinary("wf-recorder", "encodes Wayland outputs"))
	default:
		checks = append(checks, checkBinary("ffmpeg", "encodes monitors"))
		checks = append(checks, checkBinary("gst-launch-1.0", "encodes single windows"))
		checks = append(checks, checkCommand(cfg.Config.Capture.Select.Argv, "select_cmd"))
		if cfg.Config.Indicator.Enable {
			checks = append(checks, checkBinary("busctl", "sends desktop notifications"))
		}
	}

	return Report{Checks: checks}
}

func configCheck(cfg config.Loaded) Check {
	if !cfg.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", cfg.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)}
}

// checkDisplay passes when either an X11 or a Hyprland session is reachable.
func checkDisplay() Check {
	if sig := strings.TrimSpace(os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")); sig != "" {
		return Check{Name: "display", Pass: true, Message: "Hyprland session detected"}
	}
	if display := strings.TrimSpace(os.Getenv("DISPLAY")); display != "" {
		return Check{Name: "display", Pass: true, Message: fmt.Sprintf("X11 display %s", display)}
	}
	return Check{Name: "display", Pass: false, Message: "neither DISPLAY nor HYPRLAND_INSTANCE_SIGNATURE is set"}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkWritableDir validates that the parent directory of path accepts new files.
func checkWritableDir(name string, path string) Check {
	dir := filepath.Dir(path)
	probe, err := os.CreateTemp(dir, ".netscreen-doctor-*")
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return Check{Name: name, Pass: true, Message: path}
}
