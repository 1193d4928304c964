package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// KillReport lists the informational lines produced by Kill.
type KillReport struct {
	Lines []string
}

func (r *KillReport) add(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

func (r KillReport) String() string {
	return strings.Join(r.Lines, "\n")
}

// Kill tears down a running instance: the tmux session and the process in the
// pidfile are handled independently, and neither being absent is an error.
// Calling it twice is safe.
func Kill(ctx context.Context, probe SessionProbe, sessionName string, pidfile string) (KillReport, error) {
	var report KillReport
	var errs []error

	exists, err := probe.HasSession(ctx, sessionName)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("check tmux session %q: %w", sessionName, err))
	case exists:
		report.add("killing tmux session '%s'", sessionName)
		if err := probe.KillSession(ctx, sessionName); err != nil {
			errs = append(errs, err)
		}
	default:
		report.add("server not running, no tmux session '%s'", sessionName)
	}

	if err := killPidfile(&report, pidfile); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

func killPidfile(report *KillReport, pidfile string) error {
	data, err := os.ReadFile(pidfile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			report.add("server not running, no server pidfile found (%s)", pidfile)
			return nil
		}
		return fmt.Errorf("read pidfile: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		report.add("removing invalid server pidfile (%s)", pidfile)
		return removePidfile(pidfile)
	}
	if pid == os.Getpid() {
		return fmt.Errorf("pidfile %s names the current process", pidfile)
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			report.add("server not running, removing stale pidfile (%s, pid %d)", pidfile, pid)
			return removePidfile(pidfile)
		}
		return fmt.Errorf("signal server process %d: %w", pid, err)
	}
	report.add("killing server process %d", pid)
	return removePidfile(pidfile)
}

func removePidfile(pidfile string) error {
	if err := os.Remove(pidfile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pidfile: %w", err)
	}
	return nil
}
