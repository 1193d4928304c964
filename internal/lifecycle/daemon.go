package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DaemonEnv marks the detached child process.
const DaemonEnv = "NETSCREEND_DAEMON"

// IsDaemonChild reports whether this process was started by Daemonize.
func IsDaemonChild() bool {
	return os.Getenv(DaemonEnv) == "1"
}

// Daemonize re-executes the current binary with args in a new session, stdin
// on /dev/null and output appended to logPath. It returns the child pid.
func Daemonize(args []string, logPath string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("resolve executable: %w", err)
	}
	return spawn(exe, args, logPath)
}

func spawn(exe string, args []string, logPath string) (int, error) {
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), DaemonEnv+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start daemon: %w", err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}
