package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	sessions map[string]bool
	hasErr   error
	calls    []string
}

func newFakeProbe(sessions ...string) *fakeProbe {
	probe := &fakeProbe{sessions: map[string]bool{}}
	for _, name := range sessions {
		probe.sessions[name] = true
	}
	return probe
}

func (f *fakeProbe) HasSession(_ context.Context, name string) (bool, error) {
	f.calls = append(f.calls, "has "+name)
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.sessions[name], nil
}

func (f *fakeProbe) KillSession(_ context.Context, name string) error {
	f.calls = append(f.calls, "kill "+name)
	delete(f.sessions, name)
	return nil
}

func TestAcquireWritesPidfileAndReleaseRemovesIt(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	guard := NewGuard(newFakeProbe(), "netscd", pidfile)

	require.NoError(t, guard.Acquire(context.Background()))
	data, err := os.ReadFile(pidfile)
	require.NoError(t, err)
	require.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))

	require.NoError(t, guard.Release())
	_, err = os.Stat(pidfile)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, guard.Release())
}

func TestAcquireFailsWithoutSideEffectsWhenSessionExists(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	probe := newFakeProbe("netscd")
	guard := NewGuard(probe, "netscd", pidfile)

	err := guard.Acquire(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Equal(t, "netscreend already running in tmux session 'netscd'", err.Error())
	require.Equal(t, []string{"has netscd"}, probe.calls)

	_, statErr := os.Stat(pidfile)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestAcquireFailsWhenPidfileLocked(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	first := NewGuard(newFakeProbe(), "netscd", pidfile)
	require.NoError(t, first.Acquire(context.Background()))
	t.Cleanup(func() { _ = first.Release() })

	second := NewGuard(newFakeProbe(), "netscd", pidfile)
	err := second.Acquire(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "is locked")

	data, readErr := os.ReadFile(pidfile)
	require.NoError(t, readErr)
	require.Equal(t, strconv.Itoa(os.Getpid())+"\n", string(data))
}

func TestAcquireSurfacesProbeErrors(t *testing.T) {
	probe := newFakeProbe()
	probe.hasErr = errors.New("tmux hung")
	guard := NewGuard(probe, "netscd", filepath.Join(t.TempDir(), "netscreend.pid"))

	err := guard.Acquire(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAlreadyRunning)
	require.Contains(t, err.Error(), "tmux hung")
}

func TestKillTwiceIsSafe(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	target := exec.Command("sleep", "30")
	require.NoError(t, target.Start())
	t.Cleanup(func() { _ = target.Process.Kill() })
	require.NoError(t, os.WriteFile(pidfile, []byte(strconv.Itoa(target.Process.Pid)+"\n"), 0o644))

	probe := newFakeProbe("netscd")
	report, err := Kill(context.Background(), probe, "netscd", pidfile)
	require.NoError(t, err)
	require.Equal(t, []string{
		"killing tmux session 'netscd'",
		"killing server process " + strconv.Itoa(target.Process.Pid),
	}, report.Lines)

	waitErr := make(chan error, 1)
	go func() { waitErr <- target.Wait() }()
	select {
	case err := <-waitErr:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server process survived SIGTERM")
	}

	report, err = Kill(context.Background(), probe, "netscd", pidfile)
	require.NoError(t, err)
	require.Equal(t, "server not running, no tmux session 'netscd'\n"+
		"server not running, no server pidfile found ("+pidfile+")", report.String())
}

func TestKillRemovesStalePidfile(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	gone := exec.Command("true")
	require.NoError(t, gone.Run())
	require.NoError(t, os.WriteFile(pidfile, []byte(strconv.Itoa(gone.Process.Pid)), 0o644))

	report, err := Kill(context.Background(), newFakeProbe(), "netscd", pidfile)
	require.NoError(t, err)
	require.Len(t, report.Lines, 2)
	require.Contains(t, report.Lines[1], "removing stale pidfile")
	_, statErr := os.Stat(pidfile)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestKillRemovesInvalidPidfile(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	require.NoError(t, os.WriteFile(pidfile, []byte("garbage"), 0o644))

	report, err := Kill(context.Background(), newFakeProbe(), "netscd", pidfile)
	require.NoError(t, err)
	require.Contains(t, report.Lines[1], "invalid server pidfile")
	_, statErr := os.Stat(pidfile)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestKillContinuesAfterProbeError(t *testing.T) {
	pidfile := filepath.Join(t.TempDir(), "netscreend.pid")
	probe := newFakeProbe()
	probe.hasErr = errors.New("no tmux binary")

	report, err := Kill(context.Background(), probe, "netscd", pidfile)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no tmux binary")
	require.Equal(t, []string{"server not running, no server pidfile found (" + pidfile + ")"}, report.Lines)
}

func TestSpawnDetachesWithDaemonEnv(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "netscreend.log")

	pid, err := spawn("/bin/sh", []string{"-c", `echo "daemon=$` + DaemonEnv + ` sid=$(cut -d' ' -f6 /proc/$$/stat)"`}, logPath)
	require.NoError(t, err)
	require.Positive(t, pid)

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && strings.Contains(string(data), "daemon=1")
	}, 3*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "sid="+strconv.Itoa(pid))
}

func TestIsDaemonChild(t *testing.T) {
	t.Setenv(DaemonEnv, "")
	require.False(t, IsDaemonChild())
	t.Setenv(DaemonEnv, "1")
	require.True(t, IsDaemonChild())
}
