package capture

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunForwardsOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, "out\n", stdout.String())
	require.Equal(t, "err\n", stderr.String())
}

func TestRunReportsEncoderFailure(t *testing.T) {
	err := Run(context.Background(), []string{"sh", "-c", "exit 3"}, &bytes.Buffer{}, &bytes.Buffer{})
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.ExitCode())
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, []string{"sleep", "30"}, &bytes.Buffer{}, &bytes.Buffer{})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("encoder did not stop after cancel")
	}
}

func TestRunRejectsEmptyCommand(t *testing.T) {
	require.Error(t, Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{}))
}

func TestKillTerminatesExactArgvOnly(t *testing.T) {
	target := exec.Command("sleep", "47.25")
	require.NoError(t, target.Start())
	bystander := exec.Command("sleep", "47.5")
	require.NoError(t, bystander.Start())
	t.Cleanup(func() {
		_ = target.Process.Kill()
		_ = bystander.Process.Kill()
	})

	require.Eventually(t, func() bool {
		killed, err := Kill(context.Background(), []string{"sleep", "47.25"})
		return err == nil && len(killed) == 1 && killed[0] == int32(target.Process.Pid)
	}, 2*time.Second, 50*time.Millisecond)

	waitErr := make(chan error, 1)
	go func() { waitErr <- target.Wait() }()
	select {
	case err := <-waitErr:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("matching process survived")
	}

	require.Nil(t, bystander.ProcessState)
	killed, err := Kill(context.Background(), []string{"sleep", "47.25"})
	require.NoError(t, err)
	require.Empty(t, killed)
}
