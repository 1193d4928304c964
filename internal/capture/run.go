package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"slices"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Run executes the encoder in the foreground until it exits or ctx is cancelled.
func Run(ctx context.Context, argv []string, stdout io.Writer, stderr io.Writer) error {
	if len(argv) == 0 {
		return errors.New("empty encoder command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = 3 * time.Second

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Kill sends SIGTERM to every process whose command line equals argv, except
// the calling process. It returns the pids it signalled.
func Kill(ctx context.Context, argv []string) ([]int32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	var killed []int32
	for _, proc := range procs {
		if proc.Pid == self {
			continue
		}
		cmdline, err := proc.CmdlineSliceWithContext(ctx)
		if err != nil || !slices.Equal(cmdline, argv) {
			continue
		}
		if err := proc.TerminateWithContext(ctx); err != nil {
			if errors.Is(err, process.ErrorProcessNotRunning) || errors.Is(err, syscall.ESRCH) {
				continue
			}
			return killed, err
		}
		killed = append(killed, proc.Pid)
	}
	return killed, nil
}
