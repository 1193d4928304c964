package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/netscreen/internal/cli"
	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/doctor"
	"github.com/rbright/netscreen/internal/ipc"
	"github.com/rbright/netscreen/internal/lifecycle"
	"github.com/rbright/netscreen/internal/logging"
	"github.com/rbright/netscreen/internal/netstat"
	"github.com/rbright/netscreen/internal/session"
	"github.com/rbright/netscreen/internal/supervisor"
	"github.com/rbright/netscreen/internal/tmux"
	"github.com/rbright/netscreen/internal/version"
	"github.com/rbright/netscreen/internal/web"
)

const (
	daemonBinary   = "netscreend"
	controlTimeout = 2 * time.Second
)

// Daemon runs netscreend. Zero-value hooks use the real implementations.
type Daemon struct {
	Stdout io.Writer
	Stderr io.Writer

	Multiplexer supervisor.Runner
	Observer    session.Observer
	Spawn       func(args []string, logPath string) (int, error)
}

func ExecuteDaemon(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	d := Daemon{Stdout: stdout, Stderr: stderr}
	return d.Execute(ctx, args)
}

func (d Daemon) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.ParseDaemon(args)
	if err != nil {
		return usageError(d.Stderr, err, cli.DaemonHelpText(daemonBinary))
	}

	switch parsed.Mode {
	case cli.ModeHelp:
		fmt.Fprint(d.Stdout, cli.DaemonHelpText(daemonBinary))
		return 0
	case cli.ModeVersion:
		fmt.Fprintln(d.Stdout, version.String(daemonBinary))
		return 0
	}

	loaded, err := loadConfig(parsed.ConfigPath, d.Stderr, nil)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		return 1
	}
	cfg := loaded.Config.Daemon
	socketPath := ipc.SocketPath(cfg.ControlSocket)

	mux := d.Multiplexer
	if mux == nil {
		mux = tmux.NewServer(cfg.TmuxSocket, cfg.TmuxTimeout)
	}

	switch parsed.Mode {
	case cli.ModeDoctor:
		report := doctor.RunDaemon(loaded, socketPath)
		fmt.Fprintln(d.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.ModeKill:
		report, err := lifecycle.Kill(ctx, mux, cfg.TmuxSession, cfg.PIDFile)
		if len(report.Lines) > 0 {
			fmt.Fprintln(d.Stdout, report.String())
		}
		if err != nil {
			fmt.Fprintf(d.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	case cli.ModeStatus:
		return d.commandStatus(ctx, socketPath)
	case cli.ModeRestart:
		return d.commandRestart(ctx, socketPath)
	}

	return d.commandRun(ctx, args, parsed, loaded.Config, socketPath, mux)
}

func (d Daemon) commandStatus(ctx context.Context, socketPath string) int {
	resp, err := ipc.Call(ctx, socketPath, ipc.CommandStatus, controlTimeout)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintf(d.Stdout, "state: %s\n", resp.State)
	if resp.Client != "" {
		fmt.Fprintf(d.Stdout, "client: %s\n", resp.Client)
	}
	fmt.Fprintf(d.Stdout, "listen: %s\n", resp.Listen)
	fmt.Fprintf(d.Stdout, "since: %s\n", resp.Since)
	fmt.Fprintf(d.Stdout, "restarts: %d\n", resp.Restarts)
	return 0
}

func (d Daemon) commandRestart(ctx context.Context, socketPath string) int {
	resp, err := ipc.Call(ctx, socketPath, ipc.CommandRestart, controlTimeout)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(d.Stdout, resp.Message)
	return 0
}

func (d Daemon) commandRun(
	ctx context.Context,
	args []string,
	parsed cli.Daemon,
	cfg config.Config,
	socketPath string,
	mux supervisor.Runner,
) int {
	dcfg := cfg.Daemon
	guard := lifecycle.NewGuard(mux, dcfg.TmuxSession, dcfg.PIDFile)

	if !lifecycle.IsDaemonChild() {
		if err := guard.Check(ctx); err != nil {
			return d.startFailure(err, dcfg.TmuxSession)
		}
		fmt.Fprintf(d.Stderr, "logging to %s\n", dcfg.LogFile)
		fmt.Fprintf(d.Stderr, "running in tmux session '%s'\n", dcfg.TmuxSession)
		fmt.Fprintln(d.Stderr, "use -k to kill the server")

		if !parsed.Foreground {
			spawn := d.Spawn
			if spawn == nil {
				spawn = lifecycle.Daemonize
			}
			if _, err := spawn(args, dcfg.LogFile); err != nil {
				fmt.Fprintf(d.Stderr, "error: %v\n", err)
				return 1
			}
			return 0
		}
	}

	logRuntime, err := logging.New(dcfg.LogFile, parsed.Verbose)
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()
	logger := logRuntime.Logger

	if err := guard.Acquire(ctx); err != nil {
		logger.Error("start failed", "error", err.Error())
		return d.startFailure(err, dcfg.TmuxSession)
	}
	defer func() {
		if err := guard.Release(); err != nil {
			logger.Error("release pidfile failed", "error", err.Error())
		}
	}()

	if err := d.serve(ctx, parsed, cfg, socketPath, mux, logger); err != nil {
		logger.Error("netscreend stopped", "error", err.Error())
		if errors.Is(err, supervisor.ErrAlreadyRunning) {
			return d.startFailure(err, dcfg.TmuxSession)
		}
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("netscreend stopped")
	return 0
}

func (d Daemon) startFailure(err error, sessionName string) int {
	if errors.Is(err, lifecycle.ErrAlreadyRunning) {
		fmt.Fprintf(d.Stderr, "error: server already running in tmux session '%s'\n", sessionName)
		return 1
	}
	fmt.Fprintf(d.Stderr, "error: %v\n", err)
	return 1
}

func (d Daemon) serve(
	ctx context.Context,
	parsed cli.Daemon,
	cfg config.Config,
	socketPath string,
	mux supervisor.Runner,
	logger *slog.Logger,
) error {
	dcfg := cfg.Daemon
	sup, err := supervisor.New(mux, supervisor.Config{
		SessionName:  dcfg.TmuxSession,
		LogFile:      dcfg.LogFile,
		PlaybackArgv: supervisor.PlaybackArgv(dcfg.Playback.Argv, dcfg.Protocol, parsed.ListenIP, parsed.ListenPort),
	}, logger)
	if err != nil {
		return err
	}

	observer := d.Observer
	if observer == nil {
		observer = netstat.NewObserver()
	}
	machine, err := session.NewMachine(session.Options{
		Listen: session.Listen{
			Protocol: dcfg.Protocol,
			Address:  parsed.ListenIP,
			Port:     parsed.ListenPort,
		},
		Observer:  observer,
		Restarter: sup,
		Logger:    logger,
		Interval:  dcfg.PollInterval,
	})
	if err != nil {
		return err
	}

	webServer, err := web.New(web.Options{
		Address: parsed.ListenIP,
		Port:    parsed.WebPort,
		Dark:    parsed.Dark,
		Refresh: dcfg.WebRefresh,
		Logger:  logger,
	}, machine, sup)
	if err != nil {
		return err
	}

	listener, err := ipc.Acquire(ctx, socketPath, 200*time.Millisecond, 3)
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	defer func() { _ = os.Remove(socketPath) }()

	if err := sup.StartSession(ctx); err != nil {
		_ = listener.Close()
		return err
	}
	defer func() {
		if err := sup.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Error("close tmux session failed", "error", err.Error())
		}
	}()

	logger.Info("netscreend started",
		"pid", os.Getpid(),
		"listen", supervisor.ListenURL(dcfg.Protocol, parsed.ListenIP, parsed.ListenPort),
		"web", webServer.Addr(),
		"tmux_session", dcfg.TmuxSession,
		"control_socket", socketPath,
		"playback", sup.PlaybackCommandLine(),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return machine.Run(groupCtx)
	})
	group.Go(func() error {
		return webServer.ListenAndServe(groupCtx)
	})
	group.Go(func() error {
		return ipc.Serve(groupCtx, listener, controlHandler(machine, sup, logger))
	})
	return group.Wait()
}
