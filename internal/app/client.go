package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/alessio/shellescape"

	"github.com/rbright/netscreen/internal/capture"
	"github.com/rbright/netscreen/internal/cli"
	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/display"
	"github.com/rbright/netscreen/internal/doctor"
	"github.com/rbright/netscreen/internal/indicator"
	"github.com/rbright/netscreen/internal/version"
)

const clientBinary = "netscreen"

// Client runs netscreen. Zero-value hooks use the real implementations.
type Client struct {
	Stdout io.Writer
	Stderr io.Writer

	Open func(backend string, selectArgv []string) (display.Enumerator, error)
	Run  func(ctx context.Context, argv []string, stdout, stderr io.Writer) error
	Kill func(ctx context.Context, argv []string) ([]int32, error)

	// Indicator builds the notifier for the resolved backend.
	Indicator func(cfg config.IndicatorConfig, backend string) indicator.Controller
}

func ExecuteClient(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := Client{Stdout: stdout, Stderr: stderr}
	return c.Execute(ctx, args)
}

func (c Client) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.ParseClient(args)
	if err != nil {
		return usageError(c.Stderr, err, cli.ClientHelpText(clientBinary))
	}

	switch parsed.Mode {
	case cli.ModeHelp:
		fmt.Fprint(c.Stdout, cli.ClientHelpText(clientBinary))
		return 0
	case cli.ModeVersion:
		fmt.Fprintln(c.Stdout, version.String(clientBinary))
		return 0
	}

	loaded, err := loadConfig(parsed.ConfigPath, c.Stderr, nil)
	if err != nil {
		fmt.Fprintf(c.Stderr, "error: %v\n", err)
		return 1
	}
	cfg := loaded.Config

	backend := parsed.Backend
	if backend == "" {
		backend = cfg.Capture.Backend
	}

	if parsed.Mode == cli.ModeDoctor {
		resolved, _ := display.ResolveBackend(backend)
		report := doctor.RunClient(loaded, resolved)
		fmt.Fprintln(c.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	}

	open := c.Open
	if open == nil {
		open = display.Open
	}
	enum, err := open(backend, cfg.Capture.Select.Argv)
	if err != nil {
		return c.fail(err)
	}
	defer func() { _ = enum.Close() }()

	switch parsed.Source {
	case cli.SourceListMonitors:
		layout, err := enum.Monitors(ctx)
		if err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.Stdout, display.FormatMonitors(layout))
		return 0
	case cli.SourceListWindows:
		windows, err := enum.Windows(ctx)
		if err != nil {
			return c.fail(err)
		}
		fmt.Fprintln(c.Stdout, display.FormatWindows(windows))
		return 0
	}

	target, err := display.Resolve(ctx, enum, parsed.Source)
	if err != nil {
		return c.fail(err)
	}

	opts := capture.OptionsFromConfig(cfg.Capture, parsed.IP, parsed.Port)
	opts.HideCursor = parsed.HideCursor
	opts.Verbose = parsed.Verbose
	argv := capture.Command(target, opts)

	if parsed.Mode == cli.ModeKill {
		return c.commandKill(ctx, argv)
	}
	return c.commandRun(ctx, cfg.Indicator, target, argv, opts)
}

func (c Client) commandKill(ctx context.Context, argv []string) int {
	kill := c.Kill
	if kill == nil {
		kill = capture.Kill
	}

	fmt.Fprintln(c.Stdout, "[+] killing running netscreen")
	pids, err := kill(ctx, argv)
	for _, pid := range pids {
		fmt.Fprintf(c.Stdout, "[+] terminated process %d\n", pid)
	}
	if err != nil {
		fmt.Fprintf(c.Stderr, "error: %v\n", err)
		return 1
	}
	if len(pids) == 0 {
		fmt.Fprintf(c.Stdout, "[+] no running capture matches '%s'\n", shellescape.QuoteCommand(argv))
	}
	return 0
}

func (c Client) commandRun(
	ctx context.Context,
	indicatorCfg config.IndicatorConfig,
	target display.Target,
	argv []string,
	opts capture.Options,
) int {
	run := c.Run
	if run == nil {
		run = capture.Run
	}
	newIndicator := c.Indicator
	if newIndicator == nil {
		newIndicator = func(cfg config.IndicatorConfig, backend string) indicator.Controller {
			return indicator.New(cfg, backend, nil)
		}
	}
	ind := newIndicator(indicatorCfg, target.Backend)
	defer ind.Close()

	fmt.Fprintf(c.Stdout, "[+] running '%s'\n", shellescape.QuoteCommand(argv))
	ind.ShowStreaming(ctx, net.JoinHostPort(opts.IP, strconv.Itoa(opts.Port)))

	err := run(ctx, argv, c.Stdout, c.Stderr)
	after := context.WithoutCancel(ctx)
	if err != nil {
		ind.ShowError(after, fmt.Sprintf("%s: %v", argv[0], err))
		fmt.Fprintf(c.Stderr, "error: %s: %v\n", argv[0], err)
		return 1
	}
	ind.ShowStopped(after)
	return 0
}

// fail prints err (and the alternatives for lookup failures) and maps it to
// an exit code.
func (c Client) fail(err error) int {
	fmt.Fprintf(c.Stderr, "error: %v\n", err)

	var lookup *display.LookupError
	if errors.As(err, &lookup) && lookup.Listing != "" {
		fmt.Fprintln(c.Stderr, lookup.Listing)
	}

	switch {
	case errors.Is(err, display.ErrPrimaryNotFound):
		return 3
	case errors.Is(err, display.ErrWindowNotFound),
		errors.Is(err, display.ErrSelectUnsupported),
		errors.Is(err, display.ErrSelectionCancelled),
		errors.Is(err, display.ErrNoFocusedWindow):
		return 2
	default:
		return 1
	}
}
