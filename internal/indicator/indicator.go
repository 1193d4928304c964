// Package indicator shows desktop notifications and plays audio cues while
// netscreen streams.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/hypr"
)

const (
	streamingTimeoutMS = 5000
	stoppedTimeoutMS   = 2000
	defaultErrorMS     = 3000
)

// Controller is the capture-facing indicator contract.
type Controller interface {
	ShowStreaming(ctx context.Context, destination string)
	ShowStopped(ctx context.Context)
	ShowError(ctx context.Context, text string)
	Close()
}

// Notifier routes notifications to Hyprland (hyprctl notify) or to the
// freedesktop notification service (busctl), following the display backend.
type Notifier struct {
	cfg     config.IndicatorConfig
	backend string
	logger  *slog.Logger

	mu                    sync.Mutex
	desktopNotificationID uint32
	soundMu               sync.Mutex
	cues                  sync.WaitGroup
}

// New creates a Notifier for the resolved display backend.
func New(cfg config.IndicatorConfig, backend string, logger *slog.Logger) *Notifier {
	return &Notifier{cfg: cfg, backend: backend, logger: logger}
}

// ShowStreaming announces the capture destination and plays the start cue.
func (n *Notifier) ShowStreaming(ctx context.Context, destination string) {
	n.playCue(ctx, cueStart)
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 1, streamingTimeoutMS, "rgb(a6e3a1)", "netscreen: streaming to "+destination)
	})
}

// ShowStopped replaces the streaming notification and plays the stop cue.
func (n *Notifier) ShowStopped(ctx context.Context) {
	n.playCue(ctx, cueStop)
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 1, stoppedTimeoutMS, "rgb(89b4fa)", "netscreen: stream stopped")
	})
}

// ShowError displays an encoder failure.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	n.playCue(ctx, cueError)
	if !n.cfg.Enable {
		return
	}
	if strings.TrimSpace(text) == "" {
		text = "capture failed"
	}
	timeout := n.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = defaultErrorMS
	}
	n.run(ctx, n.dismiss)
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 3, timeout, "rgb(f38ba8)", "netscreen: "+text)
	})
}

// Close waits for queued audio cues.
func (n *Notifier) Close() {
	n.cues.Wait()
}

func (n *Notifier) desktop() bool {
	return n.backend != config.BackendHypr
}

func (n *Notifier) notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if n.desktop() {
		return n.notifyDesktop(ctx, timeoutMS, text)
	}
	return hypr.Notify(ctx, icon, timeoutMS, color, text)
}

func (n *Notifier) dismiss(ctx context.Context) error {
	if n.desktop() {
		return n.dismissDesktop(ctx)
	}
	return hypr.DismissNotify(ctx)
}

// notifyDesktop sends a replaceable desktop notification and stores its ID.
func (n *Notifier) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	id, err := desktopNotify(ctx, n.cfg.DesktopAppName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes one dispatch with a bounded timeout. Failures are debug-only.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(ctx context.Context, kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	n.cues.Add(1)
	go func() {
		defer n.cues.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()
		if err := emitCue(ctx, kind); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}
