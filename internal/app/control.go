package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/netscreen/internal/ipc"
	"github.com/rbright/netscreen/internal/supervisor"
	"github.com/rbright/netscreen/internal/web"
)

// controlHandler answers control socket requests from netscreend -s / -r.
func controlHandler(source web.Source, playback web.Playback, logger *slog.Logger) ipc.Handler {
	return ipc.HandlerFunc(func(ctx context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case ipc.CommandStatus:
			snap := source.Snapshot()
			return ipc.Response{
				OK:       true,
				State:    string(snap.State),
				Client:   snap.ClientAddress,
				Listen:   supervisor.ListenURL(snap.Protocol, snap.ListenAddress, snap.ListenPort),
				Since:    snap.Since.Format(time.RFC3339),
				Restarts: playback.Restarts(),
			}
		case ipc.CommandRestart:
			logger.Info("playback restart requested", "via", "control socket")
			if err := playback.RestartPlayback(ctx); err != nil {
				logger.Error("restart playback failed", "error", err.Error())
				return ipc.Response{OK: false, Error: err.Error()}
			}
			return ipc.Response{OK: true, Message: "playback restarted"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	})
}
