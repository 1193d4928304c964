// Package capture builds encoder command lines for a resolved display target,
// runs them, and terminates running encoders by command-line signature.
package capture

import (
	"fmt"
	"net"
	"strconv"

	"github.com/rbright/netscreen/internal/config"
	"github.com/rbright/netscreen/internal/display"
)

// Options are the per-invocation encoder settings.
type Options struct {
	IP         string
	Port       int
	HideCursor bool
	Verbose    bool
	Framerate  int
	Preset     string
	BufSize    string
}

// OptionsFromConfig seeds encoder settings from the capture config section.
func OptionsFromConfig(cfg config.CaptureConfig, ip string, port int) Options {
	return Options{
		IP:        ip,
		Port:      port,
		Framerate: cfg.Framerate,
		Preset:    cfg.Preset,
		BufSize:   cfg.BufSize,
	}
}

func (o Options) destination() string {
	return "tcp://" + net.JoinHostPort(o.IP, strconv.Itoa(o.Port))
}

func (o Options) loglevel() string {
	if o.Verbose {
		return "verbose"
	}
	return "error"
}

// Command returns the encoder argv for target. The same inputs always produce
// the same argv, which is what Kill matches on.
func Command(target display.Target, opts Options) []string {
	if target.Backend == config.BackendHypr {
		return wfRecorderArgv(target, opts)
	}
	if target.Window != nil {
		return gstreamerArgv(*target.Window, opts)
	}
	return ffmpegArgv(target.Display, target.Monitor, opts)
}

func ffmpegArgv(displayName string, monitor display.Monitor, opts Options) []string {
	argv := []string{"ffmpeg", "-y", "-loglevel", opts.loglevel(), "-f", "x11grab"}
	if opts.HideCursor {
		argv = append(argv, "-draw_mouse", "0")
	}
	keyint := strconv.Itoa(opts.Framerate)
	return append(argv,
		"-video_size", fmt.Sprintf("%dx%d", monitor.Width, monitor.Height),
		"-framerate", keyint,
		"-i", fmt.Sprintf("%s+%d,%d", displayName, monitor.X, monitor.Y),
		"-vcodec", "h264",
		"-tune", "zerolatency",
		"-preset", opts.Preset,
		"-pix_fmt", "yuv420p",
		"-vprofile", "main",
		"-x264opts", fmt.Sprintf("keyint=%s:min-keyint=%s", keyint, keyint),
		"-bufsize", opts.BufSize,
		"-f", "mpegts",
		opts.destination(),
	)
}

func gstreamerArgv(window display.Window, opts Options) []string {
	argv := []string{"gst-launch-1.0"}
	if !opts.Verbose {
		argv = append(argv, "-q")
	}
	return append(argv,
		"ximagesrc",
		fmt.Sprintf("xid=0x%x", window.ID),
		"use-damage=false",
		"show-pointer="+strconv.FormatBool(!opts.HideCursor),
		"!", fmt.Sprintf("video/x-raw,framerate=%d/1", opts.Framerate),
		"!", "videoconvert",
		"!", "x264enc", "tune=zerolatency", "speed-preset="+opts.Preset, fmt.Sprintf("key-int-max=%d", opts.Framerate),
		"!", "video/x-h264,profile=main",
		"!", "mpegtsmux",
		"!", "tcpclientsink", "host="+opts.IP, fmt.Sprintf("port=%d", opts.Port),
	)
}

func wfRecorderArgv(target display.Target, opts Options) []string {
	argv := []string{"wf-recorder", "-y"}
	if target.Window != nil {
		w := target.Window
		argv = append(argv, "-g", fmt.Sprintf("%d,%d %dx%d", w.X, w.Y, w.Width, w.Height))
	} else {
		argv = append(argv, "-o", target.Monitor.Name)
	}
	return append(argv,
		"-c", "libx264",
		"-p", "preset="+opts.Preset,
		"-p", "tune=zerolatency",
		"-x", "yuv420p",
		"-r", strconv.Itoa(opts.Framerate),
		"-m", "mpegts",
		"-f", opts.destination(),
	)
}
