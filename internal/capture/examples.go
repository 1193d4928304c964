package capture

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/rbright/netscreen/internal/display"
)

// Example is one copy-pasteable sender invocation shown on the status page.
type Example struct {
	Platform string
	Tool     string
	Prompt   string
	Lines    []string
}

// Examples returns sender invocations targeting a daemon at ip:port.
func Examples(ip string, port int) []Example {
	opts := Options{IP: ip, Port: port, Framerate: 25, Preset: "ultrafast", BufSize: "500k"}
	monitor := display.Monitor{Width: 1920, Height: 1080}
	ffmpeg := shellescape.QuoteCommand(ffmpegArgv(":0.0", monitor, opts))

	return []Example{
		{
			Platform: "Linux",
			Tool:     "netscreen",
			Prompt:   "$",
			Lines: []string{
				fmt.Sprintf("netscreen %s %d", ip, port),
				fmt.Sprintf("netscreen %s %d HDMI-1", ip, port),
				fmt.Sprintf("netscreen %s %d list-mon", ip, port),
				fmt.Sprintf("netscreen %s %d select", ip, port),
			},
		},
		{
			Platform: "Linux",
			Tool:     "ffmpeg",
			Prompt:   "$",
			Lines:    []string{ffmpeg},
		},
		{
			Platform: "Windows",
			Tool:     "ffmpeg",
			Prompt:   ">",
			Lines: []string{strings.Join([]string{
				"ffmpeg -y -f gdigrab -framerate 30 -i desktop -r 25",
				`-vf "scale=1920x1080" -vcodec h264 -tune zerolatency -preset ultrafast`,
				"-pix_fmt yuv420p -vprofile main -x264opts keyint=25:min-keyint=25",
				"-bufsize 500k -f mpegts " + opts.destination(),
			}, " ")},
		},
	}
}
