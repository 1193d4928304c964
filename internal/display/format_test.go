package display

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatMonitors(t *testing.T) {
	text := FormatMonitors(Layout{
		Active: []Monitor{
			{Name: "eDP-1", Width: 1920, Height: 1080},
			{Name: "HDMI-1", Width: 2560, Height: 1440, X: 1920, Y: 0, Primary: true},
		},
		Inactive: []string{"DP-1", "DP-2"},
	})

	require.Equal(t, "active monitors list:\n"+
		"    eDP-1: 1920x1080+0+0\n"+
		"    HDMI-1: 2560x1440+1920+0 primary\n"+
		"inactive monitors list:\n"+
		"    DP-1 DP-2", text)
}

func TestFormatMonitorsEmpty(t *testing.T) {
	require.Equal(t, "active monitors list:\n\ninactive monitors list:\n    ", FormatMonitors(Layout{}))
}

func TestFormatWindows(t *testing.T) {
	text := FormatWindows([]Window{{ID: 0x1a00003, Class: "kitty", Title: "shell", Width: 800, Height: 600, X: 10, Y: 20}})
	require.Equal(t, "windows list:\n    0x1a00003 800x600+10+20 kitty: shell", text)
}
