package display

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEnumerator struct {
	layout  Layout
	windows []Window
	focused Window
	picked  Window
	err     error
}

func (f *fakeEnumerator) Backend() string     { return "x11" }
func (f *fakeEnumerator) DisplayName() string { return ":0" }
func (f *fakeEnumerator) Close() error        { return nil }

func (f *fakeEnumerator) Monitors(context.Context) (Layout, error) {
	return f.layout, f.err
}

func (f *fakeEnumerator) Windows(context.Context) ([]Window, error) {
	return f.windows, f.err
}

func (f *fakeEnumerator) Focused(context.Context) (Window, error) {
	return f.focused, f.err
}

func (f *fakeEnumerator) Select(context.Context) (Window, error) {
	return f.picked, f.err
}

func sampleEnumerator() *fakeEnumerator {
	return &fakeEnumerator{
		layout: Layout{
			Active: []Monitor{
				{Name: "eDP-1", Width: 1920, Height: 1080},
				{Name: "HDMI-1", Width: 2560, Height: 1440, X: 1920, Primary: true},
			},
			Inactive: []string{"DP-1", "DP-2"},
		},
		windows: []Window{
			{ID: 0x1a00003, Class: "kitty", Title: "shell", Width: 800, Height: 600},
			{ID: 42, Class: "firefox", Title: "docs"},
		},
		focused: Window{ID: 42, Class: "firefox"},
		picked:  Window{ID: 0x1a00003, Class: "kitty"},
	}
}

func TestResolveDefaultsToPrimaryMonitor(t *testing.T) {
	target, err := Resolve(context.Background(), sampleEnumerator(), "")
	require.NoError(t, err)
	require.Nil(t, target.Window)
	require.Equal(t, "HDMI-1", target.Monitor.Name)
	require.Equal(t, ":0", target.Display)
	require.Equal(t, "x11", target.Backend)
}

func TestResolveNamedMonitor(t *testing.T) {
	target, err := Resolve(context.Background(), sampleEnumerator(), "eDP-1")
	require.NoError(t, err)
	require.Equal(t, "eDP-1", target.Monitor.Name)
}

func TestResolveWindowSources(t *testing.T) {
	tests := []struct {
		source string
		wantID uint64
	}{
		{source: "0x1a00003", wantID: 0x1a00003},
		{source: "42", wantID: 42},
		{source: SourceFocus, wantID: 42},
		{source: SourceSelect, wantID: 0x1a00003},
	}

	for _, tc := range tests {
		t.Run(tc.source, func(t *testing.T) {
			target, err := Resolve(context.Background(), sampleEnumerator(), tc.source)
			require.NoError(t, err)
			require.NotNil(t, target.Window)
			require.Equal(t, tc.wantID, target.Window.ID)
		})
	}
}

func TestResolveNotFoundCarriesListing(t *testing.T) {
	_, err := Resolve(context.Background(), sampleEnumerator(), "VGA-9")
	require.ErrorIs(t, err, ErrMonitorNotFound)
	var lookup *LookupError
	require.True(t, errors.As(err, &lookup))
	require.Equal(t, "monitor 'VGA-9' not found", err.Error())
	require.Contains(t, lookup.Listing, "HDMI-1: 2560x1440+1920+0 primary")

	_, err = Resolve(context.Background(), sampleEnumerator(), "0xdead")
	require.ErrorIs(t, err, ErrWindowNotFound)
	require.True(t, errors.As(err, &lookup))
	require.Equal(t, "window '0xdead' not found", err.Error())
	require.Contains(t, lookup.Listing, "0x1a00003")
}

func TestResolveWithoutPrimary(t *testing.T) {
	enum := sampleEnumerator()
	enum.layout.Active[1].Primary = false

	_, err := Resolve(context.Background(), enum, "")
	require.ErrorIs(t, err, ErrPrimaryNotFound)
	require.Equal(t, "primary monitor not found", err.Error())
}

func TestResolvePropagatesEnumeratorErrors(t *testing.T) {
	enum := sampleEnumerator()
	enum.err = ErrSelectUnsupported

	_, err := Resolve(context.Background(), enum, SourceSelect)
	require.ErrorIs(t, err, ErrSelectUnsupported)
}

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		raw    string
		want   uint64
		wantOK bool
	}{
		{raw: "123", want: 123, wantOK: true},
		{raw: "0x1F", want: 31, wantOK: true},
		{raw: "0X1f", want: 31, wantOK: true},
		{raw: "010", want: 10, wantOK: true},
		{raw: "HDMI-1", wantOK: false},
		{raw: "0x", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tc := range tests {
		got, ok := ParseWindowID(tc.raw)
		require.Equal(t, tc.wantOK, ok, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}
