package display

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/require"
)

func TestDecodeWindowList(t *testing.T) {
	value := []byte{0x03, 0x00, 0xa0, 0x01, 0x2a, 0x00, 0x00, 0x00, 0xff}
	require.Equal(t, []xproto.Window{0x1a00003, 42}, decodeWindowList(32, value))
	require.Nil(t, decodeWindowList(8, value))
}

func TestDecodeWMClass(t *testing.T) {
	require.Equal(t, "Firefox", decodeWMClass([]byte("Navigator\x00Firefox\x00")))
	require.Equal(t, "kitty", decodeWMClass([]byte("kitty")))
	require.Equal(t, "", decodeWMClass(nil))
}

func TestRunSelectCommand(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "pick-ok"), "echo 27262979")
	writeScript(t, filepath.Join(dir, "pick-cancel"), "exit 1")
	writeScript(t, filepath.Join(dir, "pick-garbage"), "echo nope")
	writeScript(t, filepath.Join(dir, "pick-fail"), "echo 'cannot grab pointer' >&2\nexit 1")
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	id, err := runSelectCommand(context.Background(), []string{"pick-ok"})
	require.NoError(t, err)
	require.Equal(t, uint64(27262979), id)

	_, err = runSelectCommand(context.Background(), []string{"pick-cancel"})
	require.ErrorIs(t, err, ErrSelectionCancelled)

	_, err = runSelectCommand(context.Background(), []string{"pick-garbage"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid window id")

	_, err = runSelectCommand(context.Background(), []string{"pick-fail"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot grab pointer")

	_, err = runSelectCommand(context.Background(), nil)
	require.ErrorIs(t, err, ErrSelectUnsupported)
}

func TestResolveBackend(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("DISPLAY", "")
	_, err := ResolveBackend("auto")
	require.ErrorIs(t, err, ErrNoDisplay)
	_, err = ResolveBackend("x11")
	require.ErrorIs(t, err, ErrNoDisplay)

	t.Setenv("DISPLAY", ":1")
	backend, err := ResolveBackend("")
	require.NoError(t, err)
	require.Equal(t, "x11", backend)
	_, err = ResolveBackend("hypr")
	require.ErrorIs(t, err, ErrNoDisplay)

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "sig")
	backend, err = ResolveBackend("auto")
	require.NoError(t, err)
	require.Equal(t, "hypr", backend)
	backend, err = ResolveBackend("x11")
	require.NoError(t, err)
	require.Equal(t, "x11", backend)

	_, err = ResolveBackend("wayland")
	require.Error(t, err)
}

func writeScript(t *testing.T, path string, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
}
