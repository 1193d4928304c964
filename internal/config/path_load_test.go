package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "netscreen", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "netscreen", "config.jsonc"), resolved)
}

func TestLoadMissingExplicitConfigWarns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.True(t, loaded.Explicit)
	require.Equal(t, Default(), loaded.Config)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadMissingImplicitConfigIsSilent(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	loaded, err := Load("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "netscreen", "config.jsonc"), loaded.Path)
	require.False(t, loaded.Exists)
	require.False(t, loaded.Explicit)
	require.Equal(t, Default(), loaded.Config)
	require.Empty(t, loaded.Warnings)
}

func TestLoadImplicitConfigReportsWarnings(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	dir := filepath.Join(xdg, "netscreen")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(`{"capture": {"preset": "medium"}}`), 0o600))

	loaded, err := Load("")
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.False(t, loaded.Explicit)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, "latency")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  // receiver
  "daemon": {
    "tmux_session": "screens",
    "poll_interval_ms": 250,
    "playback_cmd": "mpv --no-cache",
  },
  /* sender */
  "capture": {
    "backend": "hypr",
    "framerate": 30
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, "screens", loaded.Config.Daemon.TmuxSession)
	require.Equal(t, 250*time.Millisecond, loaded.Config.Daemon.PollInterval)
	require.Equal(t, []string{"mpv", "--no-cache"}, loaded.Config.Daemon.Playback.Argv)
	require.Equal(t, BackendHypr, loaded.Config.Capture.Backend)
	require.Equal(t, 30, loaded.Config.Capture.Framerate)
	require.Equal(t, Default().Daemon.PIDFile, loaded.Config.Daemon.PIDFile)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
