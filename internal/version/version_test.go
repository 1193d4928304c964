package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringIncludesBuildMetadata(t *testing.T) {
	originalVersion := Version
	originalCommit := Commit
	originalDate := Date
	t.Cleanup(func() {
		Version = originalVersion
		Commit = originalCommit
		Date = originalDate
	})

	Version = "0.4.0"
	Commit = "9f1c2ab"
	Date = "2026-10-18"

	got := String("netscreend")
	require.Contains(t, got, "netscreend 0.4.0")
	require.Contains(t, got, "commit=9f1c2ab")
	require.Contains(t, got, "date=2026-10-18")
	require.Contains(t, got, "go=")
}
