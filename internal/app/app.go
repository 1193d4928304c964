// Package app runs the netscreend and netscreen command lines and maps
// outcomes to process exit codes.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/netscreen/internal/config"
)

// loadConfig loads the config and prints its warnings to stderr.
func loadConfig(explicitPath string, stderr io.Writer, logger *slog.Logger) (config.Loaded, error) {
	loaded, err := config.Load(explicitPath)
	if err != nil {
		return config.Loaded{}, err
	}

	for _, w := range loaded.Warnings {
		if logger != nil {
			logger.Warn("config warning", "line", w.Line, "message", w.Message)
		}
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(stderr, "warning: %s\n", msg)
	}
	return loaded, nil
}

func usageError(stderr io.Writer, err error, help string) int {
	fmt.Fprintf(stderr, "error: %v\n\n", err)
	fmt.Fprint(stderr, help)
	return 2
}
