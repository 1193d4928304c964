// Package main provides the netscreen capture client entrypoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/netscreen/internal/app"
)

// main cancels the running encoder on SIGINT/SIGTERM.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := app.ExecuteClient(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
