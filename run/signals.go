package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ridge/hellohttp/tlog"
	"go.uber.org/zap"
)

// ShutdownMessage is printed to standard output when SIGINT arrives
const ShutdownMessage = "signal shutdown"

func handleSignals(ctx context.Context) error {
	return watchInterrupt(ctx, os.Stdout)
}

// watchInterrupt subscribes to SIGINT for as long as it runs
func watchInterrupt(ctx context.Context, out io.Writer) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)
	// Once this returns, a second SIGINT gets the default disposition and
	// kills the process without waiting for the drain
	defer signal.Stop(signals)

	return awaitInterrupt(ctx, signals, out)
}

// awaitInterrupt blocks until a signal arrives on signals, announces it on out
// and returns nil so that the top-level group shuts down
func awaitInterrupt(ctx context.Context, signals <-chan os.Signal, out io.Writer) error {
	select {
	case sig := <-signals:
		tlog.Get(ctx).Info("Received signal, shutting down", zap.Stringer("signal", sig))
		if _, err := fmt.Fprintln(out, ShutdownMessage); err != nil {
			tlog.Get(ctx).Warn("Failed to print shutdown message", zap.Error(err))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
