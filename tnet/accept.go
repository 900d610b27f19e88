package tnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

// ConnHandler processes a single accepted connection. The connection is
// closed by AcceptLoop once the handler returns.
type ConnHandler func(ctx context.Context, conn net.Conn)

// AcceptLoop accepts connections on listener until the context is closed,
// running handle for each one on its own goroutine so that a slow client
// cannot hold up the others.
//
// On shutdown the listener is closed and AcceptLoop waits for running handlers
// before returning ctx.Err().
func AcceptLoop(ctx context.Context, listener net.Listener, handle ConnHandler) error {
	ctx = tlog.With(ctx, zap.Stringer("tcpServer", listener.Addr()))
	logger := tlog.Get(ctx)

	var running sync.WaitGroup
	defer running.Wait()

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("accept", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Accepting connections")
			for {
				conn, err := listener.Accept()
				if err != nil {
					if ctx.Err() != nil && errors.Is(err, net.ErrClosed) {
						return ctx.Err()
					}
					return fmt.Errorf("accept failed: %w", err)
				}

				connCtx := tlog.With(ctx, zap.Stringer("remoteAddr", conn.RemoteAddr()))
				running.Add(1)
				go func() {
					defer running.Done()
					defer conn.Close()
					handle(connCtx, conn)
				}()
			}
		})

		spawn("closer", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")
			_ = listener.Close()
			return ctx.Err()
		})

		return nil
	})
}
