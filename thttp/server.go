package thttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/must/v2"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

// drainTimeout bounds how long Run waits for running handlers after ctx closes
const drainTimeout = 5 * time.Second

// Server serves HTTP requests on a listener for as long as its context is open
type Server struct {
	listener net.Listener
	handler  http.Handler
	inFlight sync.WaitGroup
}

// NewServer creates a Server
func NewServer(listener net.Listener, handler http.Handler) *Server {
	return &Server{
		listener: listener,
		handler:  handler,
	}
}

type panicKeyType int

const panicKey panicKeyType = iota

// Run accepts requests until ctx is closed and then drains them.
//
// Closing ctx stops the listener at once. Handlers that are still running
// keep their request contexts and get drainTimeout to finish.
//
// The result is ctx.Err() after a drain, parallel.ErrPanic when a handler
// under Recover panicked, or the error that stopped Serve.
func (s *Server) Run(ctx context.Context) error {
	ctx = tlog.With(ctx, zap.Stringer("httpServer", s.listener.Addr()))
	panics := make(chan error, 1)
	ctx = context.WithValue(ctx, panicKey, panics)

	// detached from ctx, see drain
	reqCtx, stopRequests := context.WithCancel(context.WithoutCancel(ctx))
	defer stopRequests()

	hs := &http.Server{
		Handler:     s.track(s.handler),
		ErrorLog:    must.OK1(zap.NewStdLogAt(tlog.Get(ctx), zap.WarnLevel)),
		BaseContext: func(net.Listener) context.Context { return reqCtx },
		ConnContext: connContext,
	}
	defer hs.Close()

	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("serve", parallel.Fail, func(ctx context.Context) error {
			return s.accept(ctx, hs)
		})
		spawn("panics", parallel.Fail, func(ctx context.Context) error {
			return firstPanic(ctx, panics)
		})
		spawn("drain", parallel.Fail, func(ctx context.Context) error {
			return s.drain(ctx, hs)
		})
		return nil
	})
}

func (s *Server) accept(ctx context.Context, hs *http.Server) error {
	tlog.Get(ctx).Info("Serving requests")
	err := hs.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) && ctx.Err() != nil {
		// closed by drain
		return ctx.Err()
	}
	return err
}

func firstPanic(ctx context.Context, panics <-chan error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-panics:
		return err
	}
}

// drain waits for ctx, closes the listener and idle connections, then waits
// for every tracked handler
func (s *Server) drain(ctx context.Context, hs *http.Server) error {
	<-ctx.Done()
	logger := tlog.Get(ctx)
	logger.Info("Shutting down")

	deadline, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()

	// Shutdown only fails without hitting the deadline when the listener is
	// already closed
	if err := hs.Shutdown(deadline); err != nil && deadline.Err() != nil {
		logger.Warn("Requests still running after drain timeout", zap.Error(err))
		return err
	}
	s.inFlight.Wait()

	logger.Info("Shutdown complete")
	return ctx.Err()
}

// ListenAddr returns the local address of the server's listener
func (s *Server) ListenAddr() net.Addr {
	return s.listener.Addr()
}

func connContext(ctx context.Context, conn net.Conn) context.Context {
	return tlog.With(ctx, zap.Stringer("remoteAddr", conn.RemoteAddr()))
}

// track counts running handlers for drain. Run installs it outermost.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.inFlight.Add(1)
		defer s.inFlight.Done()
		next.ServeHTTP(w, r)
	})
}

// Middleware wraps an http.Handler with extra processing
type Middleware = func(http.Handler) http.Handler

// Wrap installs a number of middleware on HTTP handler. The first
// middleware listed will be the first one to see the request.
func Wrap(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// StandardMiddleware is the composition installed by every program in this
// module, in order:
//
// 1. Log (log before and after the request)
// 2. Recover (catch and log panic, then shut down the server)
func StandardMiddleware(next http.Handler) http.Handler {
	return Log(Recover(next))
}
