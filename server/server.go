// Package server runs an example router behind thttp.Server
package server

import (
	"context"
	"net"

	"github.com/ridge/hellohttp/route"
	"github.com/ridge/hellohttp/run"
	"github.com/ridge/hellohttp/thttp"
	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/hellohttp/tnet"
	"go.uber.org/zap"
)

// Config contains the server parameters
type Config struct {
	Listener net.Listener
	Router   *route.Router
	CORS     bool
}

// Main serves router on addr until SIGINT. The caller parses the command
// line first.
func Main(addr string, router *route.Router, cors bool) {
	run.Server(func(ctx context.Context) error {
		listener, err := tnet.Listen(addr)
		if err != nil {
			return err
		}

		return Run(ctx, Config{
			Listener: listener,
			Router:   router,
			CORS:     cors,
		})
	})
}

// Run serves requests until the context is closed
func Run(ctx context.Context, config Config) error {
	logger := tlog.Get(ctx)
	for _, key := range config.Router.Routes() {
		logger.Debug("Route", zap.Stringer("route", key))
	}

	mw := []thttp.Middleware{thttp.StandardMiddleware}
	if config.CORS {
		mw = append(mw, thttp.CORS)
	}
	return thttp.NewServer(config.Listener, thttp.Wrap(config.Router, mw...)).Run(ctx)
}
