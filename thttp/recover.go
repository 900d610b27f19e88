package thttp

import (
	"net/http"
	"runtime/debug"

	"github.com/ridge/hellohttp/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

// serve runs the handler in the current goroutine and converts a panic into
// parallel.ErrPanic carrying the stack of the panic location
func serve(next http.Handler, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = parallel.ErrPanic{Value: p, Stack: debug.Stack()}
		}
	}()
	next.ServeHTTP(w, r)
	return nil
}

// Recover is a middleware that catches panics from HTTP handlers.
//
// The client gets a bare 500. When running under Server, the panic is
// reported to it and the server shuts down with the panic as its error.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := serve(next, w, r)
		if err == nil {
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		panicChan, ok := r.Context().Value(panicKey).(chan error)
		if !ok {
			if logger, ok := tlog.Lookup(r.Context()); ok {
				logger.Error("Panic in HTTP handler", zap.Error(err))
			}
			return
		}
		select {
		case panicChan <- err:
		default:
		}
	})
}
