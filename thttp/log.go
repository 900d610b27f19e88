package thttp

import (
	"net/http"
	"time"

	"github.com/ridge/hellohttp/tlog"
	"go.uber.org/zap"
)

// Log is a middleware that logs before and after handling of each request, at
// Debug level. Bodies are not logged.
//
// The request context passed down carries a logger with method, hostname and
// uri fields.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ctx := tlog.With(r.Context(),
			zap.String("method", r.Method),
			zap.String("hostname", r.Host),
			zap.String("uri", r.RequestURI),
		)
		logger := tlog.Get(ctx)
		logger.Debug("HTTP request handling started")
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r.WithContext(ctx))
		logger.Debug("HTTP request handling ended",
			zap.Int("statusCode", sw.Status()),
			zap.Int("bytes", sw.written),
			zap.Duration("elapsed", time.Since(started)))
	})
}

// statusWriter remembers the status code and body size of the response
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int
}

// Status returns the response status code, 200 if the handler never set it
// explicitly, or 0 if nothing was written at all
func (sw *statusWriter) Status() int {
	return sw.status
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	if sw.status == 0 {
		sw.status = statusCode
	}
	sw.ResponseWriter.WriteHeader(statusCode)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.written += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
