// Package logger holds the registrar's zap logger and its HTTP access log.
package logger

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Log is the process-wide SugaredLogger. It must be initialized via Init().
var Log = zap.NewNop().Sugar()

// Init builds the global logger for the given level. The key-value pairs in
// fields are attached to every entry.
func Init(level string, fields ...interface{}) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = zl.Sugar().With(fields...)

	return nil
}

// Sync flushes any buffered log entries. Syncing a terminal stderr fails
// with EINVAL on some platforms; that is ignored.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// statusRecorder remembers what a handler answered.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.status = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}

// routePattern is the chi pattern that matched, e.g. /registrations/{userName}.
func routePattern(request *http.Request) string {
	routeCtx := chi.RouteContext(request.Context())
	if routeCtx == nil {
		return ""
	}
	return routeCtx.RoutePattern()
}

// WithLoggingHTTPMiddleware writes one access log entry per request.
// Server errors are logged at error level, everything else at info.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		h.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logFn := Log.Infow
		if rec.status >= http.StatusInternalServerError {
			logFn = Log.Errorw
		}
		logFn(
			"request served",
			"method", r.Method,
			"uri", r.RequestURI,
			"route", routePattern(r),
			"status", rec.status,
			"size", rec.bytes,
			"duration", time.Since(start),
		)
	})
}
