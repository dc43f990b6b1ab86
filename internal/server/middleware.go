package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rewired-gh/broadway/internal/logger"
	"github.com/rewired-gh/broadway/internal/metrics"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID reuses an incoming X-Request-ID or assigns a new one.
func RequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// Recover turns a handler panic into a 500 response.
func Recover(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Get().Error().
					Str("request_id", RequestIDFromContext(r.Context())).
					Str("path", r.URL.Path).
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		h.ServeHTTP(w, r)
	})
}

// LogRequest logs every request at debug level.
func LogRequest(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !logger.Enabled(logger.DebugLevel) {
			h.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		lrw := &statusResponseWriter{ResponseWriter: w}
		h.ServeHTTP(lrw, r)
		logger.Get().Debug().
			Str("request_id", RequestIDFromContext(r.Context())).
			Str("method", r.Method).
			Int("status", lrw.Status()).
			Str("path", r.URL.Path).
			Str("addr", r.RemoteAddr).
			Str("duration", time.Since(start).String()).
			Msg("http request")
	})
}

// Instrument counts requests by route pattern, method and status.
func Instrument(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &statusResponseWriter{ResponseWriter: w}
			h.ServeHTTP(rw, r)
			// The mux fills in Pattern on the shared request.
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			reg.HTTPRequest(path, r.Method, strconv.Itoa(rw.Status()))
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader allows us to save status code.
func (w *statusResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status code, 200 if none was written.
func (w *statusResponseWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
