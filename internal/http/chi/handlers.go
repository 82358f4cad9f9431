package chi

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"

	"github.com/marcelsud/attendance-relay/attendance"
)

const requestTimeout = 30 * time.Second

// Options configures the router
type Options struct {
	Logger      zerolog.Logger
	Dev         bool         // expose error details in 500 responses
	RecentLimit int          // size of the recent activity feed
	Metrics     http.Handler // Optional: served on /metrics
}

// Handlers sets up the attendance API routes
func Handlers(ctx context.Context, attendanceService attendance.UseCase, opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(opts.Logger))
	r.Use(recoverer(opts.Logger, opts.Dev))
	r.Use(middleware.Timeout(requestTimeout))

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Endpoint not found"})
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/health", getHealth().ServeHTTP)

	r.Method(http.MethodPost, "/attendance", postAttendance(attendanceService, 0, opts.Dev))
	r.Method(http.MethodPost, "/login", postAttendance(attendanceService, attendance.Login, opts.Dev))
	r.Method(http.MethodPost, "/logout", postAttendance(attendanceService, attendance.Logout, opts.Dev))
	r.Method(http.MethodGet, "/status/{jobId}", getStatus(attendanceService, opts.Dev))
	r.Method(http.MethodGet, "/recent-activities", getRecentActivities(attendanceService, opts.RecentLimit, opts.Dev))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	return r
}

// recoverer turns a panic into a JSON 500 instead of a dropped connection.
// A response that has already started is left as is.
func recoverer(logger zerolog.Logger, dev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error().
					Interface("panic", rvr).
					Str("path", r.URL.Path).
					Bool("response_started", ww.Status() != 0).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				if ww.Status() != 0 {
					return
				}
				writeInternalError(ww, fmt.Errorf("%v", rvr), dev)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
