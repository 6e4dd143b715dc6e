package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	// BookingRateLimit caps POST /bookings per client IP within
	// BookingRateWindow. Zero disables it.
	BookingRateLimit  int
	BookingRateWindow time.Duration
}

// NewRouter wires the booking endpoints together with health and metrics.
func NewRouter(h *BookingHandler, cfg RouterConfig, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/bookings", func(r chi.Router) {
		r.With(bookingRateLimit(cfg)).Post("/", h.CreateBooking)
		r.Get("/{id}", h.GetBooking)
		r.Post("/{id}/confirm", h.ConfirmBooking)
		r.Post("/{id}/cancel", h.CancelBooking)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Get("/occupancy", h.GetSessionOccupancy)
		r.Post("/close", h.CloseSession)
	})

	return r
}

func bookingRateLimit(cfg RouterConfig) func(http.Handler) http.Handler {
	if cfg.BookingRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	window := cfg.BookingRateWindow
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(
		cfg.BookingRateLimit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:   "rate_limit_exceeded",
				Message: "too many booking requests, please try again later",
			})
		}),
	)
}

// requestLogger writes one structured line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := log.Info()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
