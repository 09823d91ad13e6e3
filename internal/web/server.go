// Package web serves the booking form, its JSON API and the staff pages.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/D0mbrowski/Site-Camping/internal/auth"
	"github.com/D0mbrowski/Site-Camping/internal/chatlink"
	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/pricing"
	"github.com/D0mbrowski/Site-Camping/internal/requests"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

//go:embed templates/*.html static/*
var fs embed.FS

// Blocker answers availability lookups for the stateless API.
type Blocker interface {
	Blocked(ctx context.Context, cabin string) ([]reservations.BlockedInterval, error)
}

type Server struct {
	Sessions     *Sessions
	Availability Blocker
	Rates        pricing.Rates
	Cabins       []string
	Location     *time.Location
	Logger       *logging.Logger

	// Auth and Requests are nil when no database is configured; the staff
	// pages are not mounted then.
	Auth     *auth.Store
	Requests *requests.Repo

	Metrics http.Handler
	// BaseURL is the public origin, used for canonical links.
	BaseURL string
}

type tmplData struct {
	Title     string
	User      int64
	Flash     string
	Canonical string

	Cabins     []string
	Booking    widget.Snapshot
	CheckIn    string
	CheckOut   string
	Submission *widget.Submission

	Requests []requests.Request
}

func (s *Server) Routes() http.Handler {
	if s.Logger == nil {
		s.Logger = logging.Default()
	}
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.Rates == (pricing.Rates{}) {
		s.Rates = pricing.DefaultRates()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.Logger))

	r.Handle("/static/*", http.FileServer(http.FS(fs)))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Get("/", s.handleHome)
	r.Post("/booking", s.handleBookingForm)

	r.Route("/api", func(r chi.Router) {
		r.Get("/booking", s.handleBookingState)
		r.Post("/booking/cabin", s.handleBookingCabin)
		r.Post("/booking/guests", s.handleBookingGuests)
		r.Post("/booking/dates", s.handleBookingDates)
		r.Post("/booking/submit", s.handleBookingSubmit)
		r.Get("/cabins/{cabin}/blocked", s.handleBlocked)
		r.Get("/quote", s.handleQuote)
	})

	if s.Auth != nil && s.Requests != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Get("/login", s.handleLoginPage)
			r.Post("/login", s.handleLogin)
			r.Get("/logout", s.handleLogout)
			r.With(s.Auth.RequireAuth).Get("/requests", s.handleRequests)
		})
	}

	return r
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.New("").Funcs(template.FuncMap{
		"ddmmyyyy": chatlink.FormatDate,
	}).ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Logger.Error("render failed", "error", err, "template", name)
	}
}

// Start serves h on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, h http.Handler, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
