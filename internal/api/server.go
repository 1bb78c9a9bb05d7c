// Package api exposes the operator JSON API.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"zencontrol/internal/access"
	"zencontrol/internal/catalog"
	"zencontrol/internal/lifecycle"
	"zencontrol/internal/mirror"
	"zencontrol/internal/report"
	"zencontrol/internal/service"
)

const sessionHeader = "X-Session-Token"

// Deps are the components served by the API.
type Deps struct {
	Gate      *access.Gate
	Sessions  *access.SessionStore
	Catalog   *catalog.Catalog
	Bookings  *service.BookingService
	Providers *service.ProviderService
	Reports   *report.Generator
	Policy    *lifecycle.Policy
	Syncer    *mirror.Syncer
}

type HTTPServer struct {
	deps   Deps
	server *http.Server
	logger zerolog.Logger
	now    func() time.Time
}

func NewHTTPServer(port int, deps Deps, logger zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		deps:   deps,
		logger: logger.With().Str("component", "api").Logger(),
		now:    time.Now,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.authenticate)

	protected.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	protected.HandleFunc("/bookings", s.handleListBookings).Methods(http.MethodGet)
	protected.HandleFunc("/bookings", s.handleSaveBooking).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{id}", s.handleDeleteBooking).Methods(http.MethodDelete)
	protected.HandleFunc("/bookings/{id}/status", s.handleToggleStatus).Methods(http.MethodPatch)

	protected.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)
	protected.HandleFunc("/tasks", s.handleTasks).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)

	protected.HandleFunc("/providers", s.handleListProviders).Methods(http.MethodGet)
	protected.HandleFunc("/providers", s.handleSaveProvider).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{id}", s.handleDeleteProvider).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{id}/slots", s.handleFreeSlots).Methods(http.MethodGet)

	protected.HandleFunc("/reports/closing", s.handleClosingReport).Methods(http.MethodPost)

	protected.HandleFunc("/lifecycle", s.handleLifecycleStatus).Methods(http.MethodGet)
	protected.HandleFunc("/lifecycle/decision", s.handleLifecycleDecision).Methods(http.MethodPost)
	protected.HandleFunc("/lifecycle/back", s.handleLifecycleBack).Methods(http.MethodPost)
	protected.HandleFunc("/lifecycle/confirm", s.handleLifecycleConfirm).Methods(http.MethodPost)

	protected.HandleFunc("/sync", s.handleSyncState).Methods(http.MethodGet)
	protected.HandleFunc("/sync", s.handleSyncNow).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
