package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
)

type DeleteProviderResponse struct {
	ID               string `json:"id"`
	OrphanedBookings int    `json:"orphaned_bookings"`
}

// GET /api/providers
func (s *HTTPServer) handleListProviders(w http.ResponseWriter, _ *http.Request) {
	metrics.IncHTTP("providers_list")
	writeJSON(w, http.StatusOK, s.deps.Providers.List())
}

// POST /api/providers
func (s *HTTPServer) handleSaveProvider(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("providers_save")

	var req models.Provider
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := s.deps.Providers.Save(r.Context(), sessionFrom(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DELETE /api/providers/{id}
func (s *HTTPServer) handleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("providers_delete")

	id := mux.Vars(r)["id"]
	orphaned, err := s.deps.Providers.Delete(r.Context(), sessionFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteProviderResponse{ID: id, OrphanedBookings: orphaned})
}
