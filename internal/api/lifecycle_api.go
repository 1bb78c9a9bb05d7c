package api

import (
	"net/http"

	"zencontrol/internal/access"
	"zencontrol/internal/metrics"
	"zencontrol/internal/mirror"
	"zencontrol/internal/report"
)

type DecisionRequest struct {
	GenerateReport bool `json:"generate_report"`
}

type SyncResponse struct {
	Enabled bool `json:"enabled"`
	mirror.State
}

// POST /api/reports/closing
func (s *HTTPServer) handleClosingReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reports_closing")

	var f report.Filter
	if err := decodeJSON(r, &f); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session := sessionFrom(r)
	if session.IsMasseur() {
		f.ProviderID = session.ProviderID
	}

	res, err := s.deps.Reports.Closing(f, s.deps.Bookings.List(session), s.deps.Providers.List())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/lifecycle
func (s *HTTPServer) handleLifecycleStatus(w http.ResponseWriter, _ *http.Request) {
	metrics.IncHTTP("lifecycle_status")
	writeJSON(w, http.StatusOK, s.deps.Policy.Status())
}

// POST /api/lifecycle/decision
func (s *HTTPServer) handleLifecycleDecision(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("lifecycle_decision")

	if !sessionFrom(r).CanManageBookings() {
		s.fail(w, r, access.ErrForbidden)
		return
	}

	var req DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := s.deps.Policy.Decide(r.Context(), req.GenerateReport)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// POST /api/lifecycle/back
func (s *HTTPServer) handleLifecycleBack(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("lifecycle_back")

	if !sessionFrom(r).CanManageBookings() {
		s.fail(w, r, access.ErrForbidden)
		return
	}

	if _, err := s.deps.Policy.BackOut(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Policy.Status())
}

// POST /api/lifecycle/confirm
func (s *HTTPServer) handleLifecycleConfirm(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("lifecycle_confirm")

	if !sessionFrom(r).CanManageBookings() {
		s.fail(w, r, access.ErrForbidden)
		return
	}

	outcome, err := s.deps.Policy.ConfirmPurge(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

// GET /api/sync
func (s *HTTPServer) handleSyncState(w http.ResponseWriter, _ *http.Request) {
	metrics.IncHTTP("sync_state")
	writeJSON(w, http.StatusOK, SyncResponse{Enabled: s.deps.Syncer.Enabled(), State: s.deps.Syncer.State()})
}

// POST /api/sync pushes the local collections and reports the outcome.
func (s *HTTPServer) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("sync_now")

	if err := s.deps.Syncer.PushNow(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Enabled: s.deps.Syncer.Enabled(), State: s.deps.Syncer.State()})
}
