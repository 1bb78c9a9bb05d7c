package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
)

// GET /api/bookings
func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")
	writeJSON(w, http.StatusOK, s.deps.Bookings.List(sessionFrom(r)))
}

// POST /api/bookings creates a booking, or edits it when id is set.
func (s *HTTPServer) handleSaveBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_save")

	var req models.Booking
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := s.deps.Bookings.Save(r.Context(), sessionFrom(r), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DELETE /api/bookings/{id}
func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_delete")

	if err := s.deps.Bookings.Delete(r.Context(), sessionFrom(r), mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PATCH /api/bookings/{id}/status
func (s *HTTPServer) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_status")

	b, err := s.deps.Bookings.ToggleStatus(r.Context(), sessionFrom(r), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// GET /api/calendar?month=YYYY-MM&provider_id=
func (s *HTTPServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar")

	month := r.URL.Query().Get("month")
	if month == "" {
		month = models.MonthKey(s.now())
	}

	days, err := s.deps.Bookings.Calendar(sessionFrom(r), month, r.URL.Query().Get("provider_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "days": days})
}

// GET /api/tasks
func (s *HTTPServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("tasks")

	tasks, err := s.deps.Bookings.Tasks(sessionFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GET /api/dashboard
func (s *HTTPServer) handleDashboard(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("dashboard")
	writeJSON(w, http.StatusOK, s.deps.Bookings.Dashboard(sessionFrom(r)))
}

// GET /api/providers/{id}/slots?date=YYYY-MM-DD&service_id=&step=30
func (s *HTTPServer) handleFreeSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("free_slots")

	q := r.URL.Query()
	step := 30
	if raw := q.Get("step"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "step must be a positive number of minutes")
			return
		}
		step = n
	}

	slots, err := s.deps.Bookings.FreeSlots(mux.Vars(r)["id"], q.Get("date"), q.Get("service_id"), step)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": q.Get("date"), "slots": slots})
}
