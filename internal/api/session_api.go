package api

import (
	"net/http"

	"zencontrol/internal/metrics"
	"zencontrol/internal/models"
)

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Role       models.Role `json:"role"`
	Passphrase string      `json:"passphrase,omitempty"`
	ProviderID string      `json:"provider_id,omitempty"`
}

type LoginResponse struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
}

// CatalogResponse lists the closed sets a booking form offers.
type CatalogResponse struct {
	Services     []models.ServiceType `json:"services"`
	Hotels       []models.Hotel       `json:"hotels"`
	PointsOfSale []models.PointOfSale `json:"points_of_sale"`
}

// POST /api/login
func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("login")

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := s.deps.Gate.Login(req.Role, req.Passphrase, req.ProviderID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token := s.deps.Sessions.Create(session)
	s.logger.Info().Str("role", string(session.Role)).Str("name", session.Name).Msg("session opened")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Session: session})
}

// POST /api/logout
func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("logout")
	s.deps.Sessions.Delete(r.Header.Get(sessionHeader))
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/catalog
func (s *HTTPServer) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	metrics.IncHTTP("catalog")
	writeJSON(w, http.StatusOK, CatalogResponse{
		Services:     s.deps.Catalog.All(),
		Hotels:       models.Hotels(),
		PointsOfSale: models.PointsOfSale(),
	})
}
