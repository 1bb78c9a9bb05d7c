package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"zencontrol/internal/access"
	"zencontrol/internal/lifecycle"
	"zencontrol/internal/mirror"
	"zencontrol/internal/models"
	"zencontrol/internal/report"
	"zencontrol/internal/scheduling"
	"zencontrol/internal/service"
)

type sessionKey struct{}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// fail maps a domain error to its HTTP status.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduling.ErrMissingField),
		errors.Is(err, scheduling.ErrInvalidField),
		errors.Is(err, report.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, access.ErrInvalidCredentials),
		errors.Is(err, access.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrTimeConflict),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, scheduling.ErrProviderUnavailable),
		errors.Is(err, scheduling.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	case errors.Is(err, mirror.ErrRemoteSync):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.deps.Sessions.Get(r.Header.Get(sessionHeader))
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) models.Session {
	session, _ := r.Context().Value(sessionKey{}).(models.Session)
	return session
}
