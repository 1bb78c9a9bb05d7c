package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zencontrol/internal/access"
	"zencontrol/internal/catalog"
	"zencontrol/internal/events"
	"zencontrol/internal/lifecycle"
	"zencontrol/internal/mirror"
	"zencontrol/internal/models"
	"zencontrol/internal/report"
	"zencontrol/internal/repository"
	"zencontrol/internal/service"
)

const testPassphrase = "spa-admin"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	logger := zerolog.Nop()
	store := repository.NewMemoryStore()

	bookings, err := repository.NewBookingRepository(ctx, store)
	require.NoError(t, err)
	providers, err := repository.NewProviderRepository(ctx, store)
	require.NoError(t, err)
	_, err = providers.Upsert(ctx, models.Provider{ID: "p1", Name: "Carla", ShiftStart: "09:00", ShiftEnd: "18:00", ExcludedWeekdays: []int{0}})
	require.NoError(t, err)

	cat := catalog.Default()
	bus := events.NewEventBus()
	reports := report.NewGenerator(t.TempDir(), cat, logger)

	server := NewHTTPServer(0, Deps{
		Gate:      access.NewGate(testPassphrase, "", providers, logger),
		Sessions:  access.NewSessionStore(time.Hour),
		Catalog:   cat,
		Bookings:  service.NewBookingService(bookings, providers, cat, bus, logger),
		Providers: service.NewProviderService(providers, bookings, bus, logger),
		Reports:   reports,
		Policy:    lifecycle.NewPolicy(bookings, repository.NewMarkerRepository(store), reports, bus, logger),
		Syncer:    mirror.NewSyncer(nil, bookings, providers, mirror.Options{}, logger),
	}, logger)
	return server.Handler()
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, req LoginRequest) string {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/login", "", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func bookingBody(date, clock, service string) map[string]any {
	return map[string]any{
		"client_name":   "Ana Souza",
		"unit":          "204",
		"hotel":         "Thermas Resort",
		"service_id":    service,
		"date":          date,
		"time":          clock,
		"provider_id":   "p1",
		"point_of_sale": "Reserva",
	}
}

func TestLogin(t *testing.T) {
	h := newTestHandler(t)

	rec := call(t, h, http.MethodPost, "/api/login", "", LoginRequest{Role: models.RoleAdmin, Passphrase: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/login", "", map[string]string{"role": "admin", "pin": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := login(t, h, LoginRequest{Role: models.RoleMasseur, ProviderID: "p1"})
	assert.NotEmpty(t, token)

	rec = call(t, h, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(t, h, http.MethodGet, "/api/bookings", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCatalog(t *testing.T) {
	rec := call(t, newTestHandler(t), http.MethodGet, "/api/catalog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Services, 12)
	assert.Len(t, resp.Hotels, 3)
	assert.Len(t, resp.PointsOfSale, 2)
}

func TestSaveBooking_StatusMapping(t *testing.T) {
	h := newTestHandler(t)
	desk := login(t, h, LoginRequest{Role: models.RoleReceptionist})
	masseur := login(t, h, LoginRequest{Role: models.RoleMasseur, ProviderID: "p1"})

	rec := call(t, h, http.MethodPost, "/api/bookings", desk, bookingBody("2030-03-04", "10:00", "1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	missing := bookingBody("2030-03-04", "15:00", "1")
	delete(missing, "unit")
	unknownProvider := bookingBody("2030-03-04", "15:00", "1")
	unknownProvider["provider_id"] = "ghost"

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
	}{
		{"overlap", desk, bookingBody("2030-03-04", "10:30", "8"), http.StatusConflict},
		{"day off", desk, bookingBody("2030-03-03", "10:00", "1"), http.StatusUnprocessableEntity},
		{"unknown provider", desk, unknownProvider, http.StatusUnprocessableEntity},
		{"missing unit", desk, missing, http.StatusBadRequest},
		{"bad date", desk, bookingBody("04/03/2030", "10:00", "1"), http.StatusBadRequest},
		{"unknown field", desk, map[string]any{"guest": "x"}, http.StatusBadRequest},
		{"masseur", masseur, bookingBody("2030-03-04", "15:00", "1"), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, h, http.MethodPost, "/api/bookings", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestBookingFlow(t *testing.T) {
	h := newTestHandler(t)
	desk := login(t, h, LoginRequest{Role: models.RoleReceptionist})
	masseur := login(t, h, LoginRequest{Role: models.RoleMasseur, ProviderID: "p1"})

	rec := call(t, h, http.MethodPost, "/api/bookings", desk, bookingBody("2030-03-04", "10:00", "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var created models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = call(t, h, http.MethodPatch, "/api/bookings/"+created.ID+"/status", masseur, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.Equal(t, models.StatusDone, toggled.Status)

	rec = call(t, h, http.MethodGet, "/api/calendar?month=2030-03", masseur, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)

	rec = call(t, h, http.MethodGet, "/api/tasks", masseur, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks service.TaskList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Len(t, tasks.Bookings, 1)
	assert.Zero(t, tasks.Pending)

	rec = call(t, h, http.MethodGet, "/api/tasks", desk, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/providers/p1/slots?date=2030-03-04&service_id=8", desk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"start":"09:00"`)

	rec = call(t, h, http.MethodGet, "/api/providers/p1/slots?date=2030-03-04&service_id=8&step=x", desk, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/reports/closing", desk, report.Filter{StartDate: "2030-03-01", EndDate: "2030-03-31"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res report.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Rows)

	rec = call(t, h, http.MethodDelete, "/api/bookings/"+created.ID, masseur, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = call(t, h, http.MethodDelete, "/api/bookings/"+created.ID, desk, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, h, http.MethodGet, "/api/dashboard", desk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash service.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Zero(t, dash.Pending+dash.Done)
}

func TestProviders(t *testing.T) {
	h := newTestHandler(t)
	admin := login(t, h, LoginRequest{Role: models.RoleAdmin, Passphrase: testPassphrase})
	desk := login(t, h, LoginRequest{Role: models.RoleReceptionist})

	rec := call(t, h, http.MethodPost, "/api/providers", desk, models.Provider{Name: "Dora", ShiftStart: "08:00", ShiftEnd: "12:00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/providers", admin, models.Provider{Name: "Dora", ShiftStart: "12:00", ShiftEnd: "08:00"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/bookings", desk, bookingBody("2030-03-04", "10:00", "1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodDelete, "/api/providers/p1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp DeleteProviderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.OrphanedBookings)

	rec = call(t, h, http.MethodGet, "/api/providers", desk, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestLifecycleAndSync(t *testing.T) {
	h := newTestHandler(t)
	desk := login(t, h, LoginRequest{Role: models.RoleReceptionist})
	masseur := login(t, h, LoginRequest{Role: models.RoleMasseur, ProviderID: "p1"})

	rec := call(t, h, http.MethodGet, "/api/lifecycle", masseur, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var status lifecycle.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, lifecycle.StateNormal, status.State)

	rec = call(t, h, http.MethodPost, "/api/lifecycle/decision", masseur, DecisionRequest{GenerateReport: true})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = call(t, h, http.MethodPost, "/api/lifecycle/decision", desk, DecisionRequest{GenerateReport: true})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = call(t, h, http.MethodPost, "/api/lifecycle/confirm", desk, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/sync", masseur, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sync SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sync))
	assert.False(t, sync.Enabled)
	assert.Equal(t, mirror.StatusIdle, sync.Status)
}
