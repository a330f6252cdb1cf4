package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-rental/internal/auth"
	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/http/middleware"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository/memory"
	"github.com/nurpe/fleet-rental/internal/service"
)

type testServer struct {
	router http.Handler
	store  *memory.Store
	user   string
	admin  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	repos := store.Repositories()
	publisher := events.Noop{}
	log := zerolog.Nop()

	handler := NewHandler(Services{
		Vehicles:      service.NewVehicleService(repos),
		Clients:       service.NewClientService(repos),
		Rentals:       service.NewRentalService(repos, store, publisher, service.DefaultRentalPolicy(), log),
		Maintenance:   service.NewMaintenanceService(repos, store, publisher, log),
		Calendar:      service.NewCalendarService(repos),
		Notifications: service.NewNotificationService(repos),
		Documents:     service.NewDocumentService(repos),
		Users:         service.NewUserService(repos),
	}, log)

	parser := auth.NewParser("test-secret")
	router := NewRouter(handler, middleware.Auth(parser), RouterConfig{Environment: "test"}, log)

	issue := func(role model.Role) string {
		u := store.SeedUser(model.User{Email: string(role) + "@fleet.test", Name: string(role), Role: role})
		token, err := parser.Issue(model.Principal{UserID: u.ID, Email: u.Email, Role: role}, time.Hour)
		require.NoError(t, err)
		return token
	}

	return &testServer{
		router: router,
		store:  store,
		user:   issue(model.RoleUser),
		admin:  issue(model.RoleAdmin),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createVehicle(t *testing.T, plate string) model.Vehicle {
	t.Helper()
	w := s.do(t, http.MethodPost, "/vehicles", s.user, gin.H{
		"make":               "Renault",
		"model":              "Clio",
		"licensePlate":       plate,
		"year":               2022,
		"odometer":           50000,
		"lastOilChangeKm":    45000,
		"fuelType":           "diesel",
		"insuranceExpiresAt": time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		"dailyPrice":         100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v model.Vehicle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func rentalBody(vehicleID uuid.UUID, cin string) gin.H {
	start := time.Now().UTC().Add(time.Hour)
	return gin.H{
		"vehiculeId": vehicleID,
		"startDate":  start.Format(time.RFC3339),
		"endDate":    start.Add(48 * time.Hour).Format(time.RFC3339),
		"client":     gin.H{"CIN": cin, "name": "Amine", "city": "Tunis"},
	}
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/vehicles", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRentalLifecycle(t *testing.T) {
	s := newTestServer(t)
	vehicle := s.createVehicle(t, "123TU4567")

	w := s.do(t, http.MethodPost, "/locations", s.user, rentalBody(vehicle.ID, "12345678"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var location model.Location
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &location))
	assert.Equal(t, 2, location.DurationDays)
	assert.InDelta(t, 238.0, location.PriceTTC, 0.001)
	assert.Equal(t, int64(50000), location.InitialOdometer)

	w = s.do(t, http.MethodGet, "/vehicles/"+vehicle.ID.String(), s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"RENTED"`)

	w = s.do(t, http.MethodPost, "/locations", s.user, rentalBody(vehicle.ID, "87654321"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VEHICLE_UNAVAILABLE", decodeError(t, w).Code)

	w = s.do(t, http.MethodPut, "/locations/"+location.ID.String()+"/terminer", s.user, gin.H{"kilometrageFinal": 61000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		DistanceTraveled int64 `json:"distanceParcourue"`
		ServiceDue       bool  `json:"vidangeNecessaire"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(11000), result.DistanceTraveled)
	assert.True(t, result.ServiceDue)

	w = s.do(t, http.MethodPut, "/locations/"+location.ID.String()+"/terminer", s.user, gin.H{"kilometrageFinal": 62000})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "LOCATION_ALREADY_COMPLETED", decodeError(t, w).Code)

	w = s.do(t, http.MethodGet, "/notifications?unseen=true", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SERVICE_ALERT")
}

func TestCreateLocationErrors(t *testing.T) {
	s := newTestServer(t)
	vehicle := s.createVehicle(t, "200TU1000")

	t.Run("Missing Body Fields", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/locations", s.user, gin.H{"vehiculeId": vehicle.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	})

	t.Run("Malformed CIN", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/locations", s.user, rentalBody(vehicle.ID, "12AB"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		assert.Contains(t, body.Fields, "client.CIN")
	})

	t.Run("Invalid Date Range", func(t *testing.T) {
		body := rentalBody(vehicle.ID, "12345678")
		body["endDate"], body["startDate"] = body["startDate"], body["endDate"]
		w := s.do(t, http.MethodPost, "/locations", s.user, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_DATE_RANGE", decodeError(t, w).Code)
	})

	t.Run("Unknown Vehicle", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/locations", s.user, rentalBody(uuid.New(), "12345678"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("Blacklisted Client", func(t *testing.T) {
		ctx := context.Background()
		repos := s.store.Repositories()
		client := &model.Client{CIN: "99999999", Name: "Karim", FidelityTier: model.FidelityTierNone}
		require.NoError(t, repos.Clients.Create(ctx, client))
		reason := "unpaid"
		require.NoError(t, repos.Clients.SetBlacklist(ctx, client.ID, true, &reason))

		w := s.do(t, http.MethodPost, "/locations", s.user, rentalBody(vehicle.ID, "99999999"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "CLIENT_BLACKLISTED", decodeError(t, w).Code)

		body := rentalBody(vehicle.ID, "99999999")
		body["overrideBlacklist"] = true
		w = s.do(t, http.MethodPost, "/locations", s.user, body)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})
}

func TestVehicleEndpoints(t *testing.T) {
	s := newTestServer(t)
	vehicle := s.createVehicle(t, "300tu2000")
	assert.Equal(t, "300TU2000", vehicle.LicensePlate)
	assert.Equal(t, model.VehicleStatusAvailable, vehicle.Status)

	t.Run("Duplicate Plate", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/vehicles", s.user, gin.H{
			"make":               "Renault",
			"model":              "Clio",
			"licensePlate":       "300TU2000",
			"year":               2022,
			"fuelType":           "DIESEL",
			"insuranceExpiresAt": time.Now().AddDate(1, 0, 0).Format(time.RFC3339),
			"dailyPrice":         90,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "licensePlate")
	})

	t.Run("Filter By Status", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/vehicles?status=available", s.user, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), vehicle.ID.String())

		w = s.do(t, http.MethodGet, "/vehicles?status=BROKEN", s.user, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Invalid ID", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/vehicles/not-a-uuid", s.user, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Delete Requires Admin", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, "/vehicles/"+vehicle.ID.String(), s.user, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = s.do(t, http.MethodDelete, "/vehicles/"+vehicle.ID.String(), s.admin, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.do(t, http.MethodGet, "/vehicles/"+vehicle.ID.String(), s.user, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMaintenanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	vehicle := s.createVehicle(t, "400TU3000")

	w := s.do(t, http.MethodPost, "/maintenances", s.user, gin.H{
		"vehiculeId":  vehicle.ID,
		"type":        "oil_change",
		"scheduledAt": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"cost":        80,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record model.MaintenanceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))

	w = s.do(t, http.MethodGet, "/vehicles/"+vehicle.ID.String(), s.user, nil)
	assert.Contains(t, w.Body.String(), `"status":"IN_MAINTENANCE"`)

	w = s.do(t, http.MethodPut, "/maintenances/"+record.ID.String()+"/complete", s.user, gin.H{"odometer": 51000})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/vehicles/"+vehicle.ID.String(), s.user, nil)
	assert.Contains(t, w.Body.String(), `"status":"AVAILABLE"`)
	assert.Contains(t, w.Body.String(), `"lastOilChangeKm":51000`)

	w = s.do(t, http.MethodPut, "/maintenances/"+record.ID.String()+"/complete", s.user, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarRange(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/calendar", s.user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/calendar?from=2026-05-01&to=2026-04-01", s.user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE_RANGE", decodeError(t, w).Code)

	w = s.do(t, http.MethodGet, "/calendar?from=yesterday", s.user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/users/me", s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user@fleet.test")

	w = s.do(t, http.MethodGet, "/users", s.user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/users", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data []model.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 2)
}

func TestParseDate(t *testing.T) {
	for _, raw := range []string{"2026-04-02", "2026-04-02T09:30:00", "2026-04-02T09:30:00Z", " 2026-04-02T09:30:00+01:00 "} {
		_, err := parseDate(raw)
		assert.NoError(t, err, raw)
	}
	_, err := parseDate("02/04/2026")
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListLocationsByPeriod(t *testing.T) {
	s := newTestServer(t)
	vehicle := s.createVehicle(t, "600TU5000")
	w := s.do(t, http.MethodPost, "/locations", s.user, rentalBody(vehicle.ID, "12345678"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inRange := "/locations?from=" + time.Now().AddDate(0, 0, -1).Format("2006-01-02") +
		"&to=" + time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	w = s.do(t, http.MethodGet, inRange, s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), vehicle.ID.String())

	later := "/locations?from=" + time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	w = s.do(t, http.MethodGet, later, s.user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/locations?status=cancelled", s.user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
