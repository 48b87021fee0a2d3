package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"playhub/internal/auth"
	"playhub/internal/http/handlers"
	"playhub/internal/models"
	"playhub/internal/service"
	"playhub/internal/storage"
)

type noopSweeper struct{}

func (noopSweeper) Sweep(context.Context) {}

type noopExporter struct{}

func (noopExporter) ExportDay(context.Context, time.Time) error { return nil }

const testAdminPassword = "letmein"

func newTestServer(t *testing.T) (*httptest.Server, *storage.Memory, *auth.TokenService) {
	t.Helper()
	logger := zap.NewNop()
	store := storage.NewMemory()

	accrual := service.NewTargetAccrual(store, logger)
	ledger := service.NewSessionLedger(store, nil, accrual, nil, nil, logger)
	registry := service.NewStationRegistry(store, logger)
	targets := service.NewTargetService(store, logger)
	dashboard := service.NewDashboard(store, logger)

	tokens := auth.NewTokenService("test-secret", time.Hour)
	hasher := auth.NewBcryptHasher(4)
	passwordHash, err := hasher.Hash(testAdminPassword)
	require.NoError(t, err)

	sessionsHandler := handlers.NewSessionsHandler(ledger, logger)
	adminHandler := handlers.NewAdminHandler(tokens, hasher, passwordHash, noopSweeper{}, noopExporter{}, logger)

	routes := Routes{
		Health: handlers.NewHealthHandler(),

		ListCustomers:   handlers.NewListCustomersHandler(store),
		CreateCustomer:  handlers.NewCreateCustomerHandler(store),
		CustomerByPhone: handlers.NewCustomerByPhoneHandler(store),

		ListStations:  handlers.NewListStationsHandler(registry),
		CreateStation: handlers.NewCreateStationHandler(registry),
		UpdateStation: handlers.NewUpdateStationHandler(registry),
		DeleteStation: handlers.NewDeleteStationHandler(registry),

		CheckIn:        sessionsHandler.HandleCheckIn,
		EndSession:     sessionsHandler.HandleEnd,
		ActiveSessions: sessionsHandler.HandleActive,

		DashboardMetrics:     handlers.NewDashboardMetricsHandler(dashboard),
		DashboardRevenue:     handlers.NewDashboardRevenueHandler(dashboard),
		DashboardUtilization: handlers.NewDashboardUtilizationHandler(dashboard),

		ListAlerts:    handlers.NewListAlertsHandler(store),
		MarkAlertRead: handlers.NewMarkAlertReadHandler(store),

		ListActivities: handlers.NewListActivitiesHandler(store),

		ListTargets:  handlers.NewListTargetsHandler(targets),
		CreateTarget: handlers.NewCreateTargetHandler(targets),

		AdminLogin:    adminHandler.HandleLogin,
		RunAlertCheck: adminHandler.HandleRunAlertCheck,
		RunExport:     adminHandler.HandleRunExport,
	}

	server := httptest.NewServer(NewRouter(routes, auth.Middleware(tokens)))
	t.Cleanup(server.Close)
	return server, store, tokens
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestHealthEndpoint(t *testing.T) {
	server, _, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckInAndCheckOutFlow(t *testing.T) {
	server, store, _ := newTestServer(t)

	station := &models.Station{Name: "PC-01", Type: models.StationTypePC, HourlyRate: decimal.NewFromInt(100), IsActive: true}
	require.NoError(t, store.CreateStation(context.Background(), station))

	resp := doJSON(t, http.MethodPost, server.URL+"/api/sessions", "", map[string]string{
		"customer_name": "Ravi",
		"phone":         "9876543210",
		"station_id":    station.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session models.Session
	decodeBody(t, resp, &session)
	assert.True(t, session.IsActive)

	// Same station is now occupied.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/sessions", "", map[string]string{
		"customer_name": "Anita",
		"station_id":    station.ID,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	endURL := fmt.Sprintf("%s/api/sessions/%s/end", server.URL, session.ID)
	resp = doJSON(t, http.MethodPatch, endURL, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var closed models.Session
	decodeBody(t, resp, &closed)
	assert.False(t, closed.IsActive)
	assert.NotNil(t, closed.EndTime)

	// Ending again is a no-op with a null body.
	resp = doJSON(t, http.MethodPatch, endURL, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestEndUnknownSession(t *testing.T) {
	server, _, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPatch, server.URL+"/api/sessions/missing/end", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStationAdminEndpointsRequireToken(t *testing.T) {
	server, _, tokens := newTestServer(t)

	payload := map[string]interface{}{
		"name":        "PC-01",
		"type":        models.StationTypePC,
		"hourly_rate": "100",
	}

	resp := doJSON(t, http.MethodPost, server.URL+"/api/stations", "", payload)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	token, err := tokens.GenerateToken(auth.RoleAdmin)
	require.NoError(t, err)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/stations", token, payload)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Listing stays public.
	listResp, err := http.Get(server.URL + "/api/stations")
	require.NoError(t, err)
	defer listResp.Body.Close()
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
}

func TestAdminLoginFlow(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/admin/login", "", map[string]string{
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, server.URL+"/admin/login", "", map[string]string{
		"password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	require.NotEmpty(t, body["token"])

	// The issued token grants access to admin endpoints.
	resp = doJSON(t, http.MethodPost, server.URL+"/admin/alerts/check", body["token"], nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()
}

func TestMarkAlertRead(t *testing.T) {
	server, store, _ := newTestServer(t)

	alert := &models.Alert{Type: models.AlertLongSession, Message: "m", Severity: models.SeverityInfo}
	require.NoError(t, store.CreateAlert(context.Background(), alert))

	resp := doJSON(t, http.MethodPatch, server.URL+"/api/alerts/"+alert.ID+"/read", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Alert
	decodeBody(t, resp, &updated)
	assert.True(t, updated.IsRead)

	var listing struct {
		Alerts []models.Alert `json:"alerts"`
	}
	listResp, err := http.Get(server.URL + "/api/alerts")
	require.NoError(t, err)
	decodeBody(t, listResp, &listing)
	assert.Empty(t, listing.Alerts)
}
