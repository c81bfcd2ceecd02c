package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodplan/pkg/application/dto"
	"github.com/vsinha/prodplan/pkg/application/services/fixtures"
	"github.com/vsinha/prodplan/pkg/application/services/orchestration"
	"github.com/vsinha/prodplan/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPlanner struct {
	err     error
	gotDate time.Time
}

func (p *stubPlanner) Assemble(ctx context.Context, runDate time.Time) (*dto.PlanResult, error) {
	p.gotDate = runDate
	if p.err != nil {
		return nil, p.err
	}
	return &dto.PlanResult{RunID: "run-1", RunDate: runDate}, nil
}

func (p *stubPlanner) Location() *time.Location { return time.UTC }

func newTestServer(planner Planner) *Server {
	return NewServer(config.ServerConfig{Address: ":0", GinMode: gin.TestMode}, planner,
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func scenarioPlanner() *orchestration.PlanAssembler {
	s := fixtures.NewScenario().
		WithMachine("PRESS", "2", "480", "0").
		WithMaterial("STEEL", "40", "0", 2).
		WithProduct("WIDGET", fixtures.OnMachine("PRESS", "2", 1), fixtures.Consumes("STEEL", "1")).
		WithOrder("O-1", "WIDGET", 100, 4)

	return orchestration.NewPlanAssembler(orchestration.Repositories{
		Orders:    s.Orders,
		Products:  s.Products,
		Machines:  s.Machines,
		Materials: s.Materials,
		Invoices:  s.Invoices,
	}, orchestration.DefaultConfig(), nil)
}

func TestGetProductionPlan(t *testing.T) {
	s := newTestServer(scenarioPlanner())

	w := get(t, s, "/api/v1/production-plan?date=2025-03-03")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(PlanRunIDHeader))

	var body struct {
		Plan []struct {
			OrderID   string `json:"orderId"`
			Status    string `json:"status"`
			DailyPlan []struct {
				Date  string `json:"date"`
				Units int64  `json:"units"`
			} `json:"dailyPlan"`
		} `json:"plan"`
		Schedule []struct {
			RawMaterialCode string      `json:"rawMaterialCode"`
			RequiredBy      string      `json:"requiredBy"`
			QuantityNeeded  json.Number `json:"quantityNeeded"`
			ForOrder        string      `json:"forOrder"`
		} `json:"materialProcurementSchedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Plan, 1)
	assert.Equal(t, "O-1", body.Plan[0].OrderID)
	require.NotEmpty(t, body.Plan[0].DailyPlan)
	assert.Equal(t, "2025-03-03", body.Plan[0].DailyPlan[0].Date)

	var total int64
	for _, e := range body.Plan[0].DailyPlan {
		total += e.Units
	}
	assert.Equal(t, int64(100), total)

	require.NotEmpty(t, body.Schedule)
	assert.Equal(t, "O-1", body.Schedule[0].ForOrder)
}

func TestGetProductionPlanDefaultsToToday(t *testing.T) {
	planner := &stubPlanner{}
	s := newTestServer(planner)

	w := get(t, s, "/api/v1/production-plan")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "run-1", w.Header().Get(PlanRunIDHeader))
	assert.JSONEq(t, `{"plan":[],"materialProcurementSchedule":[]}`, w.Body.String())
	assert.WithinDuration(t, time.Now(), planner.gotDate, time.Minute)
}

func TestGetProductionPlanErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"bad date", "/api/v1/production-plan?date=03/03/2025", nil, http.StatusBadRequest},
		{"snapshot unavailable", "/api/v1/production-plan", fmt.Errorf("%w: %w", orchestration.ErrSnapshotUnavailable, fmt.Errorf("connection refused")), http.StatusServiceUnavailable},
		{"cancelled", "/api/v1/production-plan", fmt.Errorf("planning cancelled: %w", context.Canceled), http.StatusServiceUnavailable},
		{"deadline", "/api/v1/production-plan", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"internal", "/api/v1/production-plan", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&stubPlanner{err: tt.err})

			w := get(t, s, tt.target)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(&stubPlanner{})

	w := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(&stubPlanner{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDKey, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDKey))
}

func TestMetricsRouteOptional(t *testing.T) {
	s := NewServer(config.ServerConfig{GinMode: gin.TestMode}, &stubPlanner{}, nil)

	w := get(t, s, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(config.ServerConfig{
		GinMode:     gin.TestMode,
		CORSOrigins: []string{"http://dashboard.local"},
	}, &stubPlanner{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/production-plan", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://dashboard.local", w.Header().Get("Access-Control-Allow-Origin"))
}
