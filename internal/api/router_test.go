package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fuel-rl/internal/api/models"
	"fuel-rl/internal/metrics"
	"fuel-rl/internal/model"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixture() *model.Dataset {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 105, 102, 102, 108}
	recs := make([]model.FuelRecord, len(prices))
	for i, p := range prices {
		recs[i] = model.FuelRecord{
			Date:          start.AddDate(0, 0, 7*i),
			PumpPriceULSP: p,
			PumpPriceULSD: p + 10,
			DutyRateULSP:  52.95,
			DutyRateULSD:  52.95,
			VATRateULSP:   20,
			VATRateULSD:   20,
		}
	}
	return model.MustDataset(recs)
}

type testServer struct {
	router *gin.Engine
	reg    *prometheus.Registry
}

func newServer(t *testing.T, withStore bool) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	d := Deps{
		Dataset:        fixture(),
		Source:         "fixture",
		Recorder:       metrics.New(reg),
		Gatherer:       reg,
		Logger:         zerolog.Nop(),
		AllowedOrigins: []string{"*"},
	}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		d.Store = st
	}
	return &testServer{router: NewRouter(d), reg: reg}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	decode(t, w, &resp)
	return resp.Error.Code
}

func TestHealth(t *testing.T) {
	s := newServer(t, false)
	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	decode(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, 5.0, body["rows"])
	assert.Equal(t, false, body["store"])
}

func TestRunSessionPersists(t *testing.T) {
	s := newServer(t, true)

	w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":   map[string]interface{}{"name": "hold"},
		"episodes": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SessionResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "hold", resp.Policy)
	assert.Equal(t, 3, resp.Episodes)
	assert.Equal(t, 1000, resp.MaxSteps)
	assert.Equal(t, 0.0, resp.AverageReward)
	assert.Equal(t, 3, resp.Losses)
	assert.Empty(t, resp.Ledger)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/"+resp.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.SessionResponse
	decode(t, w, &got)
	assert.Equal(t, resp.ID, got.ID)
	assert.Equal(t, []float64{0, 0, 0}, got.Rewards)

	w = s.do(t, http.MethodGet, "/api/v1/sessions?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Sessions []models.SessionResponse `json:"sessions"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Sessions, 1)

	w = s.do(t, http.MethodGet, "/api/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestRunSessionLedgerAndDryRun(t *testing.T) {
	s := newServer(t, true)

	w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":    map[string]interface{}{"name": "constant", "params": map[string]interface{}{"action": "BUY_ULSP"}},
		"episodes":  1,
		"max_steps": 2,
		"options":   map[string]interface{}{"include_ledger": true, "dry_run": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.SessionResponse
	decode(t, w, &resp)
	assert.Empty(t, resp.ID)
	assert.Equal(t, 2.0, resp.AverageReward)
	require.Len(t, resp.Ledger, 2)
	assert.Equal(t, "BUY_ULSP", resp.Ledger[0].Action)
	assert.Equal(t, "2024-01-08", resp.Ledger[0].Date)
	assert.Equal(t, 2.0, resp.Ledger[1].CumReward)
}

func TestRunSessionErrors(t *testing.T) {
	s := newServer(t, false)

	w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":   map[string]interface{}{"name": "hold"},
		"episodes": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_SESSION", errorCode(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":    map[string]interface{}{"name": "hold"},
		"max_steps": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy": map[string]interface{}{"name": "ppo"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_POLICY", errorCode(t, w))

	w = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{"episodes": 2})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "policy.name is required")

	w = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":  map[string]interface{}{"name": "hold"},
		"options": map[string]interface{}{"limit_rows": 1},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_DATASET", errorCode(t, w))

	w = s.do(t, http.MethodGet, "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_DISABLED", errorCode(t, w))
}

func TestCompareSessions(t *testing.T) {
	s := newServer(t, false)

	w := s.do(t, http.MethodPost, "/api/v1/sessions/compare", map[string]interface{}{
		"episodes": 2,
		"variations": []map[string]interface{}{
			{"name": "idle", "policy": map[string]interface{}{"name": "hold"}},
			{"name": "perfect", "policy": map[string]interface{}{"name": "oracle"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.CompareResponse
	decode(t, w, &resp)
	assert.Equal(t, 14.0, resp.OracleReward)
	require.Len(t, resp.Comparison, 2)
	assert.Equal(t, "idle", resp.Comparison[0].Policy)
	require.Len(t, resp.Ranking, 2)
	assert.Equal(t, "perfect", resp.Ranking[0].Name)
	assert.Equal(t, 1.0, resp.Ranking[0].OracleShare)

	w = s.do(t, http.MethodPost, "/api/v1/sessions/compare", map[string]interface{}{"variations": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
}

func TestTrainThenEvaluateCheckpoint(t *testing.T) {
	s := newServer(t, true)

	w := s.do(t, http.MethodPost, "/api/v1/train", map[string]interface{}{
		"checkpoint_name": "weekly",
		"total_timesteps": 200,
		"gamma":           0,
		"seed":            7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var train models.TrainResponse
	decode(t, w, &train)
	assert.Equal(t, "weekly", train.CheckpointName)
	assert.Equal(t, 200, train.Timesteps)
	assert.Equal(t, 50, train.Episodes)
	assert.Equal(t, 1, train.Evaluation.Episodes)

	w = s.do(t, http.MethodGet, "/api/v1/checkpoints", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Checkpoints []store.CheckpointInfo `json:"checkpoints"`
	}
	decode(t, w, &list)
	require.Len(t, list.Checkpoints, 1)
	assert.Equal(t, "weekly", list.Checkpoints[0].Name)
	assert.Equal(t, 200, list.Checkpoints[0].Updates)

	w = s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":   map[string]interface{}{"name": "qlearn", "params": map[string]interface{}{"checkpoint": "weekly"}},
		"episodes": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var sess models.SessionResponse
	decode(t, w, &sess)
	assert.Equal(t, "qlearn", sess.Policy)
	assert.Equal(t, train.Evaluation.AverageReward, sess.AverageReward)
}

func TestTrainNeedsStore(t *testing.T) {
	s := newServer(t, false)
	w := s.do(t, http.MethodPost, "/api/v1/train", map[string]interface{}{"checkpoint_name": "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_DISABLED", errorCode(t, w))
}

func TestPoliciesAndDataset(t *testing.T) {
	s := newServer(t, false)

	w := s.do(t, http.MethodGet, "/api/v1/policies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"oracle"`)
	assert.Contains(t, w.Body.String(), `"qlearn"`)

	w = s.do(t, http.MethodGet, "/api/v1/dataset?head=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ds models.DatasetResponse
	decode(t, w, &ds)
	assert.Equal(t, "fixture", ds.Source)
	assert.Len(t, ds.Head, 2)
	assert.Equal(t, 5, ds.Potential.Rows)
	assert.Equal(t, 14.0, ds.Potential.OracleReward)

	w = s.do(t, http.MethodGet, "/api/v1/dataset?head=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t, false)
	w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]interface{}{
		"policy":   map[string]interface{}{"name": "hold"},
		"episodes": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `fuelrl_episodes_total{outcome="loss",policy="hold"} 2`)
	assert.Contains(t, body, `route="/api/v1/sessions"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t, false)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}

func TestPanicRecovery(t *testing.T) {
	s := newServer(t, false)
	s.router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := s.do(t, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp models.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)
}
