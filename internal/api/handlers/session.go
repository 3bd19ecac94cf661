package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fuel-rl/internal/analysis"
	"fuel-rl/internal/api/models"
	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"
	"fuel-rl/internal/policy"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SessionHandler runs, compares and lists evaluation sessions
type SessionHandler struct {
	data   *model.Dataset
	source string
	store  *store.Store // nil disables persistence
	rec    driver.Recorder
	log    zerolog.Logger
}

func NewSessionHandler(data *model.Dataset, source string, st *store.Store, rec driver.Recorder, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{data: data, source: source, store: st, rec: rec, log: log}
}

func (h *SessionHandler) engine(ledger bool) *driver.Engine {
	return driver.New(driver.WithLogger(h.log), driver.WithRecorder(h.rec), driver.WithLedger(ledger))
}

func (h *SessionHandler) deps(c *gin.Context, data *model.Dataset) policy.Deps {
	deps := policy.Deps{Dataset: data}
	if h.store != nil {
		deps.LoadCheckpoint = h.store.CheckpointLoader(c.Request.Context())
	}
	return deps
}

func (h *SessionHandler) limited(rows int) *model.Dataset {
	if rows > 0 {
		return h.data.Head(rows)
	}
	return h.data
}

// RunSession handles POST /api/v1/sessions
func (h *SessionHandler) RunSession(c *gin.Context) {
	var req models.SessionRequest
	if !bindRequest(c, &req) {
		return
	}

	data := h.limited(req.Options.LimitRows)
	env, err := environment.NewFuelPriceEnv(data)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	spec := policy.Spec{Name: req.Policy.Name, Params: req.Policy.Params}
	pol, err := policy.Build(spec, h.deps(c, data))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_POLICY", err.Error(), nil)
		return
	}

	summary, err := h.engine(req.Options.IncludeLedger).RunSessionContext(c.Request.Context(), env, pol, *req.Episodes, *req.MaxSteps)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	resp := sessionResponse(summary, *req.MaxSteps)
	if req.Options.IncludeLedger {
		resp.Ledger = ledgerRows(summary.Ledger())
	}
	if h.store != nil && !req.Options.DryRun {
		rec := store.NewSessionRecord(spec, h.source, *req.MaxSteps, summary)
		if err := h.store.SaveSession(c.Request.Context(), &rec); err != nil {
			h.log.Error().Err(err).Msg("save session")
			respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
			return
		}
		resp.ID = rec.ID
		resp.CreatedAt = &rec.CreatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// CompareSessions handles POST /api/v1/sessions/compare
func (h *SessionHandler) CompareSessions(c *gin.Context) {
	var req models.CompareRequest
	if !bindRequest(c, &req) {
		return
	}

	data := h.limited(req.LimitRows)
	variations := make([]driver.Variation, 0, len(req.Variations))
	for _, v := range req.Variations {
		variations = append(variations, driver.Variation{
			Name:   v.Name,
			Policy: policy.Spec{Name: v.Policy.Name, Params: v.Policy.Params},
		})
	}

	results, err := h.engine(false).Compare(c.Request.Context(), data, h.deps(c, data), variations, *req.Episodes, *req.MaxSteps)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	oracle := analysis.OracleReward(data)
	resp := models.CompareResponse{
		Comparison:   make([]models.SessionResponse, 0, len(results)),
		Ranking:      analysis.RankByAverageReward(results, oracle),
		OracleReward: oracle,
	}
	for _, r := range results {
		s := sessionResponse(r.Summary, *req.MaxSteps)
		s.Policy = r.Name
		resp.Comparison = append(resp.Comparison, s)
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions handles GET /api/v1/sessions?limit=20
func (h *SessionHandler) ListSessions(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "session store is not configured", nil)
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer", nil)
			return
		}
		limit = n
	}
	recs, err := h.store.ListSessions(c.Request.Context(), limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	out := make([]models.SessionResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, recordResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "session store is not configured", nil)
		return
	}
	rec, err := h.store.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponse(*rec))
}

func sessionResponse(s *driver.Summary, maxSteps int) models.SessionResponse {
	return models.SessionResponse{
		Policy:        s.Policy,
		Episodes:      len(s.Episodes),
		MaxSteps:      maxSteps,
		AverageReward: s.AverageReward,
		Wins:          s.Wins,
		Losses:        s.Losses,
		Rewards:       s.Rewards(),
	}
}

func recordResponse(r store.SessionRecord) models.SessionResponse {
	created := r.CreatedAt
	return models.SessionResponse{
		ID:            r.ID,
		Policy:        r.Policy,
		Episodes:      r.Episodes,
		MaxSteps:      r.MaxSteps,
		AverageReward: r.AverageReward,
		Wins:          r.Wins,
		Losses:        r.Losses,
		Rewards:       r.Rewards,
		CreatedAt:     &created,
	}
}

func ledgerRows(rows []driver.LedgerRow) []models.LedgerRow {
	out := make([]models.LedgerRow, 0, len(rows))
	for _, r := range rows {
		row := models.LedgerRow{
			Episode:    r.Episode,
			Step:       r.Step,
			Action:     r.Action.String(),
			PriceULSP:  r.PriceULSP,
			PriceULSD:  r.PriceULSD,
			Reward:     r.Reward,
			CumReward:  r.CumReward,
			Terminated: r.Terminated,
		}
		if !r.Date.IsZero() {
			row.Date = r.Date.Format(time.DateOnly)
		}
		out = append(out, row)
	}
	return out
}
