package handlers

import (
	"math/rand"
	"net/http"

	"fuel-rl/internal/agent"
	"fuel-rl/internal/api/models"
	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/model"
	"fuel-rl/internal/policy"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TrainHandler trains linear Q agents and stores them by name
type TrainHandler struct {
	data  *model.Dataset
	store *store.Store
	rec   driver.Recorder
	log   zerolog.Logger
}

func NewTrainHandler(data *model.Dataset, st *store.Store, rec driver.Recorder, log zerolog.Logger) *TrainHandler {
	return &TrainHandler{data: data, store: st, rec: rec, log: log}
}

// Train handles POST /api/v1/train
func (h *TrainHandler) Train(c *gin.Context) {
	if h.store == nil {
		respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "checkpoint store is not configured", nil)
		return
	}
	var req models.TrainRequest
	if !bindRequest(c, &req) {
		return
	}

	data := h.data
	if req.LimitRows > 0 {
		data = data.Head(req.LimitRows)
	}
	env, err := environment.NewFuelPriceEnv(data)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	q, err := agent.NewLinearQ(agent.NormalizerFromDataset(data), agent.Params{
		LearningRate: req.LearningRate,
		Gamma:        *req.Gamma,
	})
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMS", err.Error(), nil)
		return
	}
	sched := driver.Schedule{
		TotalTimesteps:      req.TotalTimesteps,
		EpsilonStart:        *req.EpsilonStart,
		EpsilonEnd:          *req.EpsilonEnd,
		ExplorationFraction: *req.ExplorationFraction,
		MaxEpisodeSteps:     req.MaxEpisodeSteps,
	}

	engine := driver.New(driver.WithLogger(h.log), driver.WithRecorder(h.rec))
	stats, err := engine.Learn(c.Request.Context(), env, q, sched, rand.New(rand.NewSource(*req.Seed)))
	if err != nil {
		if sched.Validate() != nil {
			respondError(c, http.StatusBadRequest, "INVALID_PARAMS", err.Error(), nil)
			return
		}
		respondDomainError(c, err)
		return
	}

	if err := h.store.SaveCheckpoint(c.Request.Context(), req.CheckpointName, q); err != nil {
		h.log.Error().Err(err).Str("checkpoint", req.CheckpointName).Msg("save checkpoint")
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
		return
	}

	maxSteps := data.Len()
	eval, err := engine.RunSessionContext(c.Request.Context(), env, policy.Greedy(q), 1, maxSteps)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TrainResponse{
		CheckpointName:    req.CheckpointName,
		Timesteps:         stats.Timesteps,
		Episodes:          stats.Episodes,
		MeanEpisodeReward: stats.MeanEpisodeReward,
		FinalEpsilon:      stats.FinalEpsilon,
		Evaluation:        sessionResponse(eval, maxSteps),
	})
}
