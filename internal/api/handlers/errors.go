package handlers

import (
	"context"
	"errors"
	"net/http"

	"fuel-rl/internal/driver"
	"fuel-rl/internal/environment"
	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
)

// respondDomainError maps rollout and store failures onto HTTP errors.
func respondDomainError(c *gin.Context, err error) {
	var stepErr *environment.StepError
	switch {
	case errors.Is(err, driver.ErrEmptySession):
		respondError(c, http.StatusBadRequest, "EMPTY_SESSION", err.Error(), nil)
	case errors.Is(err, driver.ErrInvalidStepBudget):
		respondError(c, http.StatusBadRequest, "INVALID_STEP_BUDGET", err.Error(), nil)
	case errors.As(err, &stepErr):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_STEP", err.Error(), map[string]interface{}{
			"step":   stepErr.Step,
			"action": int(stepErr.Action),
		})
	case errors.Is(err, environment.ErrInvalidDataset):
		respondError(c, http.StatusUnprocessableEntity, "INVALID_DATASET", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusServiceUnavailable, "CANCELED", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "SESSION_ERROR", err.Error(), nil)
	}
}
