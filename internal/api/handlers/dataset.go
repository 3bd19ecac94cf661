package handlers

import (
	"net/http"
	"strconv"

	"fuel-rl/internal/analysis"
	"fuel-rl/internal/api/models"
	"fuel-rl/internal/model"

	"github.com/gin-gonic/gin"
)

// DatasetHandler describes the dataset the server was started with
type DatasetHandler struct {
	data   *model.Dataset
	source string
}

func NewDatasetHandler(data *model.Dataset, source string) *DatasetHandler {
	return &DatasetHandler{data: data, source: source}
}

// GetDataset handles GET /api/v1/dataset?head=5
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	head := 5
	if raw := c.Query("head"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "head must be a non-negative integer", nil)
			return
		}
		head = n
	}
	rows := []model.FuelRecord{}
	if head > 0 {
		rows = h.data.Head(head).Records()
	}
	c.JSON(http.StatusOK, models.DatasetResponse{
		Source:    h.source,
		Potential: analysis.ComputePotential(h.data),
		Head:      rows,
	})
}
