package handlers

import (
	"net/http"

	"fuel-rl/internal/store"

	"github.com/gin-gonic/gin"
)

// ListCheckpoints handles GET /api/v1/checkpoints
func ListCheckpoints(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st == nil {
			respondError(c, http.StatusServiceUnavailable, "STORE_DISABLED", "checkpoint store is not configured", nil)
			return
		}
		infos, err := st.ListCheckpoints(c.Request.Context())
		if err != nil {
			respondDomainError(c, err)
			return
		}
		if infos == nil {
			infos = []store.CheckpointInfo{}
		}
		c.JSON(http.StatusOK, gin.H{"checkpoints": infos})
	}
}
