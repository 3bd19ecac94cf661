package handlers

import (
	"net/http"

	"fuel-rl/internal/policy"

	"github.com/gin-gonic/gin"
)

// ListPolicies handles GET /api/v1/policies
func ListPolicies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"policies": policy.Catalog()})
}
