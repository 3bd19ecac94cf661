package middleware

import (
	"fmt"
	"net/http"

	"fuel-rl/internal/api/models"
	"fuel-rl/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler middleware recovers panics into an INTERNAL_ERROR response
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		message := "An unexpected error occurred"
		if err, ok := recovered.(string); ok {
			message = err
		}
		log := logger.For("api")
		log.Error().
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprint(recovered)).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "INTERNAL_ERROR", Message: message},
		})
	})
}
