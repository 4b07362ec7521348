package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers liveness endpoints.
func RegisterHealthRoutes(r *gin.Engine, deps Deps) {
	r.GET("/api/health", handleHealth(deps))
}

func handleHealth(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"observers": deps.Hub.SubscriberCount(),
			"time":      time.Now().UTC().Format(time.RFC3339),
		})
	}
}
