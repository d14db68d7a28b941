package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hireflow/onboarding/internal/config"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the service and its backing stores are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok"}
	code := http.StatusOK

	if config.MongoDB != nil {
		if err := config.MongoDB.Client().Ping(ctx, readpref.Primary()); err != nil {
			status["status"] = "degraded"
			status["mongodb"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if config.Redis != nil {
		if err := config.Redis.Ping(ctx).Err(); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, status)
}
