package handler

import (
	"context"
	"net/http"
	"time"

	"tapneat/internal/core/ports"

	"github.com/gin-gonic/gin"
)

type depStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthCheck pings each dependency and reports aggregate liveness.
// Any failing dependency degrades the whole response to 503.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		deps := make(map[string]depStatus, len(checkers))
		healthy := true
		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				healthy = false
				deps[checker.Name()] = depStatus{Status: "down", Error: err.Error()}
				continue
			}
			deps[checker.Name()] = depStatus{Status: "up"}
		}

		status := "healthy"
		code := http.StatusOK
		if !healthy {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "dependencies": deps})
	}
}
