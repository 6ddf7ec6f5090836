// Package server exposes the emulator's debug surface: health, the
// flow-status marker the companion app polls for UX parity, and
// prometheus metrics. A real device has no such surface; the emulator
// needs it for host-side development.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"device-core/internal/status"
)

func NewRouter(env string) *gin.Engine {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", healthCheck)
	r.GET("/status", flowStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "UP",
		"service": "device-emulator",
	})
}

func flowStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"flows": status.Snapshot(),
	})
}
