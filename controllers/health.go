package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthController struct {
	DB     Pinger
	Logger *zap.SugaredLogger
}

func (h HealthController) Status(c *gin.Context) {
	if err := h.DB.Ping(c.Request.Context()); err != nil {
		h.Logger.Errorw("Database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
