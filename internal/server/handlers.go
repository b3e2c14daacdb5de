package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "0.3.0"

// handleRoot handles the basic liveness check.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "termhost",
		"version": version,
	})
}

// handleHealth handles the detailed health check. Counts come from the
// controller loop, so a stalled loop shows up here as degraded.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	info, err := s.ctrl.Describe(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  err.Error(),
			"ptys":   s.ptys.Count(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"phase":     info.Phase,
		"sessions":  len(info.Sessions),
		"groups":    len(info.Groups),
		"theme":     s.themes.Current(),
		"recording": s.recorder != nil,
	})
}

// handleWorkspace returns the full workspace model as the controller
// sees it.
func (s *Server) handleWorkspace(c *gin.Context) {
	info, err := s.ctrl.Describe(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, info)
}

// handleNewSession creates a standalone session at the end of the list.
// The result arrives on the stream as a session-created message, so the
// request is only accepted here, never answered with the new id.
func (s *Server) handleNewSession(c *gin.Context) {
	s.ctrl.NewTerminal()
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// handleGetTheme reports the active theme and its color keys.
func (s *Server) handleGetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current": s.themes.Current(),
		"keys":    s.themes.Keys(),
	})
}

// handleSetTheme switches the active theme and restyles every session
// that carries a color key.
func (s *Server) handleSetTheme(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.themes.SetCurrent(req.Name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("Theme switched", zap.String("theme", req.Name))
	s.ctrl.OnThemeChanged()

	c.JSON(http.StatusOK, gin.H{"current": req.Name})
}
