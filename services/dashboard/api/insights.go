package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *server) handleGetInsights(c *gin.Context) {
	s.mutInsights.Lock()
	defer s.mutInsights.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"loading":  s.insightsLoading,
		"insights": s.lastInsights,
	})
}

// handleRequestInsights runs one analysis at a time on the current snapshot. The loading flag is cleared on every
// exit path.
func (s *server) handleRequestInsights(c *gin.Context) {
	if !s.tryStartAnalysis() {
		c.JSON(http.StatusConflict, gin.H{"error": "an analysis is already running"})
		return
	}
	defer s.endAnalysis()

	if s.insightLimiter != nil && !s.insightLimiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many analysis requests, try again later"})
		return
	}

	ctx := c.Request.Context()
	if s.insightTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.insightTimeout)
		defer cancel()
	}

	snapshot := s.store.Snapshot()
	log.Debug("requesting insights", "num errors", len(snapshot.Errors))
	insights := s.insights.Analyze(ctx, snapshot.Metrics, snapshot.Errors)

	s.mutInsights.Lock()
	s.lastInsights = insights
	s.mutInsights.Unlock()

	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (s *server) tryStartAnalysis() bool {
	s.mutInsights.Lock()
	defer s.mutInsights.Unlock()

	if s.insightsLoading {
		return false
	}
	s.insightsLoading = true

	return true
}

func (s *server) endAnalysis() {
	s.mutInsights.Lock()
	s.insightsLoading = false
	s.mutInsights.Unlock()
}
