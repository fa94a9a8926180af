package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/priceguard/internal/audit/domain"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
)

// RefreshCatalogCache force-rebuilds the signed snapshot, typically after the
// admin collaborator changed the catalog.
func (s *Server) RefreshCatalogCache(c *gin.Context) {
	snapshot, err := s.validationSvc.RefreshCache(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"version":      snapshot.Version,
		"last_updated": snapshot.LastUpdated,
		"plan_count":   len(snapshot.Plans),
	}})
}

func (s *Server) CatalogCacheStatistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.validationSvc.CacheStats(c.Request.Context())})
}

func (s *Server) TamperingStatistics(c *gin.Context) {
	req := tamperdomain.StatisticsRequest{
		Timeframe: tamperdomain.Timeframe(strings.TrimSpace(c.DefaultQuery("timeframe", string(tamperdomain.TimeframeDay)))),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("start", "invalid_time", "start must be RFC3339"))
			return
		}
		req.Start = &start
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("end", "invalid_time", "end must be RFC3339"))
			return
		}
		req.End = &end
	}
	if raw := strings.TrimSpace(c.Query("topN")); raw != "" {
		topN, err := strconv.Atoi(raw)
		if err != nil || topN <= 0 {
			AbortWithError(c, newValidationError("topN", "invalid_top_n", "topN must be a positive integer"))
			return
		}
		req.TopN = topN
	}

	stats, err := s.tamperSvc.Statistics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	filter := auditdomain.ListFilter{
		Action:   strings.TrimSpace(c.Query("action")),
		ActorID:  strings.TrimSpace(c.Query("actorId")),
		TargetID: strings.TrimSpace(c.Query("targetId")),
	}

	if raw := strings.TrimSpace(c.Query("start")); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("start", "invalid_time", "start must be RFC3339"))
			return
		}
		filter.StartAt = &start
	}
	if raw := strings.TrimSpace(c.Query("end")); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("end", "invalid_time", "end must be RFC3339"))
			return
		}
		filter.EndAt = &end
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
			return
		}
		filter.Limit = limit
	}

	logs, err := s.auditSvc.List(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
