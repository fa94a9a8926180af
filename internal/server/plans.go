package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListPlans serves the public pricing page payload: every active plan with
// its pricing credential attached.
func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.validationSvc.ListValidatedPlans(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (s *Server) GetPlan(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	signed, err := s.validationSvc.GetValidatedPlan(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": signed})
}
