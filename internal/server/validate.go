package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
)

// pricingClaimRequest is the wire shape for both validation endpoints.
// Amount is a pointer so a legitimate zero price binds as present.
type pricingClaimRequest struct {
	PlanCode string   `json:"planCode" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
	Currency string   `json:"currency" binding:"required"`
	ActorID  string   `json:"actorId"`
	TenantID string   `json:"tenantId"`
}

func (r pricingClaimRequest) toDomain() validationdomain.Request {
	return validationdomain.Request{
		PlanCode: r.PlanCode,
		Amount:   *r.Amount,
		Currency: r.Currency,
		ActorID:  r.ActorID,
		TenantID: r.TenantID,
	}
}

func (s *Server) ValidatePricing(c *gin.Context) {
	var req pricingClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.validationSvc.Validate(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(statusForResult(result), gin.H{"data": result})
}

func (s *Server) ValidatePurchase(c *gin.Context) {
	var req pricingClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.purchaseSvc.ValidatePurchase(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(statusForResult(result), gin.H{"data": result})
}

// statusForResult keeps business rejections at 200 so clients read the
// verdict from the body; only an absent plan is a 404.
func statusForResult(result validationdomain.Result) int {
	if result.ErrorCode == validationdomain.CodePlanNotFound {
		return http.StatusNotFound
	}
	return http.StatusOK
}
