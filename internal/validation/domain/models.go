// Package domain defines the validation request/result contract and the
// rejection code taxonomy shared by the HTTP edge and the purchase guard.
package domain

import (
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
)

// Rejection codes. Exactly one appears on an invalid result.
const (
	CodePlanNotFound             = "PLAN_NOT_FOUND"
	CodePlanInactive             = "PLAN_INACTIVE"
	CodeInvalidCurrency          = "INVALID_CURRENCY"
	CodeInvalidAmount            = "INVALID_AMOUNT"
	CodeSecurityValidationFailed = "SECURITY_VALIDATION_FAILED"
	CodeUpgradeNotAllowed        = "UPGRADE_NOT_ALLOWED"
	CodeValidationServiceError   = "VALIDATION_SERVICE_ERROR"
)

// OutcomeValid labels a successful validation in metrics.
const OutcomeValid = "OK"

// Request is a client-submitted pricing claim to check against the canonical
// catalog. ActorID and TenantID are optional on the pure validation path and
// mandatory on the purchase path.
type Request struct {
	PlanCode string  `json:"planCode"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	ActorID  string  `json:"actorId,omitempty"`
	TenantID string  `json:"tenantId,omitempty"`
}

// Result is the validation verdict. On success the validated fields carry the
// canonical values, never the client's submission.
type Result struct {
	IsValid           bool                       `json:"isValid"`
	ValidatedAmount   float64                    `json:"validatedAmount,omitempty"`
	ValidatedCurrency string                     `json:"validatedCurrency,omitempty"`
	Plan              *catalogdomain.PricingPlan `json:"plan,omitempty"`
	ErrorCode         string                     `json:"errorCode,omitempty"`
	ErrorMessage      string                     `json:"errorMessage,omitempty"`
}

// Reject builds an invalid result carrying a taxonomy code.
func Reject(code, message string) Result {
	return Result{IsValid: false, ErrorCode: code, ErrorMessage: message}
}
