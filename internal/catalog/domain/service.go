package domain

import (
	"context"
	"errors"
)

// Provider is the boundary contract to the canonical catalog. Its output is
// ground truth; nothing in this service mutates it.
type Provider interface {
	ListActivePlans(ctx context.Context) ([]PricingPlan, error)
	FindByCode(ctx context.Context, code string) (*PricingPlan, error)
}

var (
	ErrPlanNotFound = errors.New("plan_not_found")
	ErrInvalidCode  = errors.New("invalid_plan_code")
)
