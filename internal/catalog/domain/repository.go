package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]PricingPlan, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*PricingPlan, error)
	ListAmountsForPlans(ctx context.Context, db *gorm.DB, planCodes []string) ([]PlanPriceAmount, error)
}
