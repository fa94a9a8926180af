package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/priceguard/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]domain.PricingPlan, error) {
	var plans []domain.PricingPlan
	err := db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id asc").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.PricingPlan, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	var plan domain.PricingPlan
	err := db.WithContext(ctx).Where("code = ?", code).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repo) ListAmountsForPlans(ctx context.Context, db *gorm.DB, planCodes []string) ([]domain.PlanPriceAmount, error) {
	if len(planCodes) == 0 {
		return nil, nil
	}
	var amounts []domain.PlanPriceAmount
	err := db.WithContext(ctx).
		Where("plan_code IN ?", planCodes).
		Order("plan_code asc, currency asc").
		Find(&amounts).Error
	if err != nil {
		return nil, err
	}
	return amounts, nil
}
