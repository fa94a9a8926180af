package service

import (
	"context"

	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo catalogdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo catalogdomain.Repository
}

func NewService(p Params) catalogdomain.Provider {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

// ListActivePlans returns every active plan with its secondary currency
// amounts attached.
func (s *Service) ListActivePlans(ctx context.Context) ([]catalogdomain.PricingPlan, error) {
	plans, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return plans, nil
	}

	codes := make([]string, 0, len(plans))
	for _, plan := range plans {
		codes = append(codes, plan.Code)
	}
	amounts, err := s.repo.ListAmountsForPlans(ctx, s.db, codes)
	if err != nil {
		return nil, err
	}

	byPlan := make(map[string][]catalogdomain.PlanPriceAmount, len(plans))
	for _, amount := range amounts {
		byPlan[amount.PlanCode] = append(byPlan[amount.PlanCode], amount)
	}
	for i := range plans {
		plans[i].SecondaryAmounts = byPlan[plans[i].Code]
	}
	return plans, nil
}

func (s *Service) FindByCode(ctx context.Context, code string) (*catalogdomain.PricingPlan, error) {
	plan, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	amounts, err := s.repo.ListAmountsForPlans(ctx, s.db, []string{plan.Code})
	if err != nil {
		return nil, err
	}
	plan.SecondaryAmounts = amounts
	return plan, nil
}
