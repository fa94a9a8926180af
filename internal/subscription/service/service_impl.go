package service

import (
	"context"
	"errors"
	"strings"

	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	subdomain "github.com/smallbiznis/priceguard/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo subdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo subdomain.Repository
}

func NewService(p Params) subdomain.StateProvider {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("subscription.service"),
		repo: p.Repo,
	}
}

func (s *Service) CurrentTier(ctx context.Context, tenantID string) (catalogdomain.Tier, bool, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", false, subdomain.ErrInvalidTenant
	}

	sub, err := s.repo.FindActiveByTenant(ctx, s.db, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return sub.Tier, true, nil
}
