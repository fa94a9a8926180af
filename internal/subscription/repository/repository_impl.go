package repository

import (
	"context"

	"github.com/smallbiznis/priceguard/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindActiveByTenant(ctx context.Context, db *gorm.DB, tenantID string) (*domain.TenantSubscription, error) {
	var sub domain.TenantSubscription
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, domain.SubscriptionStatusActive).
		Order("start_at desc, id desc").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
