package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// FindActiveByTenant returns the most recent ACTIVE subscription for the
	// tenant, or gorm.ErrRecordNotFound.
	FindActiveByTenant(ctx context.Context, db *gorm.DB, tenantID string) (*TenantSubscription, error)
}
