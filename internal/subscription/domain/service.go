package domain

import (
	"context"
	"errors"

	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
)

// StateProvider answers what tier a tenant is currently on. The second return
// is false when the tenant has no active subscription, which the purchase
// guard treats as a first purchase.
type StateProvider interface {
	CurrentTier(ctx context.Context, tenantID string) (catalogdomain.Tier, bool, error)
}

var ErrInvalidTenant = errors.New("invalid_tenant")
