package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/priceguard/internal/catalogcache"
)

type Service interface {
	// Validate checks a submitted pricing claim against the canonical
	// catalog. Business rejections come back as an invalid Result with a
	// taxonomy code and a nil error; an error means the catalog could not be
	// consulted at all and the caller must fail closed.
	Validate(ctx context.Context, req Request) (Result, error)

	// ListValidatedPlans serves the display path: every active plan with its
	// pricing credential. Degrades to the last known good snapshot when a
	// rebuild fails.
	ListValidatedPlans(ctx context.Context) ([]catalogcache.SignedPlan, error)
	GetValidatedPlan(ctx context.Context, code string) (catalogcache.SignedPlan, error)

	// RefreshCache force-rebuilds and republishes the catalog snapshot.
	RefreshCache(ctx context.Context) (catalogcache.Snapshot, error)
	CacheStats(ctx context.Context) catalogcache.Stats
}

// ErrServiceUnavailable marks the fail-closed path: the catalog snapshot
// could not be fetched or rebuilt, so no verdict can be given.
var ErrServiceUnavailable = errors.New("validation_service_unavailable")
