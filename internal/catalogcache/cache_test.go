package catalogcache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPlans() []SignedPlan {
	return []SignedPlan{
		{
			Plan: catalogdomain.PricingPlan{
				Code:         "free-tier",
				Tier:         catalogdomain.TierFree,
				Name:         "Free",
				PriceAmount:  0,
				Currency:     "INR",
				BillingCycle: catalogdomain.BillingCycleMonthly,
				IsActive:     true,
			},
			Credential: "credential-free",
		},
		{
			Plan: catalogdomain.PricingPlan{
				Code:         "paid-standard-tier",
				Tier:         catalogdomain.TierPaidStandard,
				Name:         "Standard",
				PriceAmount:  59,
				Currency:     "INR",
				BillingCycle: catalogdomain.BillingCycleMonthly,
				IsActive:     true,
			},
			Credential: "credential-standard",
		},
	}
}

func newTestCache(clk clock.Clock, ttl time.Duration) *Cache {
	return New(NewMemoryStore(clk), ttl, clk, zap.NewNop(), nil)
}

func TestPutThenGet(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx)
	assert.False(t, ok)

	published, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)
	assert.NotEmpty(t, published.Version)

	snapshot, ok := cache.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, published.Version, snapshot.Version)
	assert.Len(t, snapshot.Plans, 2)

	plan, found := snapshot.FindPlan("paid-standard-tier")
	require.True(t, found)
	assert.Equal(t, float64(59), plan.Plan.PriceAmount)
}

func TestGetMissAfterTTL(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	_, ok := cache.Get(ctx)
	assert.False(t, ok)
}

func TestVersionChangesOnEveryPut(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	first, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)
	second, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)

	assert.NotEqual(t, first.Version, second.Version)
}

func TestInvalidateIsImmediateMiss(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	_, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(ctx))

	stats := cache.Stats(ctx)
	assert.False(t, stats.IsCached)
	assert.Zero(t, stats.PlanCount)

	// last-known-good survives invalidation for degraded display reads
	snapshot, ok := cache.LastKnownGood()
	require.True(t, ok)
	assert.Len(t, snapshot.Plans, 2)
}

func TestStatsAfterRefresh(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	first, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	second, err := cache.Put(ctx, testPlans())
	require.NoError(t, err)

	stats := cache.Stats(ctx)
	assert.True(t, stats.IsCached)
	assert.Equal(t, second.Version, stats.Version)
	assert.NotEqual(t, first.Version, stats.Version)
	assert.Equal(t, 2, stats.PlanCount)
}

func TestGetOrBuildCollapsesConcurrentRebuilds(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)
	ctx := context.Background()

	var builds atomic.Int64
	build := func(ctx context.Context) ([]SignedPlan, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return testPlans(), nil
	}

	var wg sync.WaitGroup
	versions := make([]string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot, err := cache.GetOrBuild(ctx, build)
			assert.NoError(t, err)
			versions[i] = snapshot.Version
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), builds.Load())
	for _, version := range versions[1:] {
		assert.Equal(t, versions[0], version)
	}
}

func TestGetOrBuildPropagatesBuildError(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := newTestCache(clk, 5*time.Minute)

	wanted := errors.New("catalog unavailable")
	_, err := cache.GetOrBuild(context.Background(), func(ctx context.Context) ([]SignedPlan, error) {
		return nil, wanted
	})
	assert.ErrorIs(t, err, wanted)
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("backend down")
}
func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("backend down")
}

func TestStoreReadErrorIsAMiss(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	cache := New(failingStore{}, 5*time.Minute, clk, zap.NewNop(), nil)

	_, ok := cache.Get(context.Background())
	assert.False(t, ok)
}
