package catalogcache

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/observability/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const snapshotKey = "priceguard:catalog:snapshot"

// SignedPlan pairs a catalog plan with its pricing credential. The credential
// is a cache artifact, reproducible on demand, never persisted on its own.
type SignedPlan struct {
	Plan       catalogdomain.PricingPlan `json:"plan"`
	Credential string                    `json:"credential"`
}

// Snapshot is one published version of the signed catalog.
type Snapshot struct {
	Plans       []SignedPlan `json:"plans"`
	LastUpdated time.Time    `json:"last_updated"`
	Version     string       `json:"version"`
}

// FindPlan locates a plan in the snapshot by its stable code.
func (s Snapshot) FindPlan(code string) (SignedPlan, bool) {
	for _, signed := range s.Plans {
		if signed.Plan.Code == code {
			return signed, true
		}
	}
	return SignedPlan{}, false
}

// Stats is the operational view of the cache.
type Stats struct {
	IsCached    bool       `json:"is_cached"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Version     string     `json:"version,omitempty"`
	PlanCount   int        `json:"plan_count"`
}

// Cache owns the published snapshot. It is constructed explicitly with its
// store and TTL; there is no ambient global instance.
type Cache struct {
	store   Store
	ttl     time.Duration
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.Metrics

	group singleflight.Group

	mu       sync.RWMutex
	lastGood *Snapshot
}

func New(store Store, ttl time.Duration, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   store,
		ttl:     ttl,
		clock:   clk,
		log:     log.Named("catalogcache"),
		metrics: m,
	}
}

// Get returns the current snapshot if one is published and still valid.
// Store errors are treated as misses: over-rebuilding costs performance,
// not correctness.
func (c *Cache) Get(ctx context.Context) (Snapshot, bool) {
	payload, ok, err := c.store.Get(ctx, snapshotKey)
	if err != nil {
		c.log.Warn("cache read failed, treating as miss", zap.Error(err))
		c.metrics.RecordCacheMiss(ctx)
		return Snapshot{}, false
	}
	if !ok {
		c.metrics.RecordCacheMiss(ctx)
		return Snapshot{}, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.log.Warn("cache payload corrupt, treating as miss", zap.Error(err))
		c.metrics.RecordCacheMiss(ctx)
		return Snapshot{}, false
	}

	if c.clock.Now().Sub(snapshot.LastUpdated) >= c.ttl {
		c.metrics.RecordCacheMiss(ctx)
		return Snapshot{}, false
	}

	c.metrics.RecordCacheHit(ctx)
	return snapshot, true
}

// GetOrBuild returns the published snapshot, rebuilding it through build on
// miss. Concurrent cold reads collapse into a single in-flight rebuild; a
// racing duplicate rebuild would still publish an equally valid snapshot.
func (c *Cache) GetOrBuild(ctx context.Context, build func(ctx context.Context) ([]SignedPlan, error)) (Snapshot, error) {
	if snapshot, ok := c.Get(ctx); ok {
		return snapshot, nil
	}

	result, err, _ := c.group.Do(snapshotKey, func() (interface{}, error) {
		if snapshot, ok := c.Get(ctx); ok {
			return snapshot, nil
		}
		plans, err := build(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		return c.Put(ctx, plans)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return result.(Snapshot), nil
}

// Put publishes a fully built snapshot atomically under a fresh version.
func (c *Cache) Put(ctx context.Context, plans []SignedPlan) (Snapshot, error) {
	now := c.clock.Now()
	snapshot := Snapshot{
		Plans:       plans,
		LastUpdated: now,
		Version:     newVersion(now),
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Snapshot{}, err
	}
	if err := c.store.Set(ctx, snapshotKey, payload, c.ttl); err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	c.lastGood = &snapshot
	c.mu.Unlock()

	c.metrics.RecordCacheRebuild(ctx)
	c.log.Info("catalog snapshot published",
		zap.String("version", snapshot.Version),
		zap.Int("plan_count", len(snapshot.Plans)),
	)
	return snapshot, nil
}

// Invalidate removes the published snapshot. The next Get is a miss. The
// last-known-good copy is kept for degraded display reads.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx, snapshotKey)
}

// LastKnownGood returns the most recent snapshot this process ever built,
// even after invalidation or expiry.
func (c *Cache) LastKnownGood() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastGood == nil {
		return Snapshot{}, false
	}
	return *c.lastGood, true
}

// Stats reports the operational view of the published snapshot.
func (c *Cache) Stats(ctx context.Context) Stats {
	snapshot, ok := c.Get(ctx)
	if !ok {
		return Stats{IsCached: false}
	}
	lastUpdated := snapshot.LastUpdated
	return Stats{
		IsCached:    true,
		LastUpdated: &lastUpdated,
		Version:     snapshot.Version,
		PlanCount:   len(snapshot.Plans),
	}
}

// newVersion builds a collision-resistant, time-ordered version string.
func newVersion(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}
