package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/priceguard/internal/audit/domain"
	auditrepo "github.com/smallbiznis/priceguard/internal/audit/repository"
	auditservice "github.com/smallbiznis/priceguard/internal/audit/service"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/priceguard/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/priceguard/internal/catalog/service"
	"github.com/smallbiznis/priceguard/internal/catalogcache"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/config"
	purchasedomain "github.com/smallbiznis/priceguard/internal/purchase/domain"
	"github.com/smallbiznis/priceguard/internal/signing"
	subdomain "github.com/smallbiznis/priceguard/internal/subscription/domain"
	subrepo "github.com/smallbiznis/priceguard/internal/subscription/repository"
	subservice "github.com/smallbiznis/priceguard/internal/subscription/service"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	tamperrepo "github.com/smallbiznis/priceguard/internal/tamperlog/repository"
	tamperservice "github.com/smallbiznis/priceguard/internal/tamperlog/service"
	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
	validationservice "github.com/smallbiznis/priceguard/internal/validation/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  purchasedomain.Service
	db   *gorm.DB
	fake *clock.FakeClock
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.PricingPlan{},
		&catalogdomain.PlanPriceAmount{},
		&tamperdomain.TamperingEvent{},
		&subdomain.TenantSubscription{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	pricing := config.NewStaticPricingConfigHolder(config.DefaultPricingConfig())

	catalog := catalogservice.NewService(catalogservice.Params{DB: db, Log: log, Repo: catalogrepo.Provide()})

	signer, err := signing.NewSigner(signing.Config{
		Secret: "test-secret-at-least-long-enough",
		TTL:    5 * time.Minute,
	}, fake)
	require.NoError(t, err)

	cache := catalogcache.New(catalogcache.NewMemoryStore(fake), 5*time.Minute, fake, log, nil)

	tamper := tamperservice.NewService(tamperservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: tamperrepo.Provide(), Pricing: pricing,
	})

	validator := validationservice.NewService(validationservice.Params{
		Log: log, Catalog: catalog, Cache: cache, Signer: signer, Tamper: tamper, Pricing: pricing,
	})

	subscriptions := subservice.NewService(subservice.Params{DB: db, Log: log, Repo: subrepo.Provide()})

	audit := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake, Repo: auditrepo.Provide(),
	})

	svc := NewService(Params{
		Log:           log,
		Validator:     validator,
		Subscriptions: subscriptions,
		Audit:         audit,
	})

	return &fixture{svc: svc, db: db, fake: fake, node: node}
}

func (f *fixture) seedPlan(t *testing.T, code string, tier catalogdomain.Tier, amount float64) {
	t.Helper()
	plan := catalogdomain.PricingPlan{
		ID:           f.node.Generate(),
		Code:         code,
		Tier:         tier,
		Name:         code,
		PriceAmount:  amount,
		Currency:     "INR",
		BillingCycle: catalogdomain.BillingCycleMonthly,
		IsActive:     true,
		CreatedAt:    f.fake.Now(),
		UpdatedAt:    f.fake.Now(),
	}
	require.NoError(t, f.db.Create(&plan).Error)
}

func (f *fixture) seedSubscription(t *testing.T, tenantID, planCode string, tier catalogdomain.Tier) {
	t.Helper()
	sub := subdomain.TenantSubscription{
		ID:        f.node.Generate(),
		TenantID:  tenantID,
		PlanCode:  planCode,
		Tier:      tier,
		Status:    subdomain.SubscriptionStatusActive,
		StartAt:   f.fake.Now().Add(-24 * time.Hour),
		CreatedAt: f.fake.Now(),
		UpdatedAt: f.fake.Now(),
	}
	require.NoError(t, f.db.Create(&sub).Error)
}

func (f *fixture) seedCatalog(t *testing.T) {
	t.Helper()
	f.seedPlan(t, "free-tier", catalogdomain.TierFree, 0)
	f.seedPlan(t, "paid-standard-tier", catalogdomain.TierPaidStandard, 59)
	f.seedPlan(t, "paid-premium-tier", catalogdomain.TierPaidPremium, 199)
	f.seedPlan(t, "enterprise-tier", catalogdomain.TierEnterprise, 999)
}

func (f *fixture) auditEntries(t *testing.T) []auditdomain.AuditLog {
	t.Helper()
	var entries []auditdomain.AuditLog
	require.NoError(t, f.db.Find(&entries).Error)
	return entries
}

func request(planCode string, amount float64) validationdomain.Request {
	return validationdomain.Request{
		PlanCode: planCode,
		Amount:   amount,
		Currency: "INR",
		ActorID:  "user_1",
		TenantID: "tenant_1",
	}
}

func TestFirstPurchaseAllowed(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-standard-tier", 59))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, float64(59), result.ValidatedAmount)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.ActionPurchaseAllowed, entries[0].Action)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, "user_1", *entries[0].ActorID)
	require.NotNil(t, entries[0].TenantID)
	assert.Equal(t, "tenant_1", *entries[0].TenantID)
}

func TestUpgradeToHigherTierAllowed(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	f.seedSubscription(t, "tenant_1", "paid-standard-tier", catalogdomain.TierPaidStandard)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-premium-tier", 199))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestSameTierRejected(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	f.seedSubscription(t, "tenant_1", "paid-standard-tier", catalogdomain.TierPaidStandard)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-standard-tier", 59))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, validationdomain.CodeUpgradeNotAllowed, result.ErrorCode)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.ActionPurchaseRejected, entries[0].Action)
	assert.Equal(t, validationdomain.CodeUpgradeNotAllowed, entries[0].Metadata["outcome"])
}

func TestLowerPaidTierRejected(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	f.seedSubscription(t, "tenant_1", "paid-premium-tier", catalogdomain.TierPaidPremium)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-standard-tier", 59))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, validationdomain.CodeUpgradeNotAllowed, result.ErrorCode)
}

func TestDowngradeToFreeAllowed(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	f.seedSubscription(t, "tenant_1", "enterprise-tier", catalogdomain.TierEnterprise)

	result, err := f.svc.ValidatePurchase(context.Background(), request("free-tier", 0))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestMostRecentSubscriptionWins(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	// Older premium subscription superseded by a newer standard one.
	old := subdomain.TenantSubscription{
		ID:       f.node.Generate(),
		TenantID: "tenant_1", PlanCode: "paid-premium-tier",
		Tier: catalogdomain.TierPaidPremium, Status: subdomain.SubscriptionStatusActive,
		StartAt: f.fake.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, f.db.Create(&old).Error)
	f.seedSubscription(t, "tenant_1", "paid-standard-tier", catalogdomain.TierPaidStandard)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-premium-tier", 199))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestTamperedAmountRejectedAndAudited(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-premium-tier", 1))
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, validationdomain.CodeInvalidAmount, result.ErrorCode)

	var tamperCount int64
	require.NoError(t, f.db.Model(&tamperdomain.TamperingEvent{}).Count(&tamperCount).Error)
	assert.Equal(t, int64(1), tamperCount)

	entries := f.auditEntries(t)
	require.Len(t, entries, 1)
	assert.Equal(t, auditdomain.ActionPurchaseRejected, entries[0].Action)
	assert.Equal(t, validationdomain.CodeInvalidAmount, entries[0].Metadata["outcome"])
}

func TestMissingActorOrTenantRejected(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)

	req := request("free-tier", 0)
	req.ActorID = " "
	_, err := f.svc.ValidatePurchase(context.Background(), req)
	assert.ErrorIs(t, err, purchasedomain.ErrInvalidRequest)

	req = request("free-tier", 0)
	req.TenantID = ""
	_, err = f.svc.ValidatePurchase(context.Background(), req)
	assert.ErrorIs(t, err, purchasedomain.ErrInvalidRequest)

	// Shape failures never reach the audit trail.
	assert.Empty(t, f.auditEntries(t))
}

func TestCanceledSubscriptionTreatedAsFirstPurchase(t *testing.T) {
	f := newFixture(t)
	f.seedCatalog(t)
	sub := subdomain.TenantSubscription{
		ID:       f.node.Generate(),
		TenantID: "tenant_1", PlanCode: "enterprise-tier",
		Tier: catalogdomain.TierEnterprise, Status: subdomain.SubscriptionStatusCanceled,
		StartAt: f.fake.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, f.db.Create(&sub).Error)

	result, err := f.svc.ValidatePurchase(context.Background(), request("paid-standard-tier", 59))
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}
