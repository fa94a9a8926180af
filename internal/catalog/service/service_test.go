package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/catalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestProvider(t *testing.T) (domain.Provider, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.PricingPlan{}, &domain.PlanPriceAmount{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	provider := NewService(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return provider, db, node
}

func seedPlan(t *testing.T, db *gorm.DB, node *snowflake.Node, code string, amount float64, active bool) {
	t.Helper()
	plan := domain.PricingPlan{
		ID:           node.Generate(),
		Code:         code,
		Tier:         domain.TierPaidStandard,
		Name:         code,
		PriceAmount:  amount,
		Currency:     "INR",
		BillingCycle: domain.BillingCycleMonthly,
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, db.Create(&plan).Error)
}

func TestListActivePlansAttachesSecondaryAmounts(t *testing.T) {
	provider, db, node := newTestProvider(t)
	seedPlan(t, db, node, "paid-standard-tier", 59, true)
	seedPlan(t, db, node, "retired-tier", 29, false)
	require.NoError(t, db.Create(&domain.PlanPriceAmount{
		ID: node.Generate(), PlanCode: "paid-standard-tier", Currency: "USD", Amount: 0.99,
	}).Error)

	plans, err := provider.ListActivePlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "paid-standard-tier", plans[0].Code)
	require.Len(t, plans[0].SecondaryAmounts, 1)
	assert.Equal(t, "USD", plans[0].SecondaryAmounts[0].Currency)

	amount, ok := plans[0].AmountFor("usd")
	require.True(t, ok)
	assert.Equal(t, 0.99, amount)
}

func TestFindByCode(t *testing.T) {
	provider, db, node := newTestProvider(t)
	seedPlan(t, db, node, "paid-standard-tier", 59, true)

	plan, err := provider.FindByCode(context.Background(), "paid-standard-tier")
	require.NoError(t, err)
	assert.Equal(t, float64(59), plan.PriceAmount)

	_, err = provider.FindByCode(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	_, err = provider.FindByCode(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}

func TestTierRanking(t *testing.T) {
	assert.Less(t, domain.TierFree.Rank(), domain.TierPaidStandard.Rank())
	assert.Less(t, domain.TierPaidStandard.Rank(), domain.TierPaidPremium.Rank())
	assert.Less(t, domain.TierPaidPremium.Rank(), domain.TierEnterprise.Rank())
	assert.Equal(t, -1, domain.Tier("ULTIMATE").Rank())
	assert.False(t, domain.Tier("ULTIMATE").Valid())
}
