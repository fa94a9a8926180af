package seed

import (
	"testing"

	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsurePlansIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogdomain.PricingPlan{}, &catalogdomain.PlanPriceAmount{}))

	require.NoError(t, EnsurePlans(db))
	require.NoError(t, EnsurePlans(db))

	var planCount int64
	require.NoError(t, db.Model(&catalogdomain.PricingPlan{}).Count(&planCount).Error)
	assert.Equal(t, int64(4), planCount)

	var amountCount int64
	require.NoError(t, db.Model(&catalogdomain.PlanPriceAmount{}).Count(&amountCount).Error)
	assert.Equal(t, int64(3), amountCount)

	var free catalogdomain.PricingPlan
	require.NoError(t, db.Where("code = ?", "free-tier").First(&free).Error)
	assert.Equal(t, catalogdomain.TierFree, free.Tier)
	assert.Equal(t, float64(0), free.PriceAmount)
	assert.Equal(t, "INR", free.Currency)
	assert.True(t, free.IsActive)
}

func TestEnsurePlansKeepsOperatorEdits(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalogdomain.PricingPlan{}, &catalogdomain.PlanPriceAmount{}))

	require.NoError(t, EnsurePlans(db))
	require.NoError(t, db.Model(&catalogdomain.PricingPlan{}).
		Where("code = ?", "paid-standard-tier").
		Update("price_amount", 79).Error)

	require.NoError(t, EnsurePlans(db))

	var plan catalogdomain.PricingPlan
	require.NoError(t, db.Where("code = ?", "paid-standard-tier").First(&plan).Error)
	assert.Equal(t, float64(79), plan.PriceAmount)
}
