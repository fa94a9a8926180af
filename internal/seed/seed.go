// Package seed bootstraps the default plan catalog so a fresh install serves
// a working pricing page without any manual setup.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type planSeed struct {
	Code        string
	Tier        catalogdomain.Tier
	Name        string
	Description string
	Amount      float64
	Currency    string
	Cycle       catalogdomain.BillingCycle
	Limits      catalogdomain.PlanLimits
	Features    []string
	IsPopular   bool
	// USDAmount is the optional secondary display price.
	USDAmount *float64
}

func usd(amount float64) *float64 { return &amount }

func defaultPlans() []planSeed {
	return []planSeed{
		{
			Code:        "free-tier",
			Tier:        catalogdomain.TierFree,
			Name:        "Free",
			Description: "For individuals trying things out",
			Amount:      0,
			Currency:    "INR",
			Cycle:       catalogdomain.BillingCycleMonthly,
			Limits: catalogdomain.PlanLimits{
				Projects: 1, Members: 1, StorageGB: 1, APICallsPerDay: 1000,
			},
			Features: []string{"community_support"},
		},
		{
			Code:        "paid-standard-tier",
			Tier:        catalogdomain.TierPaidStandard,
			Name:        "Standard",
			Description: "For small teams",
			Amount:      59,
			Currency:    "INR",
			Cycle:       catalogdomain.BillingCycleMonthly,
			Limits: catalogdomain.PlanLimits{
				Projects: 5, Members: 5, StorageGB: 20, APICallsPerDay: 50000,
			},
			Features:  []string{"community_support", "email_support"},
			IsPopular: true,
			USDAmount: usd(0.99),
		},
		{
			Code:        "paid-premium-tier",
			Tier:        catalogdomain.TierPaidPremium,
			Name:        "Premium",
			Description: "For growing teams that need more room",
			Amount:      199,
			Currency:    "INR",
			Cycle:       catalogdomain.BillingCycleMonthly,
			Limits: catalogdomain.PlanLimits{
				Projects: 25, Members: 25, StorageGB: 100, APICallsPerDay: 500000,
				CustomDomain: true,
			},
			Features:  []string{"email_support", "custom_domain", "advanced_analytics"},
			USDAmount: usd(2.49),
		},
		{
			Code:        "enterprise-tier",
			Tier:        catalogdomain.TierEnterprise,
			Name:        "Enterprise",
			Description: "For organizations with dedicated needs",
			Amount:      999,
			Currency:    "INR",
			Cycle:       catalogdomain.BillingCycleMonthly,
			Limits: catalogdomain.PlanLimits{
				Projects: -1, Members: -1, StorageGB: 1000, APICallsPerDay: -1,
				CustomDomain: true, PrioritySupport: true,
			},
			Features:  []string{"priority_support", "custom_domain", "advanced_analytics", "sso"},
			USDAmount: usd(11.99),
		},
	}
}

// EnsurePlans seeds the default catalog. Existing plans are left untouched,
// so operator edits survive restarts.
func EnsurePlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seedPlan := range defaultPlans() {
			if err := ensurePlanTx(ctx, tx, node, seedPlan); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensurePlanTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, seedPlan planSeed) error {
	var existing catalogdomain.PricingPlan
	err := tx.WithContext(ctx).Where("code = ?", seedPlan.Code).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	plan := catalogdomain.PricingPlan{
		ID:           node.Generate(),
		Code:         seedPlan.Code,
		Tier:         seedPlan.Tier,
		Name:         seedPlan.Name,
		Description:  seedPlan.Description,
		PriceAmount:  seedPlan.Amount,
		Currency:     seedPlan.Currency,
		BillingCycle: seedPlan.Cycle,
		Limits:       datatypes.NewJSONType(seedPlan.Limits),
		Features:     datatypes.NewJSONSlice(seedPlan.Features),
		IsPopular:    seedPlan.IsPopular,
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(&plan).Error; err != nil {
		return err
	}

	if seedPlan.USDAmount != nil {
		amount := catalogdomain.PlanPriceAmount{
			ID:       node.Generate(),
			PlanCode: seedPlan.Code,
			Currency: "USD",
			Amount:   *seedPlan.USDAmount,
		}
		if err := tx.WithContext(ctx).Create(&amount).Error; err != nil {
			return err
		}
	}
	return nil
}
