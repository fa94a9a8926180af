// Package domain contains persistence models for the canonical plan catalog.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Tier is a named subscription level with an implicit ordering.
type Tier string

const (
	TierFree         Tier = "FREE"
	TierPaidStandard Tier = "PAID_STANDARD"
	TierPaidPremium  Tier = "PAID_PREMIUM"
	TierEnterprise   Tier = "ENTERPRISE"
)

// Rank returns the upgrade ordering of the tier. Unknown tiers rank below
// everything so they can never satisfy an upgrade check.
func (t Tier) Rank() int {
	switch t {
	case TierFree:
		return 0
	case TierPaidStandard:
		return 1
	case TierPaidPremium:
		return 2
	case TierEnterprise:
		return 3
	default:
		return -1
	}
}

func (t Tier) Valid() bool { return t.Rank() >= 0 }

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// PlanLimits is the fixed entitlement schema bound into the signed credential
// indirectly through the plan row. Open maps are deliberately not used here.
type PlanLimits struct {
	Projects        int     `json:"projects"`
	Members         int     `json:"members"`
	StorageGB       float64 `json:"storage_gb"`
	APICallsPerDay  int64   `json:"api_calls_per_day"`
	CustomDomain    bool    `json:"custom_domain"`
	PrioritySupport bool    `json:"priority_support"`
}

// PricingPlan is one immutable-per-version row of the canonical catalog.
// Code is the stable key clients submit; the base row carries the
// authoritative price in the plan's base currency.
type PricingPlan struct {
	ID           snowflake.ID                    `json:"id" gorm:"primaryKey"`
	Code         string                          `json:"code" gorm:"type:text;not null;uniqueIndex"`
	Tier         Tier                            `json:"tier" gorm:"type:text;not null"`
	Name         string                          `json:"name" gorm:"type:text;not null"`
	Description  string                          `json:"description" gorm:"type:text"`
	PriceAmount  float64                         `json:"price_amount" gorm:"type:numeric;not null"`
	Currency     string                          `json:"currency" gorm:"type:text;not null"`
	BillingCycle BillingCycle                    `json:"billing_cycle" gorm:"type:text;not null"`
	Limits       datatypes.JSONType[PlanLimits]  `json:"limits" gorm:"type:jsonb"`
	Features     datatypes.JSONSlice[string]     `json:"features" gorm:"type:jsonb"`
	IsPopular    bool                            `json:"is_popular" gorm:"not null;default:false"`
	IsActive     bool                            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt    time.Time                       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time                       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	// SecondaryAmounts are denormalized display prices in non-base
	// currencies, loaded alongside the plan. The base row stays authoritative.
	SecondaryAmounts []PlanPriceAmount `json:"secondary_amounts,omitempty" gorm:"-"`
}

// TableName sets the database table name.
func (PricingPlan) TableName() string { return "pricing_plans" }

// AmountFor resolves the canonical amount for a currency code. Exactly one
// amount exists per (plan, currency).
func (p PricingPlan) AmountFor(currency string) (float64, bool) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return 0, false
	}
	if strings.EqualFold(p.Currency, code) {
		return p.PriceAmount, true
	}
	for _, secondary := range p.SecondaryAmounts {
		if strings.EqualFold(secondary.Currency, code) {
			return secondary.Amount, true
		}
	}
	return 0, false
}

// PlanPriceAmount is a per-currency price row for a plan.
type PlanPriceAmount struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	PlanCode  string       `json:"plan_code" gorm:"type:text;not null;uniqueIndex:ux_plan_price_amounts_plan_currency"`
	Currency  string       `json:"currency" gorm:"type:text;not null;uniqueIndex:ux_plan_price_amounts_plan_currency"`
	Amount    float64      `json:"amount" gorm:"type:numeric;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PlanPriceAmount) TableName() string { return "plan_price_amounts" }
