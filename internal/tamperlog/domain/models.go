// Package domain contains the append-only tampering event records and their
// aggregate views.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TamperingEvent is one detected mismatch between a client-submitted price
// and the canonical one. Rows are written once and never mutated; retention
// cleanup is the only deletion path.
type TamperingEvent struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	ActorID         *string      `json:"actor_id,omitempty" gorm:"type:text;index"`
	TenantID        *string      `json:"tenant_id,omitempty" gorm:"type:text;index"`
	PlanCode        string       `json:"plan_code" gorm:"type:text;not null;index"`
	AttemptedAmount float64      `json:"attempted_amount" gorm:"type:numeric;not null"`
	CanonicalAmount float64      `json:"canonical_amount" gorm:"type:numeric;not null"`
	Delta           float64      `json:"delta" gorm:"type:numeric;not null"`
	Currency        string       `json:"currency" gorm:"type:text;not null"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;index;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TamperingEvent) TableName() string { return "tampering_events" }

// TargetedPlan is one row of the most-targeted ranking.
type TargetedPlan struct {
	PlanCode    string    `json:"plan_code"`
	Attempts    int64     `json:"attempts"`
	LastAttempt time.Time `json:"last_attempt"`
}

// Stats aggregates tampering activity over a window.
type Stats struct {
	TotalAttempts    int64          `json:"total_attempts"`
	UniqueUsers      int64          `json:"unique_users"`
	AverageDelta     float64        `json:"average_delta"`
	TopTargetedPlans []TargetedPlan `json:"top_targeted_plans"`
}
