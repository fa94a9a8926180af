// Package domain contains the tenant subscription state consulted by the
// purchase guard.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
)

// SubscriptionStatus represents lifecycle states for a tenant subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusPastDue  SubscriptionStatus = "PAST_DUE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusEnded    SubscriptionStatus = "ENDED"
)

// TenantSubscription records which plan tier a tenant currently holds.
type TenantSubscription struct {
	ID        snowflake.ID         `json:"id" gorm:"primaryKey"`
	TenantID  string               `json:"tenant_id" gorm:"type:text;not null;index"`
	PlanCode  string               `json:"plan_code" gorm:"type:text;not null"`
	Tier      catalogdomain.Tier   `json:"tier" gorm:"type:text;not null"`
	Status    SubscriptionStatus   `json:"status" gorm:"type:text;not null;index"`
	StartAt   time.Time            `json:"start_at" gorm:"not null"`
	EndAt     *time.Time           `json:"end_at,omitempty"`
	CreatedAt time.Time            `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time            `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TenantSubscription) TableName() string { return "tenant_subscriptions" }
