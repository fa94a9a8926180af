package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert writes one independent row per event. There is deliberately no
// read-modify-write here, so concurrent writers cannot lose updates.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.TamperingEvent) error {
	if event == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO tampering_events (
			id, actor_id, tenant_id, plan_code, attempted_amount,
			canonical_amount, delta, currency, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ActorID,
		event.TenantID,
		event.PlanCode,
		event.AttemptedAmount,
		event.CanonicalAmount,
		event.Delta,
		event.Currency,
		event.CreatedAt,
	).Error
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, start, end time.Time, topN int) (domain.Stats, error) {
	var totals struct {
		TotalAttempts int64
		UniqueUsers   int64
		AverageDelta  float64
	}
	err := db.WithContext(ctx).
		Model(&domain.TamperingEvent{}).
		Select(
			"COUNT(*) AS total_attempts, "+
				"COUNT(DISTINCT actor_id) AS unique_users, "+
				"COALESCE(AVG(delta), 0) AS average_delta",
		).
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Scan(&totals).Error
	if err != nil {
		return domain.Stats{}, err
	}

	var top []domain.TargetedPlan
	err = db.WithContext(ctx).
		Model(&domain.TamperingEvent{}).
		Select(
			"plan_code, "+
				"COUNT(*) AS attempts, "+
				"MAX(created_at) AS last_attempt",
		).
		Where("created_at >= ? AND created_at <= ?", start.UTC(), end.UTC()).
		Group("plan_code").
		Order("attempts DESC, last_attempt DESC").
		Limit(topN).
		Scan(&top).Error
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		TotalAttempts:    totals.TotalAttempts,
		UniqueUsers:      totals.UniqueUsers,
		AverageDelta:     totals.AverageDelta,
		TopTargetedPlans: top,
	}, nil
}

func (r *repo) DeleteBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("created_at < ?", cutoff.UTC()).
		Delete(&domain.TamperingEvent{})
	return result.RowsAffected, result.Error
}
