package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *TamperingEvent) error
	Aggregate(ctx context.Context, db *gorm.DB, start, end time.Time, topN int) (Stats, error)
	DeleteBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error)
}
