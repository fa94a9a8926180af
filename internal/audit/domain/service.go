package domain

import (
	"context"
	"errors"
	"time"
)

type ListFilter struct {
	Action   string
	ActorID  string
	TargetID string
	StartAt  *time.Time
	EndAt    *time.Time
	Limit    int
}

type Service interface {
	// AuditLog appends one entry. Failures are logged but never propagate:
	// the audit trail must not change the outcome of the guarded operation.
	AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any)
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
