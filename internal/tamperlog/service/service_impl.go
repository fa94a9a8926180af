package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/config"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    tamperdomain.Repository
	Pricing *config.PricingConfigHolder
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    tamperdomain.Repository
	pricing *config.PricingConfigHolder
}

func NewService(p Params) tamperdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("tamperlog.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		pricing: p.Pricing,
	}
}

// Record appends the event, retrying the insert once. A second failure is
// surfaced: this log is the evidentiary trail for abuse investigation and
// must not drop events silently.
func (s *Service) Record(ctx context.Context, event tamperdomain.TamperingEvent) error {
	if strings.TrimSpace(event.PlanCode) == "" {
		return tamperdomain.ErrInvalidEvent
	}

	if event.ID == 0 {
		event.ID = s.genID.Generate()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.clock.Now()
	}

	err := s.repo.Insert(ctx, s.db, &event)
	if err != nil {
		s.log.Warn("tampering event insert failed, retrying",
			zap.String("plan_code", event.PlanCode),
			zap.Error(err),
		)
		if err = s.repo.Insert(ctx, s.db, &event); err != nil {
			s.log.Error("tampering event lost after retry",
				zap.String("plan_code", event.PlanCode),
				zap.Float64("delta", event.Delta),
				zap.Error(err),
			)
			return err
		}
	}

	s.log.Info("tampering event recorded",
		zap.String("plan_code", event.PlanCode),
		zap.Float64("attempted_amount", event.AttemptedAmount),
		zap.Float64("canonical_amount", event.CanonicalAmount),
		zap.Float64("delta", event.Delta),
		zap.String("currency", event.Currency),
	)
	return nil
}

func (s *Service) Statistics(ctx context.Context, req tamperdomain.StatisticsRequest) (tamperdomain.Stats, error) {
	start, end, err := s.resolveWindow(req)
	if err != nil {
		return tamperdomain.Stats{}, err
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.pricing.Get().TopTargetedPlans
	}

	stats, err := s.repo.Aggregate(ctx, s.db, start, end, topN)
	if err != nil {
		return tamperdomain.Stats{}, err
	}
	if stats.TopTargetedPlans == nil {
		stats.TopTargetedPlans = []tamperdomain.TargetedPlan{}
	}
	return stats, nil
}

func (s *Service) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	removed, err := s.repo.DeleteBefore(ctx, s.db, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info("tampering events purged",
		zap.Time("cutoff", cutoff),
		zap.Int64("removed", removed),
	)
	return removed, nil
}

func (s *Service) resolveWindow(req tamperdomain.StatisticsRequest) (time.Time, time.Time, error) {
	if req.Start != nil || req.End != nil {
		if req.Start == nil || req.End == nil || !req.Start.Before(*req.End) {
			return time.Time{}, time.Time{}, tamperdomain.ErrInvalidTimeRange
		}
		return *req.Start, *req.End, nil
	}

	now := s.clock.Now()
	switch req.Timeframe {
	case tamperdomain.TimeframeHour:
		return now.Add(-time.Hour), now, nil
	case tamperdomain.TimeframeDay:
		return now.Add(-24 * time.Hour), now, nil
	case tamperdomain.TimeframeWeek:
		return now.Add(-7 * 24 * time.Hour), now, nil
	default:
		return time.Time{}, time.Time{}, tamperdomain.ErrInvalidTimeframe
	}
}
