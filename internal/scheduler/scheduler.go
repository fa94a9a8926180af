// Package scheduler runs the retention loop. Purging old tampering events is
// the one write that never happens on the request path.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/priceguard/internal/clock"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler dependencies are incomplete")

type Params struct {
	fx.In

	Log       *zap.Logger
	Clock     clock.Clock
	TamperSvc tamperdomain.Service
	Config    Config `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	tamperSvc tamperdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.TamperSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler"),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		tamperSvc: p.TamperSvc,
	}, nil
}

// RunOnce executes one retention pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.TamperRetention)
	removed, err := s.tamperSvc.PurgeBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.log.Info("retention pass complete",
			zap.Time("cutoff", cutoff),
			zap.Int64("removed", removed),
		)
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("retention run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
