package scheduler

import (
	"context"

	"github.com/smallbiznis/priceguard/internal/config"
	"go.uber.org/fx"
)

func provideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:     cfg.SchedulerRunInterval,
		TamperRetention: cfg.TamperRetention,
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(provideConfig),
	fx.Provide(New),
	fx.Invoke(NewScheduler),
)

func NewScheduler(lc fx.Lifecycle, sched *Scheduler) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sched.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
