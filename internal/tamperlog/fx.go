package tamperlog

import (
	"github.com/smallbiznis/priceguard/internal/tamperlog/repository"
	"github.com/smallbiznis/priceguard/internal/tamperlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tamperlog.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
