package subscription

import (
	"github.com/smallbiznis/priceguard/internal/subscription/repository"
	"github.com/smallbiznis/priceguard/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
