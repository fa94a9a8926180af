package signing

import (
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/config"
	"go.uber.org/fx"
)

func provideSigner(cfg config.Config, clk clock.Clock) (*Signer, error) {
	return NewSigner(Config{
		Secret:          cfg.PricingSecret,
		TTL:             cfg.CredentialTTL,
		FreshnessWindow: cfg.FreshnessWindow,
	}, clk)
}

var Module = fx.Module("signing",
	fx.Provide(provideSigner),
)
