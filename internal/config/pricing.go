package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PricingConfig controls amount comparison and statistics behavior.
type PricingConfig struct {
	// DefaultTolerance absorbs floating-point representation noise when
	// comparing a submitted amount against the canonical one. It is not a
	// discount mechanism.
	DefaultTolerance float64 `mapstructure:"defaultTolerance"`
	// CurrencyTolerances overrides the default per ISO currency code, so
	// zero-decimal currencies can carry a different bound.
	CurrencyTolerances map[string]float64 `mapstructure:"currencyTolerances"`
	// TopTargetedPlans caps the plan ranking returned by tampering statistics.
	TopTargetedPlans int `mapstructure:"topTargetedPlans"`
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		DefaultTolerance: 0.01,
		CurrencyTolerances: map[string]float64{
			"JPY": 1,
			"KRW": 1,
		},
		TopTargetedPlans: 5,
	}
}

// ToleranceFor resolves the amount tolerance for a currency code.
func (c PricingConfig) ToleranceFor(currency string) float64 {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if v, ok := c.CurrencyTolerances[code]; ok && v >= 0 {
		return v
	}
	return c.DefaultTolerance
}

type PricingConfigHolder struct {
	current atomic.Value // holds PricingConfig
}

// NewPricingConfigHolder loads pricing.yml and keeps it hot-reloaded.
func NewPricingConfigHolder() (*PricingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/priceguard/config")
	v.AddConfigPath("/etc/priceguard")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PRICEGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPricingConfig()
		v.SetDefault("pricing.defaultTolerance", defaults.DefaultTolerance)
		v.SetDefault("pricing.currencyTolerances", defaults.CurrencyTolerances)
		v.SetDefault("pricing.topTargetedPlans", defaults.TopTargetedPlans)
	}

	var cfg PricingConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizePricingConfig(cfg)
	if err := validatePricingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		updated = normalizePricingConfig(updated)
		if err := validatePricingConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPricingConfigHolder wraps a fixed config with no file watching.
func NewStaticPricingConfigHolder(cfg PricingConfig) *PricingConfigHolder {
	holder := &PricingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PricingConfigHolder) Get() PricingConfig {
	return h.current.Load().(PricingConfig)
}

// normalizePricingConfig uppercases currency codes. Viper lowercases nested
// map keys read from a file, and ToleranceFor looks codes up uppercase.
func normalizePricingConfig(cfg PricingConfig) PricingConfig {
	if len(cfg.CurrencyTolerances) == 0 {
		return cfg
	}
	normalized := make(map[string]float64, len(cfg.CurrencyTolerances))
	for code, tol := range cfg.CurrencyTolerances {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = tol
	}
	cfg.CurrencyTolerances = normalized
	return cfg
}

func validatePricingConfig(cfg PricingConfig) error {
	if cfg.DefaultTolerance < 0 {
		return errors.New("pricing.defaultTolerance cannot be negative")
	}
	for code, tol := range cfg.CurrencyTolerances {
		if tol < 0 {
			return errors.New("pricing.currencyTolerances." + code + " cannot be negative")
		}
	}
	if cfg.TopTargetedPlans <= 0 {
		return errors.New("pricing.topTargetedPlans must be positive")
	}
	return nil
}
