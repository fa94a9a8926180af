package migration

import (
	auditdomain "github.com/smallbiznis/priceguard/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/config"
	"github.com/smallbiznis/priceguard/internal/seed"
	subdomain "github.com/smallbiznis/priceguard/internal/subscription/domain"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		switch cfg.DBType {
		case "postgres":
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		default:
			// mysql and sqlite development setups derive the schema from the
			// models instead of the versioned SQL.
			if err := conn.AutoMigrate(
				&catalogdomain.PricingPlan{},
				&catalogdomain.PlanPriceAmount{},
				&subdomain.TenantSubscription{},
				&tamperdomain.TamperingEvent{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsurePlans(conn)
	}),
)
