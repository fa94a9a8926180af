package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/priceguard/internal/audit"
	auditdomain "github.com/smallbiznis/priceguard/internal/audit/domain"
	"github.com/smallbiznis/priceguard/internal/catalog"
	"github.com/smallbiznis/priceguard/internal/catalogcache"
	"github.com/smallbiznis/priceguard/internal/config"
	"github.com/smallbiznis/priceguard/internal/observability"
	obsmiddleware "github.com/smallbiznis/priceguard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/priceguard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/priceguard/internal/observability/tracing"
	"github.com/smallbiznis/priceguard/internal/purchase"
	purchasedomain "github.com/smallbiznis/priceguard/internal/purchase/domain"
	"github.com/smallbiznis/priceguard/internal/signing"
	"github.com/smallbiznis/priceguard/internal/subscription"
	"github.com/smallbiznis/priceguard/internal/tamperlog"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	"github.com/smallbiznis/priceguard/internal/validation"
	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	catalog.Module,
	catalogcache.Module,
	signing.Module,
	subscription.Module,
	tamperlog.Module,
	validation.Module,
	purchase.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	validationSvc validationdomain.Service
	purchaseSvc   purchasedomain.Service
	tamperSvc     tamperdomain.Service
	auditSvc      auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	ValidationSvc validationdomain.Service
	PurchaseSvc   purchasedomain.Service
	TamperSvc     tamperdomain.Service
	AuditSvc      auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		validationSvc: p.ValidationSvc,
		purchaseSvc:   p.PurchaseSvc,
		tamperSvc:     p.TamperSvc,
		auditSvc:      p.AuditSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.GET("/plans", s.ListPlans)
	v1.GET("/plans/:code", s.GetPlan)
	v1.POST("/pricing/validate", s.ValidatePricing)
	v1.POST("/purchase/validate", s.ValidatePurchase)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/v1/admin")

	admin.POST("/cache/refresh", s.RefreshCatalogCache)
	admin.GET("/cache/statistics", s.CatalogCacheStatistics)
	admin.GET("/tampering/statistics", s.TamperingStatistics)
	admin.GET("/audit/logs", s.ListAuditLogs)
}
