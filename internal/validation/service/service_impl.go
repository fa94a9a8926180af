package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/catalogcache"
	"github.com/smallbiznis/priceguard/internal/config"
	"github.com/smallbiznis/priceguard/internal/observability/metrics"
	"github.com/smallbiznis/priceguard/internal/signing"
	tamperdomain "github.com/smallbiznis/priceguard/internal/tamperlog/domain"
	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Catalog catalogdomain.Provider
	Cache   *catalogcache.Cache
	Signer  *signing.Signer
	Tamper  tamperdomain.Service
	Pricing *config.PricingConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log         *zap.Logger
	catalog     catalogdomain.Provider
	cache       *catalogcache.Cache
	signer      *signing.Signer
	tamper      tamperdomain.Service
	pricing     *config.PricingConfigHolder
	metrics     *metrics.Metrics
	buildBudget time.Duration
}

func NewService(p Params) validationdomain.Service {
	return &Service{
		log:         p.Log.Named("validation.service"),
		catalog:     p.Catalog,
		cache:       p.Cache,
		signer:      p.Signer,
		tamper:      p.Tamper,
		pricing:     p.Pricing,
		metrics:     p.Metrics,
		buildBudget: p.Cfg.CatalogBuildBudget,
	}
}

func (s *Service) Validate(ctx context.Context, req validationdomain.Request) (validationdomain.Result, error) {
	code := strings.TrimSpace(req.PlanCode)
	if code == "" {
		return s.reject(ctx, validationdomain.CodePlanNotFound, "plan code is required"), nil
	}

	snapshot, err := s.cache.GetOrBuild(ctx, s.buildSignedPlans)
	if err != nil {
		s.metrics.RecordValidation(ctx, validationdomain.CodeValidationServiceError)
		s.log.Error("catalog snapshot unavailable", zap.Error(err))
		return validationdomain.Result{}, fmt.Errorf("%w: %v", validationdomain.ErrServiceUnavailable, err)
	}

	signed, ok := snapshot.FindPlan(code)
	if !ok {
		signed, ok, err = s.lookupOutsideSnapshot(ctx, code)
		if err != nil {
			s.metrics.RecordValidation(ctx, validationdomain.CodeValidationServiceError)
			return validationdomain.Result{}, fmt.Errorf("%w: %v", validationdomain.ErrServiceUnavailable, err)
		}
		if !ok {
			return s.reject(ctx, validationdomain.CodePlanNotFound, "plan "+code+" does not exist"), nil
		}
		if !signed.Plan.IsActive {
			return s.reject(ctx, validationdomain.CodePlanInactive, "plan "+code+" is no longer offered"), nil
		}
	}
	plan := signed.Plan

	canonicalAmount, ok := plan.AmountFor(req.Currency)
	if !ok {
		return s.reject(ctx, validationdomain.CodeInvalidCurrency,
			"plan "+code+" is not priced in "+strings.ToUpper(strings.TrimSpace(req.Currency))), nil
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))

	tolerance := s.pricing.Get().ToleranceFor(currency)
	delta := math.Abs(req.Amount - canonicalAmount)
	if delta > tolerance {
		s.recordTampering(ctx, req, plan, canonicalAmount, currency, delta)
		return s.reject(ctx, validationdomain.CodeInvalidAmount,
			fmt.Sprintf("submitted amount %.2f does not match the canonical price", req.Amount)), nil
	}

	// The snapshot came from a trusted store, but the credential is checked
	// again anyway. A failure here means cache corruption or a key rotation
	// mismatch, not client tampering, so the whole snapshot is withdrawn and
	// no tampering event is written.
	if !s.signer.Verify(plan.Code, plan.PriceAmount, plan.Currency, string(plan.BillingCycle), signed.Credential) {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Error("snapshot invalidation failed", zap.Error(err))
		}
		s.log.Error("cached credential failed verification, snapshot invalidated",
			zap.String("plan_code", plan.Code),
		)
		return s.reject(ctx, validationdomain.CodeSecurityValidationFailed,
			"pricing credential could not be verified"), nil
	}

	s.metrics.RecordValidation(ctx, validationdomain.OutcomeValid)
	return validationdomain.Result{
		IsValid:           true,
		ValidatedAmount:   canonicalAmount,
		ValidatedCurrency: currency,
		Plan:              &plan,
	}, nil
}

func (s *Service) ListValidatedPlans(ctx context.Context) ([]catalogcache.SignedPlan, error) {
	snapshot, err := s.cache.GetOrBuild(ctx, s.buildSignedPlans)
	if err != nil {
		// Display reads prefer availability: stale prices on a pricing page
		// beat an empty one, and any purchase is still re-validated.
		if lastGood, ok := s.cache.LastKnownGood(); ok {
			s.log.Warn("serving last known good snapshot", zap.String("version", lastGood.Version), zap.Error(err))
			return lastGood.Plans, nil
		}
		return nil, fmt.Errorf("%w: %v", validationdomain.ErrServiceUnavailable, err)
	}
	return snapshot.Plans, nil
}

func (s *Service) GetValidatedPlan(ctx context.Context, code string) (catalogcache.SignedPlan, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return catalogcache.SignedPlan{}, catalogdomain.ErrInvalidCode
	}

	plans, err := s.ListValidatedPlans(ctx)
	if err != nil {
		return catalogcache.SignedPlan{}, err
	}
	for _, signed := range plans {
		if signed.Plan.Code == code {
			return signed, nil
		}
	}
	return catalogcache.SignedPlan{}, catalogdomain.ErrPlanNotFound
}

func (s *Service) RefreshCache(ctx context.Context) (catalogcache.Snapshot, error) {
	plans, err := s.buildSignedPlans(ctx)
	if err != nil {
		return catalogcache.Snapshot{}, err
	}
	return s.cache.Put(ctx, plans)
}

func (s *Service) CacheStats(ctx context.Context) catalogcache.Stats {
	return s.cache.Stats(ctx)
}

// buildSignedPlans loads the active catalog and issues a fresh credential per
// plan. This is the only place credentials are minted for the snapshot. The
// build runs under its own deadline so a slow catalog read cannot hold every
// caller waiting on the rebuild.
func (s *Service) buildSignedPlans(ctx context.Context) ([]catalogcache.SignedPlan, error) {
	if s.buildBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.buildBudget)
		defer cancel()
	}

	plans, err := s.catalog.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	signed := make([]catalogcache.SignedPlan, 0, len(plans))
	for _, plan := range plans {
		credential, err := s.signer.Sign(plan.Code, plan.PriceAmount, plan.Currency, string(plan.BillingCycle))
		if err != nil {
			return nil, err
		}
		signed = append(signed, catalogcache.SignedPlan{Plan: plan, Credential: credential})
	}
	return signed, nil
}

// lookupOutsideSnapshot distinguishes a truly unknown plan from one that is
// retired or newer than the published snapshot.
func (s *Service) lookupOutsideSnapshot(ctx context.Context, code string) (catalogcache.SignedPlan, bool, error) {
	plan, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		if err == catalogdomain.ErrPlanNotFound || err == catalogdomain.ErrInvalidCode {
			return catalogcache.SignedPlan{}, false, nil
		}
		return catalogcache.SignedPlan{}, false, err
	}
	if !plan.IsActive {
		return catalogcache.SignedPlan{Plan: *plan}, true, nil
	}

	// Active but absent from the snapshot: the snapshot predates the plan.
	// Sign it directly so this request does not block on a full rebuild.
	s.log.Warn("active plan missing from snapshot, signing directly", zap.String("plan_code", code))
	credential, err := s.signer.Sign(plan.Code, plan.PriceAmount, plan.Currency, string(plan.BillingCycle))
	if err != nil {
		return catalogcache.SignedPlan{}, false, err
	}
	return catalogcache.SignedPlan{Plan: *plan, Credential: credential}, true, nil
}

func (s *Service) recordTampering(ctx context.Context, req validationdomain.Request, plan catalogdomain.PricingPlan, canonicalAmount float64, currency string, delta float64) {
	event := tamperdomain.TamperingEvent{
		PlanCode:        plan.Code,
		AttemptedAmount: req.Amount,
		CanonicalAmount: canonicalAmount,
		Delta:           delta,
		Currency:        currency,
	}
	if actor := strings.TrimSpace(req.ActorID); actor != "" {
		event.ActorID = &actor
	}
	if tenant := strings.TrimSpace(req.TenantID); tenant != "" {
		event.TenantID = &tenant
	}

	if err := s.tamper.Record(ctx, event); err != nil {
		s.log.Error("tampering event could not be recorded",
			zap.String("plan_code", plan.Code),
			zap.Float64("delta", delta),
			zap.Error(err),
		)
	}
	s.metrics.RecordTamperEvent(ctx, plan.Code)
}

func (s *Service) reject(ctx context.Context, code, message string) validationdomain.Result {
	s.metrics.RecordValidation(ctx, code)
	return validationdomain.Reject(code, message)
}
