package service

import (
	"context"
	"fmt"
	"strings"

	auditdomain "github.com/smallbiznis/priceguard/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/priceguard/internal/catalog/domain"
	"github.com/smallbiznis/priceguard/internal/observability/metrics"
	purchasedomain "github.com/smallbiznis/priceguard/internal/purchase/domain"
	subdomain "github.com/smallbiznis/priceguard/internal/subscription/domain"
	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log           *zap.Logger
	Validator     validationdomain.Service
	Subscriptions subdomain.StateProvider
	Audit         auditdomain.Service
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	validator     validationdomain.Service
	subscriptions subdomain.StateProvider
	audit         auditdomain.Service
	metrics       *metrics.Metrics
}

func NewService(p Params) purchasedomain.Service {
	return &Service{
		log:           p.Log.Named("purchase.service"),
		validator:     p.Validator,
		subscriptions: p.Subscriptions,
		audit:         p.Audit,
		metrics:       p.Metrics,
	}
}

func (s *Service) ValidatePurchase(ctx context.Context, req validationdomain.Request) (validationdomain.Result, error) {
	req.ActorID = strings.TrimSpace(req.ActorID)
	req.TenantID = strings.TrimSpace(req.TenantID)
	if req.ActorID == "" || req.TenantID == "" {
		return validationdomain.Result{}, purchasedomain.ErrInvalidRequest
	}

	result, err := s.validator.Validate(ctx, req)
	if err != nil {
		s.recordAttempt(ctx, req, validationdomain.CodeValidationServiceError)
		return validationdomain.Result{}, err
	}
	if !result.IsValid {
		s.recordAttempt(ctx, req, result.ErrorCode)
		return result, nil
	}

	currentTier, hasSubscription, err := s.subscriptions.CurrentTier(ctx, req.TenantID)
	if err != nil {
		s.recordAttempt(ctx, req, validationdomain.CodeValidationServiceError)
		s.log.Error("subscription state unavailable",
			zap.String("tenant_id", req.TenantID),
			zap.Error(err),
		)
		return validationdomain.Result{}, fmt.Errorf("%w: %v", validationdomain.ErrServiceUnavailable, err)
	}

	targetTier := result.Plan.Tier
	if !upgradeAllowed(currentTier, hasSubscription, targetTier) {
		s.recordAttempt(ctx, req, validationdomain.CodeUpgradeNotAllowed)
		return validationdomain.Reject(validationdomain.CodeUpgradeNotAllowed,
			fmt.Sprintf("cannot move from %s to %s", currentTier, targetTier)), nil
	}

	s.recordAttempt(ctx, req, validationdomain.OutcomeValid)
	return result, nil
}

// upgradeAllowed enforces the tier rule: strictly higher rank, a downgrade to
// the free tier, or a first purchase with no subscription on file.
func upgradeAllowed(current catalogdomain.Tier, hasSubscription bool, target catalogdomain.Tier) bool {
	if !hasSubscription {
		return true
	}
	if target == catalogdomain.TierFree {
		return true
	}
	return target.Rank() > current.Rank()
}

func (s *Service) recordAttempt(ctx context.Context, req validationdomain.Request, outcome string) {
	action := auditdomain.ActionPurchaseRejected
	if outcome == validationdomain.OutcomeValid {
		action = auditdomain.ActionPurchaseAllowed
	}

	s.audit.AuditLog(ctx,
		string(auditdomain.ActorTypeUser),
		&req.ActorID,
		action,
		"pricing_plan",
		&req.PlanCode,
		map[string]any{
			"tenant_id": req.TenantID,
			"amount":    req.Amount,
			"currency":  strings.ToUpper(strings.TrimSpace(req.Currency)),
			"outcome":   outcome,
		},
	)
	s.metrics.RecordPurchaseCheck(ctx, outcome)
}
