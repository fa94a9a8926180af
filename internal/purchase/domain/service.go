// Package domain defines the purchase guard contract. The guard sits between
// checkout and the billing collaborator: nothing is charged unless it allows
// the attempt.
package domain

import (
	"context"
	"errors"

	validationdomain "github.com/smallbiznis/priceguard/internal/validation/domain"
)

type Service interface {
	// ValidatePurchase re-validates the submitted pricing and enforces the
	// tier upgrade rule. Every attempt is written to the business audit
	// trail, allowed or not.
	ValidatePurchase(ctx context.Context, req validationdomain.Request) (validationdomain.Result, error)
}

// ErrInvalidRequest marks a purchase attempt with no identified actor or
// tenant. Anonymous purchases are not a thing.
var ErrInvalidRequest = errors.New("invalid_purchase_request")
