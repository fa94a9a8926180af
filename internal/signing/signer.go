// Package signing issues and verifies the tamper-evident pricing credential
// that binds a plan's security-relevant fields to a server-held secret.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/smallbiznis/priceguard/internal/clock"
	"golang.org/x/crypto/hkdf"
)

const (
	credentialAlg = "HS256"
	credentialTyp = "PPC"

	// keyInfo namespaces the derived key so the master secret can be shared
	// with other signing purposes without cross-protocol reuse.
	keyInfo = "priceguard/pricing-credential/v1"
)

var (
	ErrMissingSecret = errors.New("signing secret is required")
	ErrInvalidTTL    = errors.New("credential ttl must be positive")
)

// Config controls credential issuance and acceptance.
type Config struct {
	Secret string
	// TTL is the credential lifetime. Minutes, not hours.
	TTL time.Duration
	// FreshnessWindow is the maximum accepted credential age independent of
	// the explicit expiry. Defaults to TTL.
	FreshnessWindow time.Duration
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type claims struct {
	PlanID       string  `json:"plan_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	BillingCycle string  `json:"billing_cycle"`
	IssuedAt     int64   `json:"iat"`
	ExpiresAt    int64   `json:"exp"`
}

// Signer signs and verifies pricing credentials. Verification is a pure
// function of the credential, the supplied fields and the derived key.
type Signer struct {
	key       []byte
	ttl       time.Duration
	freshness time.Duration
	clock     clock.Clock
}

// NewSigner derives the signing key from the master secret via HKDF-SHA256.
func NewSigner(cfg Config, clk clock.Clock) (*Signer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		return nil, ErrInvalidTTL
	}

	freshness := cfg.FreshnessWindow
	if freshness <= 0 {
		freshness = cfg.TTL
	}

	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}

	return &Signer{
		key:       key,
		ttl:       cfg.TTL,
		freshness: freshness,
		clock:     clk,
	}, nil
}

// Sign binds exactly the four security-relevant plan fields plus issuance
// time and expiry into a compact credential.
func (s *Signer) Sign(planID string, amount float64, currency, billingCycle string) (string, error) {
	now := s.clock.Now()
	payload := claims{
		PlanID:       strings.TrimSpace(planID),
		Amount:       amount,
		Currency:     strings.ToUpper(strings.TrimSpace(currency)),
		BillingCycle: strings.TrimSpace(billingCycle),
		IssuedAt:     now.Unix(),
		ExpiresAt:    now.Add(s.ttl).Unix(),
	}

	headerJSON, err := json.Marshal(header{Alg: credentialAlg, Typ: credentialTyp})
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON)
	tag := s.computeTag(signingInput)

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(tag), nil
}

// Verify reports whether the credential is authentic, unexpired, fresh, and
// bound to exactly the fields passed in. Malformed credentials are false,
// never errors.
func (s *Signer) Verify(planID string, amount float64, currency, billingCycle, credential string) bool {
	parts := strings.Split(credential, ".")
	if len(parts) != 3 {
		return false
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	var hdr header
	if err := json.Unmarshal(headerJSON, &hdr); err != nil {
		return false
	}
	// Pinned algorithm: a credential self-describing "none" or any foreign
	// algorithm is rejected before the tag is even inspected.
	if hdr.Alg != credentialAlg || hdr.Typ != credentialTyp {
		return false
	}

	expected := s.computeTag(parts[0] + "." + parts[1])
	tag, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	if !hmac.Equal(tag, expected) {
		return false
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	var payload claims
	if err := json.Unmarshal(claimsJSON, &payload); err != nil {
		return false
	}

	now := s.clock.Now()
	if now.Unix() > payload.ExpiresAt {
		return false
	}
	if now.Sub(time.Unix(payload.IssuedAt, 0)) > s.freshness {
		return false
	}

	if payload.PlanID != strings.TrimSpace(planID) {
		return false
	}
	if payload.Amount != amount {
		return false
	}
	if !strings.EqualFold(payload.Currency, strings.TrimSpace(currency)) {
		return false
	}
	if payload.BillingCycle != strings.TrimSpace(billingCycle) {
		return false
	}
	return true
}

func (s *Signer) computeTag(signingInput string) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
