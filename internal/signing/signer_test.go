package signing

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T, clk clock.Clock) *Signer {
	t.Helper()
	signer, err := NewSigner(Config{
		Secret: "test-master-secret",
		TTL:    5 * time.Minute,
	}, clk)
	require.NoError(t, err)
	return signer
}

func TestSignVerifyRoundTrip(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	credential, err := signer.Sign("paid-standard-tier", 59, "INR", "monthly")
	require.NoError(t, err)

	assert.True(t, signer.Verify("paid-standard-tier", 59, "INR", "monthly", credential))
	// currency comparison is case-insensitive
	assert.True(t, signer.Verify("paid-standard-tier", 59, "inr", "monthly", credential))
}

func TestVerifyRejectsAlteredFields(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	credential, err := signer.Sign("paid-standard-tier", 59, "INR", "monthly")
	require.NoError(t, err)

	assert.False(t, signer.Verify("free-tier", 59, "INR", "monthly", credential))
	assert.False(t, signer.Verify("paid-standard-tier", 9, "INR", "monthly", credential))
	assert.False(t, signer.Verify("paid-standard-tier", 59, "USD", "monthly", credential))
	assert.False(t, signer.Verify("paid-standard-tier", 59, "INR", "yearly", credential))
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	other, err := NewSigner(Config{Secret: "another-secret", TTL: 5 * time.Minute}, clk)
	require.NoError(t, err)

	credential, err := other.Sign("free-tier", 0, "INR", "monthly")
	require.NoError(t, err)

	assert.False(t, signer.Verify("free-tier", 0, "INR", "monthly", credential))
}

func TestVerifyRejectsExpired(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	credential, err := signer.Sign("free-tier", 0, "INR", "monthly")
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)
	assert.False(t, signer.Verify("free-tier", 0, "INR", "monthly", credential))
}

func TestVerifyRejectsStaleBeforeExpiry(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer, err := NewSigner(Config{
		Secret:          "test-master-secret",
		TTL:             10 * time.Minute,
		FreshnessWindow: 2 * time.Minute,
	}, clk)
	require.NoError(t, err)

	credential, err := signer.Sign("free-tier", 0, "INR", "monthly")
	require.NoError(t, err)

	clk.Advance(3 * time.Minute)
	// still inside the 10 minute expiry, but older than the freshness window
	assert.False(t, signer.Verify("free-tier", 0, "INR", "monthly", credential))
}

func TestVerifyRejectsForeignAlgorithmHeader(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	credential, err := signer.Sign("free-tier", 0, "INR", "monthly")
	require.NoError(t, err)

	parts := strings.Split(credential, ".")
	require.Len(t, parts, 3)

	for _, forged := range []string{
		`{"alg":"none","typ":"PPC"}`,
		`{"alg":"RS256","typ":"PPC"}`,
		`{"alg":"HS256","typ":"JWT"}`,
	} {
		forgedHeader := base64.RawURLEncoding.EncodeToString([]byte(forged))
		token := forgedHeader + "." + parts[1] + "." + parts[2]
		assert.False(t, signer.Verify("free-tier", 0, "INR", "monthly", token), forged)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))
	signer := newTestSigner(t, clk)

	for _, credential := range []string{
		"",
		"not-a-credential",
		"a.b",
		"a.b.c.d",
		"!!!.???.###",
	} {
		assert.False(t, signer.Verify("free-tier", 0, "INR", "monthly", credential), credential)
	}
}

func TestNewSignerValidation(t *testing.T) {
	clk := clock.NewSystemClock()

	_, err := NewSigner(Config{Secret: "", TTL: time.Minute}, clk)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = NewSigner(Config{Secret: "s", TTL: 0}, clk)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
