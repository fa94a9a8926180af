package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePricingFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.yml"), []byte(content), 0o644))
}

func TestPricingDefaultsWhenFileAbsent(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewPricingConfigHolder()
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 0.01, cfg.DefaultTolerance)
	assert.Equal(t, 5, cfg.TopTargetedPlans)
	assert.Equal(t, 1.0, cfg.ToleranceFor("JPY"))
	assert.Equal(t, 1.0, cfg.ToleranceFor("krw"))
	assert.Equal(t, 0.01, cfg.ToleranceFor("USD"))
}

func TestPricingFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writePricingFile(t, dir, `
pricing:
  defaultTolerance: 0.05
  currencyTolerances:
    INR: 0.5
  topTargetedPlans: 3
`)
	t.Chdir(dir)

	holder, err := NewPricingConfigHolder()
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 0.05, cfg.DefaultTolerance)
	assert.Equal(t, 3, cfg.TopTargetedPlans)
	assert.Equal(t, 0.5, cfg.ToleranceFor("inr"))
	assert.Equal(t, 0.05, cfg.ToleranceFor("USD"))
}

func TestPricingRejectsNegativeDefaultTolerance(t *testing.T) {
	dir := t.TempDir()
	writePricingFile(t, dir, `
pricing:
  defaultTolerance: -0.01
  topTargetedPlans: 5
`)
	t.Chdir(dir)

	_, err := NewPricingConfigHolder()
	require.Error(t, err)
}

func TestPricingRejectsNegativeCurrencyTolerance(t *testing.T) {
	dir := t.TempDir()
	writePricingFile(t, dir, `
pricing:
  defaultTolerance: 0.01
  currencyTolerances:
    JPY: -1
  topTargetedPlans: 5
`)
	t.Chdir(dir)

	_, err := NewPricingConfigHolder()
	require.Error(t, err)
}
