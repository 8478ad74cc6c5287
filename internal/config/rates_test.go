package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeRates(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rates.yml"), []byte(body), 0o644))
}

func TestRatesHolderDefaultsWithoutFile(t *testing.T) {
	holder, err := NewRatesHolder(Config{RatesPath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultBaseline(), holder.Baseline())
}

func TestRatesHolderOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	writeRates(t, dir, `
rates:
  baseline:
    food: 0.14
    cultural_services: 0.08
`)

	holder, err := NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	require.NoError(t, err)

	table := holder.Baseline()
	assert.Equal(t, 0.14, table[domain.CommodityFood])
	assert.Equal(t, 0.08, table[domain.CommodityCulturalServices])
	assert.Equal(t, 0.06, table[domain.CommodityTransport])
}

// replaceRates swaps rates.yml in a single rename so the watcher never sees a partial file.
func replaceRates(t *testing.T, dir, body string) {
	t.Helper()
	tmp := filepath.Join(dir, "rates.yml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(body), 0o644))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "rates.yml")))
}

func TestRatesHolderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeRates(t, dir, `
rates:
  baseline:
    fuel: 0.2
`)
	_, err := NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidCommodity)

	writeRates(t, dir, `
rates:
  baseline:
    food: -0.2
`)
	_, err = NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	writeRates(t, dir, `
rates:
  baseline:
    food: abc
`)
	_, err = NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)

	writeRates(t, dir, `
rates:
  baseline:
    food:
`)
	_, err = NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidTaxRate)
}

func TestRatesHolderHotReload(t *testing.T) {
	dir := t.TempDir()
	writeRates(t, dir, `
rates:
  baseline:
    alcohol: 0.30
`)

	holder, err := NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 0.30, holder.Baseline()[domain.CommodityAlcohol])

	replaceRates(t, dir, `
rates:
  baseline:
    alcohol: 0.35
`)

	require.Eventually(t, func() bool {
		return holder.Baseline()[domain.CommodityAlcohol] == 0.35
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRatesHolderIgnoresInvalidReload(t *testing.T) {
	dir := t.TempDir()
	writeRates(t, dir, `
rates:
  baseline:
    alcohol: 0.30
`)

	holder, err := NewRatesHolder(Config{RatesPath: dir}, zap.NewNop())
	require.NoError(t, err)
	want := holder.Baseline()
	require.Equal(t, 0.30, want[domain.CommodityAlcohol])

	invalid := map[string]string{
		"unknown commodity": "rates:\n  baseline:\n    fuel: 0.2\n",
		"negative rate":     "rates:\n  baseline:\n    alcohol: -0.1\n",
		"non-numeric rate":  "rates:\n  baseline:\n    alcohol: abc\n",
	}
	for name, body := range invalid {
		replaceRates(t, dir, body)
		require.Never(t, func() bool {
			return !assert.ObjectsAreEqual(want, holder.Baseline())
		}, 300*time.Millisecond, 20*time.Millisecond, name)
	}

	replaceRates(t, dir, "rates:\n  baseline:\n    alcohol: 0.40\n")
	require.Eventually(t, func() bool {
		return holder.Baseline()[domain.CommodityAlcohol] == 0.40
	}, 5*time.Second, 20*time.Millisecond)
}

func TestBaselineReturnsCopy(t *testing.T) {
	holder := NewStaticRatesHolder(DefaultRatesConfig())
	table := holder.Baseline()
	table[domain.CommodityFood] = 1

	assert.Equal(t, 0.12, holder.Baseline()[domain.CommodityFood])
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("TAXRATE_LOOKUP_MODE", " Exact ")
	t.Setenv("TAXRATE_STRICT", "yes")
	t.Setenv("APP_SERVICE", "taxrate-test")

	cfg := Load()
	assert.Equal(t, "exact", cfg.LookupMode)
	assert.True(t, cfg.StrictRates)
	assert.Equal(t, "taxrate-test", cfg.AppName)
}
