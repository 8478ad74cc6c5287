package store

import (
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/taxrate/internal/clock"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func newTestStore(opts ...Option) (*Store, *clock.FakeClock) {
	c := clock.NewFakeClock(epoch)
	return New(c, opts...), c
}

func TestStandardRateIgnoresOverrides(t *testing.T) {
	s, c := newTestStore()
	want := domain.DefaultBaseline()

	for _, commodity := range domain.Commodities() {
		s.SetCustomTaxRate(commodity, 0.99)
		c.Advance(time.Millisecond)
	}

	for _, commodity := range domain.Commodities() {
		assert.Equal(t, want[commodity], s.GetStandardTaxRate(commodity), commodity.String())
	}
	assert.Equal(t, 0.25, s.GetStandardTaxRate(domain.Commodity(99)))
}

func TestCurrentRateAfterSet(t *testing.T) {
	s, c := newTestStore()

	for _, commodity := range domain.Commodities() {
		assert.Equal(t, s.GetStandardTaxRate(commodity), s.GetCurrentTaxRate(commodity))

		s.SetCustomTaxRate(commodity, 0.175)
		assert.Equal(t, 0.175, s.GetCurrentTaxRate(commodity))
		c.Advance(time.Second)
	}
}

func TestSameInstantOverwrites(t *testing.T) {
	s, _ := newTestStore()

	s.SetCustomTaxRate(domain.CommodityFood, 0.10)
	s.SetCustomTaxRate(domain.CommodityFood, 0.11)

	h := s.History(domain.CommodityFood)
	require.Len(t, h, 1)
	assert.Equal(t, 0.11, h[0].Rate)
	assert.True(t, h[0].EffectiveAt.Equal(epoch))
	assert.Equal(t, 0.11, s.GetCurrentTaxRate(domain.CommodityFood))
}

func TestRangeLookupPrecedence(t *testing.T) {
	s, c := newTestStore()
	commodity := domain.CommodityAlcohol

	t1 := c.Now()
	s.SetCustomTaxRate(commodity, 0.30)
	c.Advance(time.Hour)
	t2 := c.Now()
	s.SetCustomTaxRate(commodity, 0.31)
	c.Advance(time.Hour)
	t3 := c.Now()
	s.SetCustomTaxRate(commodity, 0.32)

	assert.Equal(t, 0.32, s.GetCurrentTaxRate(commodity))
	assert.Equal(t, 0.30, s.GetTaxRateForDateTime(commodity, t1))
	assert.Equal(t, 0.31, s.GetTaxRateForDateTime(commodity, t2))
	assert.Equal(t, 0.31, s.GetTaxRateForDateTime(commodity, t2.Add(30*time.Minute)))
	assert.Equal(t, 0.31, s.GetTaxRateForDateTime(commodity, t3.Add(-time.Nanosecond)))
	assert.Equal(t, 0.32, s.GetTaxRateForDateTime(commodity, t3))
	assert.Equal(t, 0.32, s.GetTaxRateForDateTime(commodity, t3.Add(24*time.Hour)))

	rate, source := s.RateAt(commodity, t1.Add(-time.Nanosecond))
	assert.Equal(t, 0.25, rate)
	assert.Equal(t, domain.RateSourceBaseline, source)
}

func TestRangeLookupComparesInstantsAcrossZones(t *testing.T) {
	s, c := newTestStore()
	s.SetCustomTaxRate(domain.CommodityFood, 0.08)

	local := c.Now().In(time.FixedZone("UTC+2", 2*3600))
	assert.Equal(t, 0.08, s.GetTaxRateForDateTime(domain.CommodityFood, local))
}

func TestExactLookupMode(t *testing.T) {
	s, c := newTestStore(WithLookupMode(domain.LookupExact))
	commodity := domain.CommodityTransport

	t1 := c.Now()
	s.SetCustomTaxRate(commodity, 12.5)
	c.Advance(time.Minute)

	assert.Equal(t, domain.LookupExact, s.LookupMode())
	assert.Equal(t, 12.5, s.GetTaxRateForDateTime(commodity, t1))
	assert.Equal(t, 0.06, s.GetTaxRateForDateTime(commodity, t1.Add(time.Second)))
	assert.Equal(t, 12.5, s.GetCurrentTaxRate(commodity))
}

func TestClockMovingBackwardKeepsOrder(t *testing.T) {
	s, c := newTestStore()
	commodity := domain.CommodityLiterature

	s.SetCustomTaxRate(commodity, 0.07)
	c.Set(epoch.Add(-time.Hour))
	s.SetCustomTaxRate(commodity, 0.05)

	h := s.History(commodity)
	require.Len(t, h, 2)
	assert.True(t, h[0].EffectiveAt.Before(h[1].EffectiveAt))
	assert.Equal(t, 0.05, h[0].Rate)
	assert.Equal(t, 0.07, h[1].Rate)

	// latest timestamp wins, not latest insert
	assert.Equal(t, 0.07, s.GetCurrentTaxRate(commodity))
	assert.Equal(t, 0.05, s.GetTaxRateForDateTime(commodity, epoch.Add(-time.Minute)))
}

func TestInstancesAreIsolated(t *testing.T) {
	c := clock.NewFakeClock(epoch)
	a := New(c)
	b := New(c)

	a.SetCustomTaxRate(domain.CommodityTransport, 14.5)

	assert.Equal(t, 14.5, a.GetCurrentTaxRate(domain.CommodityTransport))
	assert.Equal(t, 0.06, b.GetCurrentTaxRate(domain.CommodityTransport))
	assert.Empty(t, b.History(domain.CommodityTransport))
}

func TestDemoScenario(t *testing.T) {
	s, c := newTestStore()

	assert.Equal(t, 0.06, s.GetCurrentTaxRate(domain.CommodityTransport))

	for _, rate := range []float64{12.5, 13.5, 14.5} {
		s.SetCustomTaxRate(domain.CommodityTransport, rate)
		c.Advance(time.Millisecond)
	}

	assert.Equal(t, 14.5, s.GetCurrentTaxRate(domain.CommodityTransport))
	assert.Equal(t, 3, s.Len(domain.CommodityTransport))
}

func TestRatesAreReturnedBitExact(t *testing.T) {
	s, c := newTestStore()
	rates := []float64{0.1, 1.0 / 3.0, 0.07000000000000001, 0, -0.5, 1e-12}

	var stamps []time.Time
	for _, rate := range rates {
		stamps = append(stamps, c.Now())
		s.SetCustomTaxRate(domain.CommodityDefault, rate)
		c.Advance(time.Microsecond)
	}

	for i, at := range stamps {
		assert.Equal(t, rates[i], s.GetTaxRateForDateTime(domain.CommodityDefault, at))
	}
	assert.Equal(t, rates[len(rates)-1], s.GetCurrentTaxRate(domain.CommodityDefault))
}

func TestWithBaselineIsCopied(t *testing.T) {
	table := domain.DefaultBaseline()
	table[domain.CommodityFood] = 0.15
	s, _ := newTestStore(WithBaseline(table))

	table[domain.CommodityFood] = 0.5
	assert.Equal(t, 0.15, s.GetStandardTaxRate(domain.CommodityFood))
}

func TestHistoryReturnsCopy(t *testing.T) {
	s, _ := newTestStore()
	s.SetCustomTaxRate(domain.CommodityFood, 0.1)

	h := s.History(domain.CommodityFood)
	h[0].Rate = 0.9
	assert.Equal(t, 0.1, s.GetCurrentTaxRate(domain.CommodityFood))
}

func TestLockedConcurrentWriters(t *testing.T) {
	c := clock.NewFakeClock(epoch)
	l := NewLocked(New(c))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Advance(time.Millisecond)
			l.SetCustomTaxRate(domain.CommodityFood, float64(i))
			_ = l.GetCurrentTaxRate(domain.CommodityFood)
			_, _ = l.RateAt(domain.CommodityFood, c.Now())
		}(i)
	}
	wg.Wait()

	h := l.History(domain.CommodityFood)
	require.NotEmpty(t, h)
	for i := 1; i < len(h); i++ {
		assert.True(t, h[i-1].EffectiveAt.Before(h[i].EffectiveAt))
	}
	rate, source := l.Current(domain.CommodityFood)
	assert.Equal(t, domain.RateSourceOverride, source)
	assert.Equal(t, h[len(h)-1].Rate, rate)
}
