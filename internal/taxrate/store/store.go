// Package store holds the per-customer rate store.
//
// A Store is owned by a single customer and is not safe for concurrent use.
// Wrap it with Locked when more than one goroutine can reach it.
package store

import (
	"time"

	"github.com/smallbiznis/taxrate/internal/clock"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
)

type Option func(*Store)

// WithBaseline replaces the standard rate table. The table is copied.
func WithBaseline(table domain.BaselineTable) Option {
	return func(s *Store) {
		if table != nil {
			s.baseline = table.Clone()
		}
	}
}

// WithLookupMode selects range or exact resolution for GetTaxRateForDateTime.
func WithLookupMode(mode domain.LookupMode) Option {
	return func(s *Store) {
		if mode == domain.LookupExact {
			s.mode = domain.LookupExact
		}
	}
}

type Store struct {
	clock    clock.Clock
	baseline domain.BaselineTable
	mode     domain.LookupMode
	rates    map[domain.Commodity]history
}

var _ domain.RateStore = (*Store)(nil)

func New(c clock.Clock, opts ...Option) *Store {
	if c == nil {
		c = clock.New()
	}
	s := &Store{
		clock:    c,
		baseline: domain.DefaultBaseline(),
		mode:     domain.LookupRange,
		rates:    make(map[domain.Commodity]history),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetStandardTaxRate(commodity domain.Commodity) float64 {
	return s.baseline.Rate(commodity)
}

// SetCustomTaxRate records rate effective from now. A second call landing on the
// same clock reading overwrites the first.
func (s *Store) SetCustomTaxRate(commodity domain.Commodity, rate float64) {
	now := s.clock.Now()
	s.rates[commodity] = s.rates[commodity].put(now, rate)
}

func (s *Store) GetTaxRateForDateTime(commodity domain.Commodity, instant time.Time) float64 {
	rate, _ := s.RateAt(commodity, instant)
	return rate
}

func (s *Store) GetCurrentTaxRate(commodity domain.Commodity) float64 {
	rate, _ := s.Current(commodity)
	return rate
}

// RateAt resolves the rate active at instant and reports where it came from.
func (s *Store) RateAt(commodity domain.Commodity, instant time.Time) (float64, domain.RateSource) {
	h := s.rates[commodity]

	var (
		o  domain.Override
		ok bool
	)
	if s.mode == domain.LookupExact {
		o, ok = h.exact(instant)
	} else {
		o, ok = h.floor(instant)
	}
	if ok {
		return o.Rate, domain.RateSourceOverride
	}
	return s.GetStandardTaxRate(commodity), domain.RateSourceBaseline
}

// Current resolves the most recent override, falling back to the baseline.
func (s *Store) Current(commodity domain.Commodity) (float64, domain.RateSource) {
	if o, ok := s.rates[commodity].latest(); ok {
		return o.Rate, domain.RateSourceOverride
	}
	return s.GetStandardTaxRate(commodity), domain.RateSourceBaseline
}

// History returns a copy of the overrides for commodity in ascending order.
func (s *Store) History(commodity domain.Commodity) []domain.Override {
	h := s.rates[commodity]
	out := make([]domain.Override, len(h))
	copy(out, h)
	return out
}

func (s *Store) LookupMode() domain.LookupMode {
	return s.mode
}

// Len returns the number of overrides held for commodity.
func (s *Store) Len(commodity domain.Commodity) int {
	return len(s.rates[commodity])
}
