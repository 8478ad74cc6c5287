package store

import (
	"sync"
	"time"

	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
)

// Locked serializes access to a Store shared between goroutines.
type Locked struct {
	mu    sync.Mutex
	store *Store
}

var _ domain.RateStore = (*Locked)(nil)

func NewLocked(s *Store) *Locked {
	return &Locked{store: s}
}

func (l *Locked) GetStandardTaxRate(commodity domain.Commodity) float64 {
	// baseline is immutable after construction
	return l.store.GetStandardTaxRate(commodity)
}

func (l *Locked) SetCustomTaxRate(commodity domain.Commodity, rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.store.SetCustomTaxRate(commodity, rate)
}

func (l *Locked) GetTaxRateForDateTime(commodity domain.Commodity, instant time.Time) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.GetTaxRateForDateTime(commodity, instant)
}

func (l *Locked) GetCurrentTaxRate(commodity domain.Commodity) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.GetCurrentTaxRate(commodity)
}

func (l *Locked) RateAt(commodity domain.Commodity, instant time.Time) (float64, domain.RateSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.RateAt(commodity, instant)
}

func (l *Locked) Current(commodity domain.Commodity) (float64, domain.RateSource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Current(commodity)
}

func (l *Locked) History(commodity domain.Commodity) []domain.Override {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.History(commodity)
}

func (l *Locked) Len(commodity domain.Commodity) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Len(commodity)
}
