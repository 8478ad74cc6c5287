package store

import (
	"sort"
	"time"

	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
)

// history keeps overrides sorted ascending by EffectiveAt, one entry per instant.
type history []domain.Override

// search returns the index of the first override not before t.
func (h history) search(t time.Time) int {
	return sort.Search(len(h), func(i int) bool {
		return !h[i].EffectiveAt.Before(t)
	})
}

// put records rate at t, replacing the rate of an existing entry at the same instant.
func (h history) put(t time.Time, rate float64) history {
	i := h.search(t)
	if i < len(h) && h[i].EffectiveAt.Equal(t) {
		h[i].Rate = rate
		return h
	}
	h = append(h, domain.Override{})
	copy(h[i+1:], h[i:])
	h[i] = domain.Override{EffectiveAt: t, Rate: rate}
	return h
}

// latest returns the override with the greatest timestamp.
func (h history) latest() (domain.Override, bool) {
	if len(h) == 0 {
		return domain.Override{}, false
	}
	return h[len(h)-1], true
}

// floor returns the latest override at or before t.
func (h history) floor(t time.Time) (domain.Override, bool) {
	i := sort.Search(len(h), func(i int) bool {
		return h[i].EffectiveAt.After(t)
	})
	if i == 0 {
		return domain.Override{}, false
	}
	return h[i-1], true
}

// exact returns the override recorded at exactly t.
func (h history) exact(t time.Time) (domain.Override, bool) {
	i := h.search(t)
	if i < len(h) && h[i].EffectiveAt.Equal(t) {
		return h[i], true
	}
	return domain.Override{}, false
}
