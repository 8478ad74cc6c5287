package domain

import "time"

// Override is a client-set rate, active from EffectiveAt until the next override
// for the same commodity.
type Override struct {
	EffectiveAt time.Time `json:"effective_at"`
	Rate        float64   `json:"rate"` // fraction (e.g. 0.06 for 6%)
}

// LookupMode selects how a rate is resolved for an arbitrary instant.
type LookupMode string

const (
	// LookupRange returns the latest override at or before the instant.
	LookupRange LookupMode = "range"
	// LookupExact only matches an override recorded at exactly the instant.
	LookupExact LookupMode = "exact"
)

func ParseLookupMode(raw string) (LookupMode, error) {
	switch LookupMode(normalizeName(raw)) {
	case LookupRange, "":
		return LookupRange, nil
	case LookupExact:
		return LookupExact, nil
	default:
		return "", ErrInvalidLookupMode
	}
}

// RateSource tells whether a resolved rate came from an override or the baseline.
type RateSource string

const (
	RateSourceOverride RateSource = "override"
	RateSourceBaseline RateSource = "baseline"
)
