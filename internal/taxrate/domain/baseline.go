package domain

import "math"

// BaselineTable maps a commodity to its standard rate.
type BaselineTable map[Commodity]float64

// DefaultBaseline returns the standard rates supplied by the client.
func DefaultBaseline() BaselineTable {
	return BaselineTable{
		CommodityDefault:          0.25,
		CommodityAlcohol:          0.25,
		CommodityFood:             0.12,
		CommodityFoodServices:     0.12,
		CommodityLiterature:       0.06,
		CommodityTransport:        0.06,
		CommodityCulturalServices: 0.06,
	}
}

// Rate returns the baseline for c. Commodities without an entry use the Default rate.
func (t BaselineTable) Rate(c Commodity) float64 {
	if rate, ok := t[c]; ok {
		return rate
	}
	return t[CommodityDefault]
}

// Clone returns an independent copy of the table.
func (t BaselineTable) Clone() BaselineTable {
	out := make(BaselineTable, len(t))
	for c, rate := range t {
		out[c] = rate
	}
	return out
}

// Validate requires an entry for every known commodity, each finite and non-negative.
func (t BaselineTable) Validate() error {
	for _, c := range Commodities() {
		rate, ok := t[c]
		if !ok {
			return ErrIncompleteBaseline
		}
		if !ValidRate(rate) {
			return ErrInvalidTaxRate
		}
	}
	return nil
}

// ValidRate reports whether rate is a usable fraction.
func ValidRate(rate float64) bool {
	return rate >= 0 && !math.IsNaN(rate) && !math.IsInf(rate, 0)
}
