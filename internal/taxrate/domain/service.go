package domain

import (
	"context"
	"time"
)

// RateStore is the public contract used by our client. Signatures are stable.
type RateStore interface {
	GetStandardTaxRate(commodity Commodity) float64
	SetCustomTaxRate(commodity Commodity, rate float64)
	GetTaxRateForDateTime(commodity Commodity, instant time.Time) float64
	GetCurrentTaxRate(commodity Commodity) float64
}

// Service resolves rates on behalf of many customers, one RateStore each.
type Service interface {
	StandardRate(ctx context.Context, customerID string, commodity Commodity) (float64, error)
	SetCustomRate(ctx context.Context, customerID string, commodity Commodity, rate float64) error
	RateAt(ctx context.Context, customerID string, commodity Commodity, instant time.Time) (float64, error)
	CurrentRate(ctx context.Context, customerID string, commodity Commodity) (float64, error)
	History(ctx context.Context, customerID string, commodity Commodity) ([]Override, error)
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

// TaxMode represents how tax is applied to an amount.
type TaxMode string

const (
	TaxModeExclusive TaxMode = "exclusive" // amount + tax
	TaxModeInclusive TaxMode = "inclusive" // amount already includes tax
)

type QuoteRequest struct {
	CustomerID string     `json:"customer_id"`
	Commodity  Commodity  `json:"commodity"`
	Amount     string     `json:"amount"` // decimal string, e.g. "100.00"
	TaxMode    TaxMode    `json:"tax_mode"`
	At         *time.Time `json:"at,omitempty"` // nil means now
}

type QuoteResponse struct {
	CustomerID string     `json:"customer_id"`
	Commodity  string     `json:"commodity"`
	TaxMode    TaxMode    `json:"tax_mode"`
	Rate       float64    `json:"rate"`
	Source     RateSource `json:"source"`
	Net        string     `json:"net"`
	Tax        string     `json:"tax"`
	Gross      string     `json:"gross"`
	At         time.Time  `json:"at"`
}
