package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const quotePlaces = 4

// Quote resolves the rate for the request instant (now when At is nil) and
// splits the amount into net, tax and gross.
func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (*domain.QuoteResponse, error) {
	ctx, span := s.startSpan(ctx, "taxrate.Quote", req.CustomerID, req.Commodity)
	defer span.End()

	mode := normalizeTaxMode(req.TaxMode)
	if mode != domain.TaxModeExclusive && mode != domain.TaxModeInclusive {
		return nil, spanError(span, domain.ErrInvalidTaxMode)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || amount.IsNegative() {
		return nil, spanError(span, domain.ErrInvalidAmount)
	}

	cs, err := s.customer(req.CustomerID)
	if err != nil {
		return nil, spanError(span, err)
	}

	var (
		rate   float64
		source domain.RateSource
		at     = s.clock.Now()
		kind   = lookupKindCurrent
	)
	if req.At != nil {
		at = req.At.UTC()
		kind = lookupKindAt
		rate, source = cs.store.RateAt(req.Commodity, at)
	} else {
		rate, source = cs.store.Current(req.Commodity)
	}
	s.metrics.RecordLookup(ctx, req.Commodity.String(), kind, string(source))

	if !finiteRate(rate) {
		return nil, spanError(span, fmt.Errorf("%w: %s rate %v", domain.ErrInvalidTaxRate, source, rate))
	}

	net, tax, gross := ComputeTax(amount, rate, mode)
	span.SetAttributes(attribute.String("rate.source", string(source)))

	s.requestLogger(ctx, req.CustomerID).Debug("tax quoted",
		zap.String("commodity", req.Commodity.String()),
		zap.Float64("rate", rate),
		zap.String("source", string(source)),
		zap.String("tax", tax.StringFixed(quotePlaces)),
	)

	return &domain.QuoteResponse{
		CustomerID: strings.TrimSpace(req.CustomerID),
		Commodity:  req.Commodity.String(),
		TaxMode:    mode,
		Rate:       rate,
		Source:     source,
		Net:        net.StringFixed(quotePlaces),
		Tax:        tax.StringFixed(quotePlaces),
		Gross:      gross.StringFixed(quotePlaces),
		At:         at,
	}, nil
}

// ComputeTax splits amount into net, tax and gross at rate.
// Exclusive: amount is net. Inclusive: amount is gross.
// Rounding happens only here. Non-finite rates yield no tax.
func ComputeTax(amount decimal.Decimal, rate float64, mode domain.TaxMode) (net, tax, gross decimal.Decimal) {
	if !finiteRate(rate) {
		return amount, decimal.Zero, amount
	}
	r := decimal.NewFromFloat(rate)
	if amount.Sign() <= 0 || r.Sign() <= 0 {
		return amount, decimal.Zero, amount
	}

	if mode == domain.TaxModeInclusive {
		tax = amount.Mul(r).Div(decimal.NewFromInt(1).Add(r)).Round(quotePlaces)
		return amount.Sub(tax), tax, amount
	}

	tax = amount.Mul(r).Round(quotePlaces)
	return amount, tax, amount.Add(tax)
}

func finiteRate(rate float64) bool {
	return !math.IsNaN(rate) && !math.IsInf(rate, 0)
}

func normalizeTaxMode(value domain.TaxMode) domain.TaxMode {
	mode := domain.TaxMode(strings.ToLower(strings.TrimSpace(string(value))))
	if mode == "" {
		return domain.TaxModeExclusive
	}
	return mode
}
