package domain

import "errors"

var (
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidCommodity   = errors.New("invalid_commodity")
	ErrInvalidTaxRate     = errors.New("invalid_tax_rate")
	ErrInvalidTaxMode     = errors.New("invalid_tax_mode")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidLookupMode  = errors.New("invalid_lookup_mode")
	ErrIncompleteBaseline = errors.New("incomplete_baseline")
)
