package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/spf13/cobra"
)

type quoteFlags struct {
	customer  string
	commodity string
	amount    string
	mode      string
	at        string
	overrides []float64
}

func newQuoteCmd() *cobra.Command {
	var f quoteFlags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute tax for an amount of a commodity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(svc domain.Service) error {
				return runQuote(cmd.Context(), svc, f, cmd.OutOrStdout())
			})
		},
	}

	cmd.Flags().StringVar(&f.customer, "customer", "cli", "customer id")
	cmd.Flags().StringVar(&f.commodity, "commodity", "default", "commodity name, e.g. food_services")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount as a decimal string")
	cmd.Flags().StringVar(&f.mode, "mode", string(domain.TaxModeExclusive), "exclusive or inclusive")
	cmd.Flags().StringVar(&f.at, "at", "", "RFC3339 instant to resolve the rate at (default now)")
	cmd.Flags().Float64SliceVar(&f.overrides, "set", nil, "custom rates to set before quoting, in order")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runQuote(ctx context.Context, svc domain.Service, f quoteFlags, out io.Writer) error {
	commodity, err := domain.ParseCommodity(f.commodity)
	if err != nil {
		return fmt.Errorf("commodity %q: %w", f.commodity, err)
	}

	req := domain.QuoteRequest{
		CustomerID: f.customer,
		Commodity:  commodity,
		Amount:     f.amount,
		TaxMode:    domain.TaxMode(f.mode),
	}
	if f.at != "" {
		at, err := time.Parse(time.RFC3339Nano, f.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		req.At = &at
	}

	for _, r := range f.overrides {
		if err := svc.SetCustomRate(ctx, f.customer, commodity, r); err != nil {
			return err
		}
	}

	resp, err := svc.Quote(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
