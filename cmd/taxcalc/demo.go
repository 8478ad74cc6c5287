package main

import (
	"context"
	"fmt"
	"io"

	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/spf13/cobra"
)

type demoCustomer struct {
	label string
	id    string
	rates []float64
}

var demoCustomers = []demoCustomer{
	{label: "Customer 1", id: "customer-1", rates: []float64{12.5, 13.5, 14.5}},
	{label: "Customer 2", id: "customer-2", rates: []float64{1.5, 3.5, 20.5}},
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Set Transport overrides for two customers and print their current rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), func(svc domain.Service) error {
				return runDemo(cmd.Context(), svc, cmd.OutOrStdout())
			})
		},
	}
}

func runDemo(ctx context.Context, svc domain.Service, out io.Writer) error {
	for _, c := range demoCustomers {
		rate, err := svc.CurrentRate(ctx, c.id, domain.CommodityTransport)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s default tax for transport: %v\n", c.label, rate)

		for _, r := range c.rates {
			if err := svc.SetCustomRate(ctx, c.id, domain.CommodityTransport, r); err != nil {
				return err
			}
		}

		rate, err = svc.CurrentRate(ctx, c.id, domain.CommodityTransport)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s transport tax: %v\n", c.label, rate)
	}
	return nil
}
