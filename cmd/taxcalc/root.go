package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/taxrate/internal/clock"
	"github.com/smallbiznis/taxrate/internal/config"
	"github.com/smallbiznis/taxrate/internal/observability"
	"github.com/smallbiznis/taxrate/internal/taxrate"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taxcalc",
		Short:         "Resolve commodity tax rates per customer",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDemoCmd())
	root.AddCommand(newQuoteCmd())
	return root
}

func appOptions() []fx.Option {
	return []fx.Option{
		config.Module,
		observability.Module,
		clock.Module,
		taxrate.Module,
	}
}

// withService starts the application graph, hands the rate service to fn and
// stops the graph when fn returns.
func withService(ctx context.Context, fn func(domain.Service) error) error {
	var svc domain.Service
	app := fx.New(append(appOptions(), fx.Populate(&svc), fx.NopLogger)...)
	if err := app.Err(); err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start app: %w", err)
	}
	defer func() {
		_ = app.Stop(context.Background())
	}()

	return fn(svc)
}
