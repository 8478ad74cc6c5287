package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxrate/internal/clock"
	"github.com/smallbiznis/taxrate/internal/config"
	obslogger "github.com/smallbiznis/taxrate/internal/observability/logger"
	"github.com/smallbiznis/taxrate/internal/observability/metrics"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/smallbiznis/taxrate/internal/taxrate/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	lookupKindStandard = "standard"
	lookupKindCurrent  = "current"
	lookupKindAt       = "at"
)

type ServiceParams struct {
	fx.In

	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Config       config.Config
	Rates        *config.RatesHolder
	Metrics      *metrics.Metrics      `optional:"true"`
	StoreMetrics *metrics.StoreMetrics `optional:"true"`
}

type customerStore struct {
	id    snowflake.ID
	store *store.Locked
}

// Service keeps one rate store per customer. Stores are created on first use
// and live for the lifetime of the Service.
type Service struct {
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	rates        *config.RatesHolder
	mode         domain.LookupMode
	strict       bool
	metrics      *metrics.Metrics
	storeMetrics *metrics.StoreMetrics
	tracer       trace.Tracer

	mu        sync.Mutex
	customers map[string]*customerStore
}

var _ domain.Service = (*Service)(nil)

func NewService(p ServiceParams) (domain.Service, error) {
	return newService(p)
}

func newService(p ServiceParams) (*Service, error) {
	mode, err := domain.ParseLookupMode(p.Config.LookupMode)
	if err != nil {
		return nil, err
	}
	rates := p.Rates
	if rates == nil {
		rates = config.NewStaticRatesHolder(config.DefaultRatesConfig())
	}
	c := p.Clock
	if c == nil {
		c = clock.New()
	}

	return &Service{
		log:          p.Log.Named("taxrate.service"),
		genID:        p.GenID,
		clock:        c,
		rates:        rates,
		mode:         mode,
		strict:       p.Config.StrictRates,
		metrics:      p.Metrics,
		storeMetrics: p.StoreMetrics,
		tracer:       otel.Tracer("taxrate/service"),
		customers:    make(map[string]*customerStore),
	}, nil
}

func (s *Service) StandardRate(ctx context.Context, customerID string, commodity domain.Commodity) (float64, error) {
	ctx, span := s.startSpan(ctx, "taxrate.StandardRate", customerID, commodity)
	defer span.End()

	cs, err := s.customer(customerID)
	if err != nil {
		return 0, spanError(span, err)
	}

	rate := cs.store.GetStandardTaxRate(commodity)
	s.metrics.RecordLookup(ctx, commodity.String(), lookupKindStandard, string(domain.RateSourceBaseline))
	return rate, nil
}

func (s *Service) SetCustomRate(ctx context.Context, customerID string, commodity domain.Commodity, rate float64) error {
	ctx, span := s.startSpan(ctx, "taxrate.SetCustomRate", customerID, commodity)
	defer span.End()

	log := s.requestLogger(ctx, customerID)

	if s.strict {
		if reason, ok := rejectReason(rate); !ok {
			s.storeMetrics.IncRejection(reason)
			log.Warn("custom rate rejected",
				zap.String("commodity", commodity.String()),
				zap.Float64("rate", rate),
				zap.String("reason", reason),
			)
			return spanError(span, domain.ErrInvalidTaxRate)
		}
	}

	cs, err := s.customer(customerID)
	if err != nil {
		return spanError(span, err)
	}

	cs.store.SetCustomTaxRate(commodity, rate)
	size := cs.store.Len(commodity)

	s.metrics.RecordOverrideSet(ctx, commodity.String())
	s.storeMetrics.ObserveHistorySize(commodity.String(), size)
	log.Info("custom rate set",
		zap.String("store_id", cs.id.String()),
		zap.String("commodity", commodity.String()),
		zap.Float64("rate", rate),
		zap.Int("history_size", size),
	)
	return nil
}

func (s *Service) RateAt(ctx context.Context, customerID string, commodity domain.Commodity, instant time.Time) (float64, error) {
	ctx, span := s.startSpan(ctx, "taxrate.RateAt", customerID, commodity)
	defer span.End()

	cs, err := s.customer(customerID)
	if err != nil {
		return 0, spanError(span, err)
	}

	rate, source := cs.store.RateAt(commodity, instant)
	span.SetAttributes(attribute.String("rate.source", string(source)))
	s.metrics.RecordLookup(ctx, commodity.String(), lookupKindAt, string(source))
	return rate, nil
}

func (s *Service) CurrentRate(ctx context.Context, customerID string, commodity domain.Commodity) (float64, error) {
	ctx, span := s.startSpan(ctx, "taxrate.CurrentRate", customerID, commodity)
	defer span.End()

	cs, err := s.customer(customerID)
	if err != nil {
		return 0, spanError(span, err)
	}

	rate, source := cs.store.Current(commodity)
	span.SetAttributes(attribute.String("rate.source", string(source)))
	s.metrics.RecordLookup(ctx, commodity.String(), lookupKindCurrent, string(source))
	return rate, nil
}

func (s *Service) History(ctx context.Context, customerID string, commodity domain.Commodity) ([]domain.Override, error) {
	_, span := s.startSpan(ctx, "taxrate.History", customerID, commodity)
	defer span.End()

	cs, err := s.customer(customerID)
	if err != nil {
		return nil, spanError(span, err)
	}
	return cs.store.History(commodity), nil
}

// customer returns the store for customerID, creating it with the current
// baseline snapshot on first use.
func (s *Service) customer(customerID string) (*customerStore, error) {
	key := strings.TrimSpace(customerID)
	if key == "" {
		return nil, domain.ErrInvalidCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cs, ok := s.customers[key]; ok {
		return cs, nil
	}

	cs := &customerStore{
		id: s.genID.Generate(),
		store: store.NewLocked(store.New(s.clock,
			store.WithBaseline(s.rates.Baseline()),
			store.WithLookupMode(s.mode),
		)),
	}
	s.customers[key] = cs
	s.storeMetrics.IncStores()

	s.log.Debug("customer store created",
		zap.String("customer_id", key),
		zap.String("store_id", cs.id.String()),
		zap.String("lookup_mode", string(s.mode)),
	)
	return cs, nil
}

func (s *Service) startSpan(ctx context.Context, name, customerID string, commodity domain.Commodity) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("customer.id", strings.TrimSpace(customerID)),
		attribute.String("commodity", commodity.String()),
	))
}

func (s *Service) requestLogger(ctx context.Context, customerID string) *zap.Logger {
	return obslogger.WithCustomer(obslogger.WithContext(ctx, s.log), customerID)
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func rejectReason(rate float64) (string, bool) {
	switch {
	case math.IsNaN(rate) || math.IsInf(rate, 0):
		return metrics.RejectReasonNonFiniteRate, false
	case rate < 0:
		return metrics.RejectReasonNegativeRate, false
	default:
		return "", true
	}
}
