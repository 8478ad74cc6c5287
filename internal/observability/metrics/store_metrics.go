package metrics

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RejectReasonNegativeRate  = "negative_rate"
	RejectReasonNonFiniteRate = "non_finite_rate"
)

// StoreMetrics tracks the in-memory footprint of customer rate stores.
type StoreMetrics struct {
	stores      prometheus.Gauge
	historySize *prometheus.HistogramVec
	rejections  *prometheus.CounterVec
}

// NewStoreMetrics registers the collectors on registerer, reusing collectors
// that are already registered there.
func NewStoreMetrics(registerer prometheus.Registerer, cfg Config) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "taxrate"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	stores := register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "taxrate_customer_stores",
		Help:        "Customer rate stores currently held in memory.",
		ConstLabels: constLabels,
	}))
	historySize := register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "taxrate_override_history_size",
		Help:        "Overrides held for a commodity after each custom rate is set.",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 12),
		ConstLabels: constLabels,
	}, []string{"commodity"}))
	rejections := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "taxrate_rate_rejections_total",
		Help:        "Custom rates rejected by strict validation.",
		ConstLabels: constLabels,
	}, []string{"reason"}))

	return &StoreMetrics{
		stores:      stores,
		historySize: historySize,
		rejections:  rejections,
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// IncStores increments the live store gauge.
func (m *StoreMetrics) IncStores() {
	if m == nil || m.stores == nil {
		return
	}
	m.stores.Inc()
}

// ObserveHistorySize records the override count for a commodity.
func (m *StoreMetrics) ObserveHistorySize(commodity string, size int) {
	if m == nil || m.historySize == nil {
		return
	}
	m.historySize.WithLabelValues(commodity).Observe(float64(size))
}

// IncRejection counts a rejected custom rate.
func (m *StoreMetrics) IncRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}
