package config

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/taxrate/internal/taxrate/domain"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RatesConfig is the file-backed part of the configuration.
type RatesConfig struct {
	Baseline domain.BaselineTable
}

func DefaultRatesConfig() RatesConfig {
	return RatesConfig{Baseline: domain.DefaultBaseline()}
}

// RatesHolder serves the latest valid RatesConfig and swaps it when rates.yml changes.
type RatesHolder struct {
	current atomic.Value // holds RatesConfig
}

// NewStaticRatesHolder returns a holder that never reloads.
func NewStaticRatesHolder(cfg RatesConfig) *RatesHolder {
	h := &RatesHolder{}
	h.current.Store(cfg)
	return h
}

func NewRatesHolder(appCfg Config, log *zap.Logger) (*RatesHolder, error) {
	v := viper.New()

	v.SetConfigName("rates")
	v.SetConfigType("yml")
	if appCfg.RatesPath != "" {
		v.AddConfigPath(appCfg.RatesPath)
	}
	v.AddConfigPath("/etc/taxrate")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TAXRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read rates config: %w", err)
		}
		log.Info("rates config not found, using default baseline")
		return NewStaticRatesHolder(DefaultRatesConfig()), nil
	}

	cfg, err := decodeRatesConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticRatesHolder(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeRatesConfig(v)
		if err != nil {
			log.Warn("rates config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.Store(updated)
		log.Info("rates config reloaded", zap.String("file", e.Name))
	})

	log.Info("rates config loaded", zap.String("file", v.ConfigFileUsed()))
	return holder, nil
}

// Store replaces the current configuration.
func (h *RatesHolder) Store(cfg RatesConfig) {
	h.current.Store(cfg)
}

func (h *RatesHolder) Get() RatesConfig {
	return h.current.Load().(RatesConfig)
}

// Baseline returns a copy of the current baseline table.
func (h *RatesHolder) Baseline() domain.BaselineTable {
	return h.Get().Baseline.Clone()
}

// decodeRatesConfig overlays rates.baseline.<commodity> keys on the default table.
func decodeRatesConfig(v *viper.Viper) (RatesConfig, error) {
	cfg := DefaultRatesConfig()

	raw := v.GetStringMap("rates.baseline")
	for name := range raw {
		commodity, err := domain.ParseCommodity(name)
		if err != nil {
			return RatesConfig{}, fmt.Errorf("rates.baseline.%s: %w", name, err)
		}
		value := v.Get("rates.baseline." + name)
		if value == nil {
			return RatesConfig{}, fmt.Errorf("rates.baseline.%s: missing value: %w", name, domain.ErrInvalidTaxRate)
		}
		rate, err := cast.ToFloat64E(value)
		if err != nil {
			return RatesConfig{}, fmt.Errorf("rates.baseline.%s: %v: %w", name, err, domain.ErrInvalidTaxRate)
		}
		cfg.Baseline[commodity] = rate
	}

	if err := cfg.Baseline.Validate(); err != nil {
		return RatesConfig{}, fmt.Errorf("rates.baseline: %w", err)
	}
	return cfg, nil
}
