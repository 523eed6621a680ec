package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingConfig carries the business constants used by the derivation engine.
type BillingConfig struct {
	TaxRate                    float64 `mapstructure:"taxRate"`
	RechargeValidityDays       int     `mapstructure:"rechargeValidityDays"`
	RechargeReminderWindowDays int     `mapstructure:"rechargeReminderWindowDays"`
	PlanExpiringSoonDays       int     `mapstructure:"planExpiringSoonDays"`
	InvoiceDueDays             int     `mapstructure:"invoiceDueDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		TaxRate:                    0.09,
		RechargeValidityDays:       30,
		RechargeReminderWindowDays: 3,
		PlanExpiringSoonDays:       7,
		InvoiceDueDays:             14,
	}
}

// TaxRateDecimal returns the configured tax rate as a decimal fraction.
func (c BillingConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.TaxRate)
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewStaticBillingConfigHolder wraps a fixed configuration, mostly for tests.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewBillingConfigHolder(log *zap.Logger) (*BillingConfigHolder, error) {
	log = log.Named("billing.config")
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/rechargedesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("RECHARGEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.taxRate", defaults.TaxRate)
	v.SetDefault("billing.rechargeValidityDays", defaults.RechargeValidityDays)
	v.SetDefault("billing.rechargeReminderWindowDays", defaults.RechargeReminderWindowDays)
	v.SetDefault("billing.planExpiringSoonDays", defaults.PlanExpiringSoonDays)
	v.SetDefault("billing.invoiceDueDays", defaults.InvoiceDueDays)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := ValidateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticBillingConfigHolder(cfg)
	if !fileLoaded {
		log.Info("billing config file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Warn("billing config reload failed", zap.Error(err))
			return
		}
		if err := ValidateBillingConfig(updated); err != nil {
			log.Warn("invalid billing config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("billing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func ValidateBillingConfig(cfg BillingConfig) error {
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return errors.New("billing.taxRate must be in [0, 1)")
	}
	if cfg.RechargeValidityDays <= 0 {
		return errors.New("billing.rechargeValidityDays must be positive")
	}
	if cfg.RechargeReminderWindowDays < 0 {
		return errors.New("billing.rechargeReminderWindowDays cannot be negative")
	}
	if cfg.PlanExpiringSoonDays < 0 {
		return errors.New("billing.planExpiringSoonDays cannot be negative")
	}
	if cfg.InvoiceDueDays < 0 {
		return errors.New("billing.invoiceDueDays cannot be negative")
	}
	return nil
}
