// Package config loads service configuration from defaults, an optional YAML file and
// VESSEL_ prefixed environment variables.
package config

import (
	"time"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

type Config struct {
	DB         DBConfig        `mapstructure:"db"`
	HTTP       HTTPConfig      `mapstructure:"http"`
	GRPC       GRPCConfig      `mapstructure:"grpc"`
	Limiter    LimiterConfig   `mapstructure:"limiter"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Thresholds ThresholdPair   `mapstructure:"thresholds"`
	Resources  ResourcesConfig `mapstructure:"resources"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	Logging    LoggingConfig   `mapstructure:"logging"`
}

type DBConfig struct {
	Type string `mapstructure:"type" validate:"oneof=file memory postgres"`
	Path string `mapstructure:"path"`
	DSN  string `mapstructure:"dsn" validate:"required_if=Type postgres"`
}

type HTTPConfig struct {
	Addr        string   `mapstructure:"addr" validate:"required"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type GRPCConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// LimiterConfig bounds requests per actor.
type LimiterConfig struct {
	Rate  float64 `mapstructure:"rate" validate:"gt=0"`
	Burst int     `mapstructure:"burst" validate:"gte=1"`
}

type SchedulerConfig struct {
	EngineInterval     time.Duration `mapstructure:"engine_interval" validate:"gt=0"`
	BackgroundInterval time.Duration `mapstructure:"background_interval" validate:"gt=0"`
	WritesPerMinute    int           `mapstructure:"writes_per_minute" validate:"gte=1"`
	TickTimeout        time.Duration `mapstructure:"tick_timeout" validate:"gt=0"`
}

// ThresholdPair holds the default warning and critical levels in percent.
type ThresholdPair struct {
	Warning  float64 `mapstructure:"warning" validate:"gte=0,lte=100"`
	Critical float64 `mapstructure:"critical" validate:"gte=0,lte=100"`
}

func (p ThresholdPair) Thresholds() models.Thresholds {
	return models.Thresholds{Warning: p.Warning, Critical: p.Critical}
}

type ResourceConfig struct {
	Capacity     float64 `mapstructure:"capacity" validate:"gt=0"`
	Unit         string  `mapstructure:"unit" validate:"required"`
	RateValue    float64 `mapstructure:"rate_value" validate:"gte=0"`
	RateUnit     string  `mapstructure:"rate_unit" validate:"required"`
	InitialLevel float64 `mapstructure:"initial_level" validate:"gte=0,lte=100"`
}

type ResourcesConfig struct {
	Fuel  ResourceConfig `mapstructure:"fuel"`
	Oil   ResourceConfig `mapstructure:"oil"`
	Food  ResourceConfig `mapstructure:"food"`
	Water ResourceConfig `mapstructure:"water"`
}

// Defaults returns the seed rows for all four resources in display order.
func (r ResourcesConfig) Defaults(now time.Time) []models.Resource {
	byType := map[models.ResourceType]ResourceConfig{
		models.ResourceFuel:  r.Fuel,
		models.ResourceOil:   r.Oil,
		models.ResourceFood:  r.Food,
		models.ResourceWater: r.Water,
	}
	out := make([]models.Resource, 0, len(models.AllResourceTypes))
	for _, t := range models.AllResourceTypes {
		c := byType[t]
		out = append(out, models.Resource{
			Type:            t,
			Level:           c.InitialLevel,
			Capacity:        c.Capacity,
			Unit:            c.Unit,
			ConsumptionRate: models.ConsumptionRate{Value: c.RateValue, Unit: c.RateUnit},
			LastUpdated:     now,
		})
	}
	return out
}

type GatewayConfig struct {
	Endpoint   string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
}

type NotifyConfig struct {
	Email    GatewayConfig `mapstructure:"email"`
	SMS      GatewayConfig `mapstructure:"sms"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Template string        `mapstructure:"template"`
}

type LoggingConfig struct {
	Dir        string `mapstructure:"dir" validate:"required"`
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}
