package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "VESSEL"

// Load reads configuration from the YAML file at configPath, if given, and environment
// variables. Environment variables take precedence over file values.
// Environment variable format: VESSEL_<SECTION>_<KEY> (e.g. VESSEL_DB_TYPE).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", "file")
	v.SetDefault("db.path", "vessel.db")
	v.SetDefault("db.dsn", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("grpc.addr", ":50051")

	v.SetDefault("limiter.rate", 5.0)
	v.SetDefault("limiter.burst", 10)

	v.SetDefault("scheduler.engine_interval", 5*time.Second)
	v.SetDefault("scheduler.background_interval", 15*time.Minute)
	v.SetDefault("scheduler.writes_per_minute", 30)
	v.SetDefault("scheduler.tick_timeout", 5*time.Second)

	v.SetDefault("thresholds.warning", 35.0)
	v.SetDefault("thresholds.critical", 20.0)

	v.SetDefault("resources.fuel.capacity", 50000.0)
	v.SetDefault("resources.fuel.unit", "L")
	v.SetDefault("resources.fuel.rate_value", 250.0)
	v.SetDefault("resources.fuel.rate_unit", "L/h")
	v.SetDefault("resources.fuel.initial_level", 100.0)

	v.SetDefault("resources.oil.capacity", 2000.0)
	v.SetDefault("resources.oil.unit", "L")
	v.SetDefault("resources.oil.rate_value", 5.0)
	v.SetDefault("resources.oil.rate_unit", "L/h")
	v.SetDefault("resources.oil.initial_level", 100.0)

	v.SetDefault("resources.food.capacity", 5000.0)
	v.SetDefault("resources.food.unit", "kg")
	v.SetDefault("resources.food.rate_value", 150.0)
	v.SetDefault("resources.food.rate_unit", "kg/day")
	v.SetDefault("resources.food.initial_level", 100.0)

	v.SetDefault("resources.water.capacity", 20000.0)
	v.SetDefault("resources.water.unit", "L")
	v.SetDefault("resources.water.rate_value", 3000.0)
	v.SetDefault("resources.water.rate_unit", "L/day")
	v.SetDefault("resources.water.initial_level", 100.0)

	v.SetDefault("notify.email.endpoint", "")
	v.SetDefault("notify.email.token", "")
	v.SetDefault("notify.email.max_retries", 3)
	v.SetDefault("notify.email.timeout", 10*time.Second)
	v.SetDefault("notify.sms.endpoint", "")
	v.SetDefault("notify.sms.token", "")
	v.SetDefault("notify.sms.max_retries", 3)
	v.SetDefault("notify.sms.timeout", 10*time.Second)
	v.SetDefault("notify.timeout", 30*time.Second)
	v.SetDefault("notify.template", "")

	v.SetDefault("logging.dir", "logs")
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 28)
}
