package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type EngineConfig struct {
	GeocodeMaxRequestsPerSecond float32       `mapstructure:"geocode_max_requests_per_second"`
	RequestDelay                time.Duration `mapstructure:"request_delay"`
	MaxLookupsPerPass           int           `mapstructure:"max_lookups_per_pass"`
	MaxPasses                   int           `mapstructure:"max_passes"`
	ThrottleCooldown            time.Duration `mapstructure:"throttle_cooldown"`
	ForbiddenCooldown           time.Duration `mapstructure:"forbidden_cooldown"`
	UserAgent                   string        `mapstructure:"user_agent"`
}

func (config EngineConfig) validate() error {
	var errs []error

	if config.MaxLookupsPerPass <= 0 {
		errs = append(errs, fmt.Errorf("max_lookups_per_pass must be greater than zero"))
	}
	if config.MaxPasses <= 0 {
		errs = append(errs, fmt.Errorf("max_passes must be greater than zero"))
	}
	if config.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("request_delay must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config EngineConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("engine.geocode_max_requests_per_second", "GEOCODE_MAX_REQUESTS_PER_SECOND")
	if err != nil {
		return err
	}

	err = viper.BindEnv("engine.max_lookups_per_pass", "MAX_LOOKUPS_PER_PASS")
	if err != nil {
		return err
	}

	err = viper.BindEnv("engine.max_passes", "MAX_PASSES")
	if err != nil {
		return err
	}

	return viper.BindEnv("engine.user_agent", "GEOCODE_USER_AGENT")
}
