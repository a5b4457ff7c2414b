package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

type FeedConfig struct {
	Dir            string `mapstructure:"dir"`
	GazetteerPath  string `mapstructure:"gazetteer_path"`
	ReloadSchedule string `mapstructure:"reload_schedule"`
}

func (config FeedConfig) validate() error {
	var errs []error

	if config.Dir == "" {
		errs = append(errs, fmt.Errorf("missing variable: feed dir"))
	}
	if config.ReloadSchedule == "" {
		errs = append(errs, fmt.Errorf("missing variable: reload_schedule"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config FeedConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("feed.dir", "FEED_DIR")
	if err != nil {
		return err
	}

	return viper.BindEnv("feed.gazetteer_path", "GAZETTEER_PATH")
}
