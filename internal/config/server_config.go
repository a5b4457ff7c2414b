package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

func (config ServerConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("server.address", "SERVER_ADDRESS")
	if err != nil {
		return err
	}

	return viper.BindEnv("server.metrics_address", "METRICS_ADDRESS")
}
