package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type cacheBackend string

const (
	BackendFile   cacheBackend = "file"
	BackendSqlite cacheBackend = "sqlite"
	BackendRedis  cacheBackend = "redis"
)

type CacheConfig struct {
	Backend          cacheBackend `mapstructure:"backend"`
	Path             string       `mapstructure:"path"`
	ConnectionString string       `mapstructure:"connection_string"`
	RedisURL         string       `mapstructure:"redis_url"`
}

func (config CacheConfig) validate() error {

	switch config.Backend {
	case BackendFile:
		if config.Path == "" {
			return fmt.Errorf("missing variable: cache path")
		}
	case BackendSqlite:
		if config.ConnectionString == "" {
			return fmt.Errorf("missing variable: cache connection string")
		}
	case BackendRedis:
		if config.RedisURL == "" {
			return fmt.Errorf("missing variable: cache redis url")
		}
	default:
		return fmt.Errorf("unknown cache backend: %v", config.Backend)
	}

	return nil
}

func (config CacheConfig) bindEnvironmentVariables() error {

	err := viper.BindEnv("cache.backend", "CACHE_BACKEND")
	if err != nil {
		return err
	}

	err = viper.BindEnv("cache.connection_string", "CACHE_CONNECTION_STRING")
	if err != nil {
		return err
	}

	return viper.BindEnv("cache.redis_url", "CACHE_REDIS_URL")
}
