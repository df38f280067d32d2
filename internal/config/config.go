// Package config loads studyforge settings from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Log         LogConfig         `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Path of the SQLite file. Empty means the XDG data directory.
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required"`
	BodyLimit int    `mapstructure:"body_limit" validate:"min=1024"`
}

type RedisConfig struct {
	// Addr enables the Redis leaderboard when set.
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0,max=15"`
}

type LeaderboardConfig struct {
	Limit int `mapstructure:"limit" validate:"min=1,max=100"`
}

type EngineConfig struct {
	DefaultLearner   string `mapstructure:"default_learner" validate:"required"`
	QueueLimit       int    `mapstructure:"queue_limit" validate:"min=1,max=500"`
	StrictInvariants bool   `mapstructure:"strict_invariants"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"database.path":            "STUDYFORGE_DB",
	"server.addr":              "STUDYFORGE_ADDR",
	"redis.addr":               "STUDYFORGE_REDIS_ADDR",
	"redis.password":           "STUDYFORGE_REDIS_PASSWORD",
	"engine.default_learner":   "STUDYFORGE_LEARNER",
	"engine.strict_invariants": "STUDYFORGE_STRICT_INVARIANTS",
	"log.level":                "STUDYFORGE_LOG_LEVEL",
	"log.format":               "STUDYFORGE_LOG_FORMAT",
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

// NewConfigLoader prepares a loader reading configFile, or studyforge.yaml
// from the working directory and $HOME/.config/studyforge when empty.
func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studyforge")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studyforge")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

// Load reads the configuration and validates it.
func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.path", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.body_limit", 1<<20)
	v.SetDefault("redis.db", 0)
	v.SetDefault("leaderboard.limit", 10)
	v.SetDefault("engine.default_learner", "default")
	v.SetDefault("engine.queue_limit", 20)
	v.SetDefault("engine.strict_invariants", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// Load is a shorthand for NewConfigLoader(configFile) followed by Load.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (loader *ConfigLoader) ConfigFileUsed() string {
	return loader.viper.ConfigFileUsed()
}
