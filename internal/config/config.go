package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/bit2swaz/cache-janitor/internal/janitor"
)

const (
	EnvPrefix      = "JANITOR"
	browseCacheDir = "browse-cache"
)

// Config is the resolved janitor configuration.
type Config struct {
	CacheDir        string        `mapstructure:"cache_dir"`
	ServiceConfig   string        `mapstructure:"service_config"`
	WorkingSuffix   string        `mapstructure:"working_suffix"`
	ExpireAfter     time.Duration `mapstructure:"expire_after"`
	EmptyGrace      time.Duration `mapstructure:"empty_grace"`
	UnfinishedGrace time.Duration `mapstructure:"unfinished_grace"`
	Exclude         []string      `mapstructure:"exclude"`
	DryRun          bool          `mapstructure:"dry_run"`
	Log             LogConfig     `mapstructure:"log"`
	Watch           WatchConfig   `mapstructure:"watch"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"` // json or text
	Level  string `mapstructure:"level"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Listen   string        `mapstructure:"listen"`
}

// New returns a viper instance carrying the defaults and the JANITOR_
// environment binding. Callers bind flags before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("cache_dir", "")
	v.SetDefault("service_config", "")
	v.SetDefault("working_suffix", janitor.DefaultWorkingSuffix)
	v.SetDefault("expire_after", janitor.DefaultExpireAfter)
	v.SetDefault("empty_grace", janitor.DefaultEmptyGrace)
	v.SetDefault("unfinished_grace", janitor.DefaultUnfinishedGrace)
	v.SetDefault("exclude", []string{})
	v.SetDefault("dry_run", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("watch.interval", time.Hour)
	v.SetDefault("watch.listen", ":9400")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file (an explicit path, or janitor.yaml in
// the working directory or /etc/cache-janitor), then resolves and validates
// the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("janitor")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/cache-janitor")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CacheDir == "" && cfg.ServiceConfig != "" {
		dir, err := cacheDirFromService(cfg.ServiceConfig)
		if err != nil {
			return nil, err
		}
		cfg.CacheDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// cacheDirFromService resolves the browse cache below the result store named
// in the web service's JSON configuration.
func cacheDirFromService(path string) (string, error) {
	sv := viper.New()
	sv.SetConfigFile(path)
	sv.SetConfigType("json")
	if err := sv.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read service config: %w", err)
	}

	store := sv.GetString("dfamdequeuer.result_store")
	if store == "" {
		return "", fmt.Errorf("service config %s has no dfamdequeuer.result_store", path)
	}
	return filepath.Join(store, browseCacheDir), nil
}

func (c *Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache_dir is not set")
	}
	if c.WorkingSuffix == "" {
		return errors.New("working_suffix must not be empty")
	}
	for key, d := range map[string]time.Duration{
		"expire_after":     c.ExpireAfter,
		"empty_grace":      c.EmptyGrace,
		"unfinished_grace": c.UnfinishedGrace,
		"watch.interval":   c.Watch.Interval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Thresholds converts the configured ages for the classifier.
func (c *Config) Thresholds() janitor.Thresholds {
	return janitor.Thresholds{
		ExpireAfter:     c.ExpireAfter,
		EmptyGrace:      c.EmptyGrace,
		UnfinishedGrace: c.UnfinishedGrace,
	}
}
