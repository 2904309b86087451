package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheMongo  = "mongo"
	CacheHybrid = "hybrid"
)

type AppCfg struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type GazetteerCfg struct {
	Path string `mapstructure:"path"`
}

type ParserCfg struct {
	StateThreshold  float64 `mapstructure:"state_threshold"`
	GlobalThreshold float64 `mapstructure:"global_threshold"`
}

type BatchCfg struct {
	Workers      int           `mapstructure:"workers"`
	MaxAddresses int           `mapstructure:"max_addresses"`
	JobTTL       time.Duration `mapstructure:"job_ttl"`
}

type CacheCfg struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	L1Size  int           `mapstructure:"l1_size"`
}

type RedisCfg struct {
	URL string `mapstructure:"url"`
}

type MongoCfg struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

type MeiliCfg struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Index   string        `mapstructure:"index"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the full service configuration.
type Config struct {
	App         AppCfg       `mapstructure:"app"`
	Gazetteer   GazetteerCfg `mapstructure:"gazetteer"`
	Parser      ParserCfg    `mapstructure:"parser"`
	Batch       BatchCfg     `mapstructure:"batch"`
	Cache       CacheCfg     `mapstructure:"cache"`
	Redis       RedisCfg     `mapstructure:"redis"`
	Mongo       MongoCfg     `mapstructure:"mongo"`
	Meilisearch MeiliCfg     `mapstructure:"meilisearch"`
}

// IsProduction reports app.env == production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Load reads app.yaml from ./config or the working directory (or the given
// file), layering ADDRNORM_* environment overrides on top of the defaults.
// A missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("app")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ADDRNORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("gazetteer.path", "data/uscities.csv")
	v.SetDefault("parser.state_threshold", 60.0)
	v.SetDefault("parser.global_threshold", 50.0)
	v.SetDefault("batch.workers", runtime.NumCPU())
	v.SetDefault("batch.max_addresses", 10000)
	v.SetDefault("batch.job_ttl", time.Hour)
	v.SetDefault("cache.backend", CacheMemory)
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("cache.l1_size", 10000)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("mongo.url", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "address_normalizer")
	v.SetDefault("meilisearch.enabled", false)
	v.SetDefault("meilisearch.url", "http://localhost:7700")
	v.SetDefault("meilisearch.api_key", "")
	v.SetDefault("meilisearch.index", "us_cities")
	v.SetDefault("meilisearch.timeout", 30*time.Second)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.Gazetteer.Path == "" {
		return errors.New("config: gazetteer.path is required")
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("config: batch.workers must be positive, got %d", c.Batch.Workers)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis, CacheMongo, CacheHybrid:
	default:
		return fmt.Errorf("config: unknown cache.backend %q", c.Cache.Backend)
	}
	return nil
}

// NewLogger builds the production zap config for app.env=production and the
// development one otherwise.
func NewLogger(env string) (*zap.Logger, error) {
	var zc zap.Config
	if strings.EqualFold(env, "production") {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	return zc.Build()
}
