package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Command modes understood by Validate.
const (
	ModeLeads    = "leads"
	ModeOverride = "override"
	ModeServe    = "serve"
	ModeExport   = "export"
	ModeBrief    = "brief"
)

// Config holds the full application configuration.
type Config struct {
	Sources   SourcesConfig   `yaml:"sources" mapstructure:"sources"`
	Overrides OverridesConfig `yaml:"overrides" mapstructure:"overrides"`
	Resolve   ResolveConfig   `yaml:"resolve" mapstructure:"resolve"`
	Breaker   BreakerConfig   `yaml:"breaker" mapstructure:"breaker"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SourcesConfig configures the upstream tiers of both sources.
type SourcesConfig struct {
	UserAgent string      `yaml:"user_agent" mapstructure:"user_agent"`
	FDIC      FDICConfig  `yaml:"fdic" mapstructure:"fdic"`
	NCUA      NCUAConfig  `yaml:"ncua" mapstructure:"ncua"`
	Proxy     ProxyConfig `yaml:"proxy" mapstructure:"proxy"`
}

// FDICConfig configures the bank source.
type FDICConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	MirrorURL   string  `yaml:"mirror_url" mapstructure:"mirror_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// NCUAConfig configures the credit union source. Datasets are tried in order.
type NCUAConfig struct {
	Datasets    []DatasetConfig `yaml:"datasets" mapstructure:"datasets"`
	TimeoutSecs int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DatasetConfig is one credit union dataset version. A blank URL disables it.
type DatasetConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Dialect string `yaml:"dialect" mapstructure:"dialect"`
}

// ProxyConfig configures the cache/proxy tier. A blank URL disables it.
type ProxyConfig struct {
	URL string `yaml:"url" mapstructure:"url"`
}

// OverridesConfig configures override persistence.
type OverridesConfig struct {
	RemoteURL   string `yaml:"remote_url" mapstructure:"remote_url"`
	LocalPath   string `yaml:"local_path" mapstructure:"local_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ResolveConfig configures a resolution run.
type ResolveConfig struct {
	DefaultLimit int `yaml:"default_limit" mapstructure:"default_limit"`
}

// BreakerConfig configures the per-tier circuit breakers.
type BreakerConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Timeout converts a seconds setting to a duration, using def when unset.
func Timeout(secs int, def time.Duration) time.Duration {
	if secs <= 0 {
		return def
	}
	return time.Duration(secs) * time.Second
}

var knownDialects = []string{"current", "compact", "legacy"}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables use the LEADS_ prefix, e.g. LEADS_ANTHROPIC_KEY.
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.user_agent", "leads-cli/1.0")
	v.SetDefault("sources.fdic.base_url", "https://api.fdic.gov/banks")
	v.SetDefault("sources.fdic.mirror_url", "https://banks.data.fdic.gov/api")
	v.SetDefault("sources.fdic.timeout_secs", 15)
	v.SetDefault("sources.fdic.rate_limit", 5.0)
	v.SetDefault("sources.ncua.timeout_secs", 20)
	v.SetDefault("sources.ncua.datasets", []map[string]any{
		{"url": "", "dialect": "current"},
		{"url": "", "dialect": "compact"},
		{"url": "", "dialect": "legacy"},
	})
	v.SetDefault("sources.proxy.url", "")
	v.SetDefault("overrides.remote_url", "")
	v.SetDefault("overrides.local_path", "leads-overrides.db")
	v.SetDefault("overrides.database_url", "")
	v.SetDefault("overrides.timeout_secs", 10)
	v.SetDefault("resolve.default_limit", 500)
	v.SetDefault("breaker.failure_threshold", 3)
	v.SetDefault("breaker.reset_timeout_secs", 60)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Every problem is
// reported in one error.
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Resolve.DefaultLimit <= 0 {
		errs = append(errs, "resolve.default_limit must be > 0")
	}
	for i, ds := range c.Sources.NCUA.Datasets {
		if ds.Dialect != "" && !slices.Contains(knownDialects, ds.Dialect) {
			errs = append(errs, fmt.Sprintf("sources.ncua.datasets[%d]: unknown dialect %q", i, ds.Dialect))
		}
	}

	switch mode {
	case ModeLeads, ModeOverride, ModeExport:
	case ModeServe:
		if c.Overrides.DatabaseURL == "" {
			errs = append(errs, "overrides.database_url is required")
		}
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case ModeBrief:
		if c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown mode %q", mode))
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
