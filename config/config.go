package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/spf13/viper"

	"github.com/spektr-org/vizgroup/encode"
	"github.com/spektr-org/vizgroup/engine"
)

// EnvPrefix prefixes environment overrides, e.g. VIZGROUP_ENGINE_CACHESIZE.
const EnvPrefix = "VIZGROUP"

// Config represents the complete vizgroup configuration
type Config struct {
	Engine   EngineConfig   `json:"engine" mapstructure:"engine"`
	Palettes PalettesConfig `json:"palettes" mapstructure:"palettes"`
	Sources  SourcesConfig  `json:"sources" mapstructure:"sources"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// EngineConfig contains grouping engine settings
type EngineConfig struct {
	// CacheSize bounds the memo; 0 disables memoization.
	CacheSize     int      `json:"cacheSize" mapstructure:"cacheSize"`
	StripPrefixes []string `json:"stripPrefixes" mapstructure:"stripPrefixes"`
}

// PalettesConfig contains the channel palettes
type PalettesConfig struct {
	Colors       []string `json:"colors" mapstructure:"colors"`
	StrokeStyles []string `json:"strokeStyles" mapstructure:"strokeStyles"`
}

// SourcesConfig locates the records served to queries
type SourcesConfig struct {
	Dir    string `json:"dir" mapstructure:"dir"`
	SQLite string `json:"sqlite" mapstructure:"sqlite"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"` // "human" or "json"
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			CacheSize:     engine.DefaultCacheSize,
			StripPrefixes: []string{},
		},
		Palettes: PalettesConfig{
			Colors:       append([]string(nil), encode.DefaultColors...),
			StrokeStyles: append([]string(nil), encode.DefaultStrokeStyles...),
		},
		Sources: SourcesConfig{
			Dir: ".",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("engine.cacheSize", d.Engine.CacheSize)
	v.SetDefault("engine.stripPrefixes", d.Engine.StripPrefixes)
	v.SetDefault("palettes.colors", d.Palettes.Colors)
	v.SetDefault("palettes.strokeStyles", d.Palettes.StrokeStyles)
	v.SetDefault("sources.dir", d.Sources.Dir)
	v.SetDefault("sources.sqlite", d.Sources.SQLite)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Load reads configuration from path, or from vizgroup.{yaml,json,toml} in
// the working directory when path is empty. A missing default file is not
// an error. VIZGROUP_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vizgroup")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Engine.CacheSize < 0 {
		return &ConfigError{Field: "engine.cacheSize", Message: "must not be negative"}
	}
	if len(c.Palettes.Colors) == 0 {
		return &ConfigError{Field: "palettes.colors", Message: "palette is empty"}
	}
	if len(c.Palettes.StrokeStyles) == 0 {
		return &ConfigError{Field: "palettes.strokeStyles", Message: "palette is empty"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// EngineOptions translates the engine section into engine options.
func (c *Config) EngineOptions(log logr.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(log),
		engine.WithCacheSize(c.Engine.CacheSize),
		engine.WithStripPrefixes(c.Engine.StripPrefixes...),
	}
}

// EncoderOptions translates the palettes into encoder options.
func (c *Config) EncoderOptions() []encode.Option {
	return []encode.Option{
		encode.WithColors(c.Palettes.Colors...),
		encode.WithStrokeStyles(c.Palettes.StrokeStyles...),
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
