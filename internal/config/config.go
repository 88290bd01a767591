package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Reference ReferenceConfig `yaml:"reference" mapstructure:"reference"`
	Map       MapConfig       `yaml:"map" mapstructure:"map"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the plant tracker workbook and its parquet cache.
type DataConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
	CachePath string `yaml:"cache_path" mapstructure:"cache_path"`
}

// ReferenceConfig locates the glossary and its supporting images.
type ReferenceConfig struct {
	GlossaryPath string   `yaml:"glossary_path" mapstructure:"glossary_path"`
	LogoPath     string   `yaml:"logo_path" mapstructure:"logo_path"`
	Images       []string `yaml:"images" mapstructure:"images"`
}

// MapConfig configures the bubble map.
type MapConfig struct {
	SizeMax float64 `yaml:"size_max" mapstructure:"size_max"`
	Zoom    float64 `yaml:"zoom" mapstructure:"zoom"`
	Height  int     `yaml:"height" mapstructure:"height"`
	Style   string  `yaml:"style" mapstructure:"style"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLANTMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data.path", "Global-Oil-and-Gas-Plant-Tracker-GOGPT-February-2024-v4.xlsx")
	v.SetDefault("data.sheet", "Gas & Oil Units")
	v.SetDefault("data.cache_path", "gogpt_cache.parquet")
	v.SetDefault("reference.glossary_path", "glossary.md")
	v.SetDefault("reference.logo_path", "logo.png")
	v.SetDefault("reference.images", []string{"tech.png", "chp.png"})
	v.SetDefault("map.size_max", 40)
	v.SetDefault("map.zoom", 1)
	v.SetDefault("map.height", 650)
	v.SetDefault("map.style", "carto-positron")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the settings the dashboard cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Data.Path == "" {
		missing = append(missing, "data.path is required")
	}
	if c.Data.Sheet == "" {
		missing = append(missing, "data.sheet is required")
	}
	if c.Map.SizeMax <= 0 {
		missing = append(missing, "map.size_max must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		missing = append(missing, "server.port must be between 1 and 65535")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
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
