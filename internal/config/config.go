// Package config loads the application configuration from a config file,
// the environment and command-line flags using viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable the application reads.
const EnvPrefix = "GITHUB_STATS"

// Config is the complete application configuration.
type Config struct {
	Account             string      `mapstructure:"account"`
	Token               string      `mapstructure:"token"`
	APIURL              string      `mapstructure:"api_url"`
	GraphQLURL          string      `mapstructure:"graphql_url"`
	Concurrency         int         `mapstructure:"concurrency"`
	Format              string      `mapstructure:"format"`
	WindowContributions bool        `mapstructure:"window_contributions"`
	Chart               ChartConfig `mapstructure:"chart"`
	Log                 LogConfig   `mapstructure:"log"`
	Verbose             bool        `mapstructure:"verbose"`
	Debug               bool        `mapstructure:"debug"`
}

// ChartConfig controls the generated image.
type ChartConfig struct {
	Prefix string  `mapstructure:"prefix"`
	Format string  `mapstructure:"format"`
	Dir    string  `mapstructure:"dir"`
	Width  float64 `mapstructure:"width"`  // inches
	Height float64 `mapstructure:"height"` // inches
}

// LogConfig controls where and how verbosely the application logs.
type LogConfig struct {
	Level      string `mapstructure:"level"`       // trace, debug, info, warn, error
	JSON       bool   `mapstructure:"json"`        // JSON lines instead of the console writer
	Mode       string `mapstructure:"mode"`        // console, file, both
	FilePath   string `mapstructure:"file_path"`   // used when mode is file or both
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"` // rotated files to keep
	MaxAge     int    `mapstructure:"max_age"`     // days
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"account":              "account",
	"token":                "token",
	"api-url":              "api_url",
	"graphql-url":          "graphql_url",
	"concurrency":          "concurrency",
	"format":               "format",
	"window-contributions": "window_contributions",
	"chart-prefix":         "chart.prefix",
	"chart-format":         "chart.format",
	"chart-dir":            "chart.dir",
	"verbose":              "verbose",
	"debug":                "debug",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("account", "")
	v.SetDefault("token", "")
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)
	v.SetDefault("api_url", "https://api.github.com/")
	v.SetDefault("graphql_url", "https://api.github.com/graphql")
	v.SetDefault("concurrency", 1)
	v.SetDefault("format", "text")
	v.SetDefault("window_contributions", false)
	v.SetDefault("chart.prefix", "github_stats")
	v.SetDefault("chart.format", "png")
	v.SetDefault("chart.dir", ".")
	v.SetDefault("chart.width", 15)
	v.SetDefault("chart.height", 10)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)
	v.SetDefault("log.mode", "console")
	v.SetDefault("log.file_path", ".github-stats/github-stats.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
}

// searchPaths lists the directories probed for a config file when none is given.
func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "github-stats"))
	}
	return paths
}

// Load reads the configuration. Precedence, highest first: flags that were
// set explicitly, environment, config file, defaults. configPath may be empty.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".github-stats")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// GITHUB_TOKEN is honored for compatibility with other GitHub tooling.
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind token environment: %w", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %vx%v", c.Chart.Width, c.Chart.Height)
	}
	return nil
}
