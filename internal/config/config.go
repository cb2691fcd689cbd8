// Package config resolves run settings from flags, STATEMAP_ environment
// variables, an optional config file and built-in defaults, in that order.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"statemap/internal/mapgen"
)

// EnvPrefix is prepended to every environment variable, e.g. STATEMAP_STEPS.
const EnvPrefix = "STATEMAP"

// LogConfig controls the zap logger.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Dev        bool   `mapstructure:"dev"`
}

// Config holds everything except the positional arguments of a run.
type Config struct {
	Colors    string    `mapstructure:"colors"`
	Political string    `mapstructure:"political"`
	Font      string    `mapstructure:"font"`
	FontSize  float64   `mapstructure:"font_size"`
	NoIDs     bool      `mapstructure:"no_ids"`
	Steps     int       `mapstructure:"steps"`
	Ramp      string    `mapstructure:"ramp"`
	Workers   int       `mapstructure:"workers"`
	Seed      uint64    `mapstructure:"seed"`
	Regions   bool      `mapstructure:"regions"`
	Verbose   bool      `mapstructure:"verbose"`
	Log       LogConfig `mapstructure:"log"`
}

// flagKeys maps config keys to the flag that overrides them.
var flagKeys = map[string]string{
	"colors":    "colors",
	"political": "political",
	"font":      "font",
	"font_size": "font-size",
	"no_ids":    "no-ids",
	"steps":     "steps",
	"ramp":      "ramp",
	"workers":   "workers",
	"seed":      "seed",
	"regions":   "regions",
	"verbose":   "verbose",
	"log.file":  "log-file",
	"log.level": "log-level",
}

// RegisterFlags defines the run flags on fs with their default values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := mapgen.DefaultOptions()
	fs.StringP("colors", "c", d.Colors, "palette cache file used by the states mode")
	fs.StringP("political", "p", d.Political, "country colours file used by the political mode")
	fs.StringP("font", "f", d.Font, "TrueType font for state ids (path or file name in the system font directories)")
	fs.Float64("font-size", d.FontSize, "font size of state ids")
	fs.Bool("no-ids", false, "do not draw state ids")
	fs.Int("steps", d.Steps, "number of legend bins for numeric modes")
	fs.String("ramp", d.Ramp, "colour ramp for numeric modes")
	fs.Int("workers", 0, "parallel label workers (0 = number of CPUs)")
	fs.Uint64("seed", 0, "palette generator seed (0 = random)")
	fs.Bool("regions", false, "accept files without manpower, e.g. map/strategicregions")
	fs.String("config", "", "config file (yaml, json or toml)")
	fs.BoolP("verbose", "v", false, "debug logging")
	fs.String("log-file", "", "also write JSON logs to this file (rotated)")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
}

func setDefaults(v *viper.Viper) {
	d := mapgen.DefaultOptions()
	v.SetDefault("colors", d.Colors)
	v.SetDefault("political", d.Political)
	v.SetDefault("font", d.Font)
	v.SetDefault("font_size", d.FontSize)
	v.SetDefault("no_ids", false)
	v.SetDefault("steps", d.Steps)
	v.SetDefault("ramp", d.Ramp)
	v.SetDefault("workers", 0)
	v.SetDefault("seed", 0)
	v.SetDefault("regions", false)
	v.SetDefault("verbose", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.dev", false)
}

// Load reads configPath when it is not empty and binds the flags of fs that
// were registered with RegisterFlags. fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Verbose {
		cfg.Log.Level = "debug"
	}
	return &cfg, nil
}

// Options fills the non-positional run options from the config.
func (c *Config) Options() mapgen.Options {
	opts := mapgen.DefaultOptions()
	opts.Colors = c.Colors
	opts.Political = c.Political
	opts.Font = c.Font
	opts.FontSize = c.FontSize
	opts.NoIDs = c.NoIDs
	opts.Steps = c.Steps
	opts.Ramp = c.Ramp
	opts.Workers = c.Workers
	opts.Seed = c.Seed
	opts.Regions = c.Regions
	return opts
}
