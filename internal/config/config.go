// Package config loads disk-explorer settings from defaults, an optional YAML
// file, an optional .env file, DISK_EXPLORER_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fpang/disk-explorer/internal/thumbnail"
	"github.com/fpang/disk-explorer/internal/volumes"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DISK_EXPLORER"

// DefaultEnvFile is read when Options.EnvFile is empty. A missing file is not an error.
const DefaultEnvFile = ".env"

// Config is the complete application configuration.
type Config struct {
	LogLevel  string          `mapstructure:"log_level" default:"info" validate:"oneof=debug info warn warning error"`
	LogJSON   bool            `mapstructure:"log_json"`
	Server    ServerConfig    `mapstructure:"server"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Volumes   VolumesConfig   `mapstructure:"volumes"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host                    string   `mapstructure:"host" default:"127.0.0.1" validate:"required"`
	Port                    int      `mapstructure:"port" default:"8080" validate:"min=1,max=65535"`
	MaxConcurrentThumbnails int      `mapstructure:"max_concurrent_thumbnails" default:"4" validate:"min=1"`
	AllowedOrigins          []string `mapstructure:"allowed_origins"`
	AllowedHosts            []string `mapstructure:"allowed_hosts"`
	Gzip                    bool     `mapstructure:"gzip" default:"true"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ThumbnailConfig configures the thumbnail generator.
type ThumbnailConfig struct {
	Width   int    `mapstructure:"width" default:"100" validate:"min=1"`
	Quality int    `mapstructure:"quality" default:"90" validate:"min=1,max=100"`
	Filter  string `mapstructure:"filter" default:"lanczos3" validate:"oneof=lanczos3 catmullrom mitchell"`
}

// Generator converts the settings into a thumbnail.Config.
func (t ThumbnailConfig) Generator() thumbnail.Config {
	return thumbnail.Config{
		Width:   t.Width,
		Quality: t.Quality,
		Filter:  thumbnail.Filter(t.Filter),
	}
}

// VolumesConfig selects how mounted volumes are discovered.
type VolumesConfig struct {
	Source string `mapstructure:"source" default:"platform" validate:"oneof=platform partitions"`
}

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an optional YAML file. It must exist when set.
	ConfigFile string
	// EnvFile is a dotenv file loaded into the process environment.
	// Empty means DefaultEnvFile, which may be absent.
	EnvFile string
	// Flags, when set, override every other source for the flags the user changed.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":                 "log_level",
	"log-json":                  "log_json",
	"host":                      "server.host",
	"port":                      "server.port",
	"max-concurrent-thumbnails": "server.max_concurrent_thumbnails",
	"allowed-origin":            "server.allowed_origins",
	"allowed-host":              "server.allowed_hosts",
	"gzip":                      "server.gzip",
	"width":                     "thumbnail.width",
	"quality":                   "thumbnail.quality",
	"filter":                    "thumbnail.filter",
	"volume-source":             "volumes.source",
}

var validate = validator.New()

// Load resolves the configuration from all sources and validates it.
func Load(opts Options) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	var base Config
	if err := defaults.Set(&base); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	v := viper.New()
	setDefaults(v, &base)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the volume source name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := volumes.New(c.Volumes.Source); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.Thumbnail.Generator().Validate()
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	err := godotenv.Load(path)
	if err == nil {
		log.Debug().Str("file", path).Msg("Env file loaded")
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error reading env file %s: %w", path, err)
}

// setDefaults registers every key with viper so AutomaticEnv can see it
// during Unmarshal.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_json", c.LogJSON)
	v.SetDefault("server.host", c.Server.Host)
	v.SetDefault("server.port", c.Server.Port)
	v.SetDefault("server.max_concurrent_thumbnails", c.Server.MaxConcurrentThumbnails)
	v.SetDefault("server.allowed_origins", append([]string{}, c.Server.AllowedOrigins...))
	v.SetDefault("server.allowed_hosts", append([]string{}, c.Server.AllowedHosts...))
	v.SetDefault("server.gzip", c.Server.Gzip)
	v.SetDefault("thumbnail.width", c.Thumbnail.Width)
	v.SetDefault("thumbnail.quality", c.Thumbnail.Quality)
	v.SetDefault("thumbnail.filter", c.Thumbnail.Filter)
	v.SetDefault("volumes.source", c.Volumes.Source)
}
