// Package config handles ovs configuration: the daemon's own settings and
// the observed key-value settings store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the daemon settings.
type Config struct {
	Store string      `mapstructure:"store"`
	Props string      `mapstructure:"props"`
	Proxy ProxyConfig `mapstructure:"proxy"`
	Log   LogConfig   `mapstructure:"log"`
}

// ProxyConfig describes how to reach the remote interaction proxy.
type ProxyConfig struct {
	URL         string        `mapstructure:"url"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // auto, console or json
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"store":              "store",
	"props":              "props",
	"proxy-url":          "proxy.url",
	"proxy-dial-timeout": "proxy.dial_timeout",
	"proxy-call-timeout": "proxy.call_timeout",
	"log-level":          "log.level",
	"log-format":         "log.format",
}

// DefaultDir returns the directory holding ovs files by default.
func DefaultDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "ovs")
}

// Default returns the default configuration.
func Default() Config {
	dir := DefaultDir()
	return Config{
		Store: filepath.Join(dir, "settings.yaml"),
		Props: filepath.Join(dir, "build.prop"),
		Proxy: ProxyConfig{
			DialTimeout: 5 * time.Second,
			CallTimeout: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads configuration from file, env and flags, in increasing order
// of precedence. Env var overrides use prefix OVS_ with dots replaced by
// underscores (OVS_PROXY_URL). A missing config file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("store", def.Store)
	v.SetDefault("props", def.Props)
	v.SetDefault("proxy.url", def.Proxy.URL)
	v.SetDefault("proxy.dial_timeout", def.Proxy.DialTimeout)
	v.SetDefault("proxy.call_timeout", def.Proxy.CallTimeout)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	v.SetConfigType("yaml")
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(DefaultDir())
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String("store", def.Store, "Path to the observed settings file")
	fs.String("props", def.Props, "Path to the system properties file")
	fs.String("proxy-url", "", "WebSocket URL of the interaction proxy")
	fs.Duration("proxy-dial-timeout", def.Proxy.DialTimeout, "Timeout for connecting to the proxy")
	fs.Duration("proxy-call-timeout", def.Proxy.CallTimeout, "Timeout for one proxy call")
	fs.String("log-level", def.Log.Level, "Log level (debug, info, warn, error)")
	fs.String("log-format", def.Log.Format, "Log format (auto, console, json)")
}
