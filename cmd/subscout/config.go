package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"subscout/domain"
)

// Config is the merged view of defaults, config file, SUBSCOUT_* env and flags.
type Config struct {
	Domain      string   `mapstructure:"domain"`
	Output      string   `mapstructure:"output"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFile     string   `mapstructure:"log_file"`
	Concurrency int      `mapstructure:"concurrency"`
	Num         int      `mapstructure:"num"`
	Proxy       string   `mapstructure:"proxy"`
	Insecure    bool     `mapstructure:"insecure"`
	DB          string   `mapstructure:"db"`
	Providers   []string `mapstructure:"providers"`
	NoColor     bool     `mapstructure:"no_color"`

	Search struct {
		API   string        `mapstructure:"api"`
		Pause time.Duration `mapstructure:"pause"`
	} `mapstructure:"search"`
}

func registerFlags(flags *pflag.FlagSet) {
	flags.StringP("domain", "d", "", "domain to scan")
	flags.StringP("output", "o", domain.DefaultOutput, "output file")
	flags.StringP("config", "c", "", "config file (default is ./subscout.yaml or $HOME/.subscout/subscout.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file")
	flags.Int("concurrency", 1, "number of common subdomain probes in flight")
	flags.Int("num", 100, "number of search results to request")
	flags.String("proxy", "", "HTTP proxy URL")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("db", "", "sqlite database to store results in")
	flags.StringSlice("providers", nil, "extra passive sources (certspotter)")
	flags.Bool("no-color", false, "disable colored output")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output", domain.DefaultOutput)
	v.SetDefault("log_level", "info")
	v.SetDefault("concurrency", 1)
	v.SetDefault("num", 100)
	v.SetDefault("search.api", "https://www.google.com/search")
	v.SetDefault("search.pause", 2*time.Second)
}

// bindFlags maps every dashed flag to its underscored config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix("SUBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".subscout"))
		}
		v.SetConfigName("subscout")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Domain == "" {
		return nil, errors.New("domain is required")
	}
	return cfg, nil
}
