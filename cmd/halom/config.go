// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// envPrefix prefixes the environment overrides, e.g. HALOM_API_ADDR.
const envPrefix = "HALOM"

// Config is the node configuration. Each source overrides the previous one:
// defaults, the YAML file, the environment, then command line flags.
type Config struct {
	Network                 string        `yaml:"network"                 split_words:"true"`
	DataDir                 string        `yaml:"dataDir"                 split_words:"true"`
	Persist                 bool          `yaml:"persist"                 split_words:"true"`
	Cache                   int           `yaml:"cache"                   split_words:"true"`
	APIAddr                 string        `yaml:"apiAddr"                 envconfig:"API_ADDR"`
	APICors                 string        `yaml:"apiCors"                 envconfig:"API_CORS"`
	APILogsLimit            uint64        `yaml:"apiLogsLimit"            envconfig:"API_LOGS_LIMIT"`
	EnableAPILogs           bool          `yaml:"enableApiLogs"           envconfig:"ENABLE_API_LOGS"`
	APISlowQueriesThreshold time.Duration `yaml:"apiSlowQueriesThreshold" envconfig:"API_SLOW_QUERIES_THRESHOLD"`
	EnableMetrics           bool          `yaml:"enableMetrics"           split_words:"true"`
	Verbosity               int           `yaml:"verbosity"               split_words:"true"`
	JSONLogs                bool          `yaml:"jsonLogs"                envconfig:"JSON_LOGS"`
	NTPServer               string        `yaml:"ntpServer"               envconfig:"NTP_SERVER"`
}

func defaultConfig() *Config {
	return &Config{
		Network:      "dev",
		DataDir:      defaultDataDir(),
		Cache:        1024,
		APIAddr:      "localhost:8669",
		APILogsLimit: 1000,
		Verbosity:    3,
		NTPServer:    "pool.ntp.org",
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.halom"
	}
	return ".halom"
}

// loadConfig layers the config file, the environment and the flags set in ctx over the defaults.
func loadConfig(ctx *cli.Context) (*Config, error) {
	cfg := defaultConfig()
	if path := ctx.String(configFileFlag.Name); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, errors.Wrap(err, "environment")
	}
	cfg.applyFlags(ctx)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config file")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func (c *Config) applyFlags(ctx *cli.Context) {
	if ctx.IsSet(networkFlag.Name) {
		c.Network = ctx.String(networkFlag.Name)
	}
	if ctx.IsSet(dataDirFlag.Name) {
		c.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(persistFlag.Name) {
		c.Persist = ctx.Bool(persistFlag.Name)
	}
	if ctx.IsSet(cacheFlag.Name) {
		c.Cache = ctx.Int(cacheFlag.Name)
	}
	if ctx.IsSet(apiAddrFlag.Name) {
		c.APIAddr = ctx.String(apiAddrFlag.Name)
	}
	if ctx.IsSet(apiCorsFlag.Name) {
		c.APICors = ctx.String(apiCorsFlag.Name)
	}
	if ctx.IsSet(apiLogsLimitFlag.Name) {
		c.APILogsLimit = ctx.Uint64(apiLogsLimitFlag.Name)
	}
	if ctx.IsSet(enableAPILogsFlag.Name) {
		c.EnableAPILogs = ctx.Bool(enableAPILogsFlag.Name)
	}
	if ctx.IsSet(apiSlowQueriesThresholdFlag.Name) {
		c.APISlowQueriesThreshold = ctx.Duration(apiSlowQueriesThresholdFlag.Name)
	}
	if ctx.IsSet(enableMetricsFlag.Name) {
		c.EnableMetrics = ctx.Bool(enableMetricsFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		c.Verbosity = ctx.Int(verbosityFlag.Name)
	}
	if ctx.IsSet(jsonLogsFlag.Name) {
		c.JSONLogs = ctx.Bool(jsonLogsFlag.Name)
	}
	if ctx.IsSet(ntpServerFlag.Name) {
		c.NTPServer = ctx.String(ntpServerFlag.Name)
	}
}

func (c *Config) validate() error {
	if c.Network == "" {
		return errors.New("network not specified")
	}
	if c.APILogsLimit == 0 {
		return errors.New("api logs limit must be positive")
	}
	if c.Verbosity < 0 {
		return errors.New("verbosity must not be negative")
	}
	return nil
}

// isDev reports whether the node runs the built-in dev network.
func (c *Config) isDev() bool {
	return c.Network == "dev"
}
