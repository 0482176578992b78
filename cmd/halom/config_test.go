// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"
)

func runConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var (
		cfg    *Config
		cfgErr error
	)
	app := cli.NewApp()
	app.Writer = io.Discard
	app.Flags = []cli.Flag{
		configFileFlag, networkFlag, dataDirFlag, persistFlag, cacheFlag,
		apiAddrFlag, apiCorsFlag, apiLogsLimitFlag, enableAPILogsFlag,
		apiSlowQueriesThresholdFlag, enableMetricsFlag, verbosityFlag, jsonLogsFlag, ntpServerFlag,
	}
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = loadConfig(ctx)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"halom"}, args...)))
	return cfg, cfgErr
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "halom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := runConfig(t)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Network)
	assert.True(t, cfg.isDev())
	assert.Equal(t, "localhost:8669", cfg.APIAddr)
	assert.Equal(t, uint64(1000), cfg.APILogsLimit)
	assert.Equal(t, 3, cfg.Verbosity)
	assert.False(t, cfg.EnableMetrics)
}

func TestConfigPrecedence(t *testing.T) {
	path := writeConfigFile(t, `
network: genesis.json
apiAddr: 0.0.0.0:9000
apiLogsLimit: 50
verbosity: 4
enableMetrics: true
apiSlowQueriesThreshold: 2s
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := runConfig(t, "--config", path)
		require.NoError(t, err)

		assert.Equal(t, "genesis.json", cfg.Network)
		assert.False(t, cfg.isDev())
		assert.Equal(t, "0.0.0.0:9000", cfg.APIAddr)
		assert.Equal(t, uint64(50), cfg.APILogsLimit)
		assert.Equal(t, 4, cfg.Verbosity)
		assert.True(t, cfg.EnableMetrics)
		assert.Equal(t, 2*time.Second, cfg.APISlowQueriesThreshold)
		assert.Equal(t, "pool.ntp.org", cfg.NTPServer)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("HALOM_API_ADDR", "127.0.0.1:7000")
		t.Setenv("HALOM_VERBOSITY", "5")
		t.Setenv("HALOM_DATA_DIR", "/tmp/halom-env")

		cfg, err := runConfig(t, "--config", path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:7000", cfg.APIAddr)
		assert.Equal(t, 5, cfg.Verbosity)
		assert.Equal(t, "/tmp/halom-env", cfg.DataDir)
		assert.Equal(t, uint64(50), cfg.APILogsLimit)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("HALOM_API_ADDR", "127.0.0.1:7000")

		cfg, err := runConfig(t, "--config", path, "--api-addr", "127.0.0.1:6000", "--network", "dev", "--ntp-server", "")
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:6000", cfg.APIAddr)
		assert.True(t, cfg.isDev())
		assert.Empty(t, cfg.NTPServer)
	})
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		args []string
	}{
		{
			name: "unknown field",
			file: "apiAdress: localhost:1\n",
		},
		{
			name: "malformed yaml",
			file: "network: [dev\n",
		},
		{
			name: "zero logs limit",
			args: []string{"--api-logs-limit", "0"},
		},
		{
			name: "empty network",
			args: []string{"--network", ""},
		},
		{
			name: "bad env value",
			env:  map[string]string{"HALOM_CACHE": "lots"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := tt.args
			if tt.file != "" {
				args = append([]string{"--config", writeConfigFile(t, tt.file)}, args...)
			}
			_, err := runConfig(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runConfig(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "read config file")
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 128, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(1<<30), 1<<30)
}
