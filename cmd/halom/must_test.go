// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/genesis"
)

func TestSelectGenesis(t *testing.T) {
	t.Run("dev", func(t *testing.T) {
		cfg := defaultConfig()
		gene, err := selectGenesis(cfg)
		require.NoError(t, err)
		assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())
	})

	t.Run("custom", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "genesis.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"launchTime": 1700000000,
			"admin": "0x0000000000000000000000000000000000000a11",
			"minDelay": 3600,
			"accounts": [{"address": "0x0000000000000000000000000000000000000b0b", "balance": "1000"}]
		}`), 0o600))

		cfg := defaultConfig()
		cfg.Network = path
		gene, err := selectGenesis(cfg)
		require.NoError(t, err)
		assert.Equal(t, uint64(1700000000), gene.LaunchTime())
		assert.NotEqual(t, genesis.NewDevnet().ID(), gene.ID())
	})

	t.Run("unknown field", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "genesis.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"admin": "0x0000000000000000000000000000000000000a11", "extra": 1}`), 0o600))

		cfg := defaultConfig()
		cfg.Network = path
		_, err := selectGenesis(cfg)
		assert.ErrorContains(t, err, "decode genesis file")
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.Network = filepath.Join(t.TempDir(), "nope.json")
		_, err := selectGenesis(cfg)
		assert.ErrorContains(t, err, "open genesis file")
	})
}

func TestOpenDatabases(t *testing.T) {
	cfg := defaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Persist = true

	gene := genesis.NewDevnet()
	dir, err := makeInstanceDir(cfg, gene)
	require.NoError(t, err)
	assert.DirExists(t, dir)

	mainDB, err := openMainDB(cfg, dir)
	require.NoError(t, err)
	defer mainDB.Close()
	assert.DirExists(t, filepath.Join(dir, "main.db"))

	eventDB, err := openEventDB(cfg, dir)
	require.NoError(t, err)
	defer eventDB.Close()
	assert.FileExists(t, filepath.Join(dir, "events.db"))
}
