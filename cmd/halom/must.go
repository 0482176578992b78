// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/eventdb"
	"github.com/halom-protocol/halom/genesis"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/lvldb"
)

// maxClockOffset is the tolerated drift from the NTP time before a warning is logged.
const maxClockOffset = 5 * time.Second

func initLogger(cfg *Config) *slog.LevelVar {
	lvl := &slog.LevelVar{}
	lvl.Set(log.FromLegacyLevel(cfg.Verbosity))

	var handler slog.Handler
	if cfg.JSONLogs {
		handler = log.JSONHandlerWithLevel(os.Stderr, lvl)
	} else {
		useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, lvl, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return lvl
}

func selectGenesis(cfg *Config) (*genesis.Genesis, error) {
	if cfg.isDev() {
		return genesis.NewDevnet(), nil
	}

	file, err := os.Open(cfg.Network)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis file")
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var custom genesis.CustomGenesis
	if err := decoder.Decode(&custom); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	gene, err := genesis.NewCustomNet(&custom)
	if err != nil {
		return nil, errors.Wrap(err, "build custom genesis")
	}
	return gene, nil
}

func makeInstanceDir(cfg *Config, gene *genesis.Genesis) (string, error) {
	instanceDir := filepath.Join(cfg.DataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// inMemory reports whether the node keeps its databases in memory.
func inMemory(cfg *Config) bool {
	return cfg.isDev() && !cfg.Persist
}

func openMainDB(cfg *Config, dir string) (*lvldb.LevelDB, error) {
	if inMemory(cfg) {
		return lvldb.NewMem()
	}
	path := filepath.Join(dir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              normalizeCacheSize(cfg.Cache),
		OpenFilesCacheCapacity: 512,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func openEventDB(cfg *Config, dir string) (*eventdb.EventDB, error) {
	if inMemory(cfg) {
		return eventdb.NewMem()
	}
	path := filepath.Join(dir, "events.db")
	db, err := eventdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", path)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 128 {
		sizeMB = 128
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func collectDBStats(db *lvldb.LevelDB) {
	s, err := db.CollectStats()
	if err != nil {
		log.Debug("failed to collect database stats", "err", err)
		return
	}
	if s.WritePaused {
		log.Warn("database writes paused by compaction", "writeDelays", s.WriteDelays)
	}
}

func newAPIServer(addr string, handler http.Handler) (*http.Server, net.Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	return srv, listener, nil
}

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		log.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
