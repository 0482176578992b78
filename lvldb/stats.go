// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/halom-protocol/halom/metrics"
)

var (
	metricIORead      = metrics.LazyLoadGauge("lvldb_io_read_bytes")
	metricIOWrite     = metrics.LazyLoadGauge("lvldb_io_write_bytes")
	metricBlockCache  = metrics.LazyLoadGauge("lvldb_block_cache_bytes")
	metricOpenTables  = metrics.LazyLoadGauge("lvldb_opened_tables")
	metricWriteDelays = metrics.LazyLoadGauge("lvldb_write_delays")
)

// Stats is a snapshot of the engine counters.
type Stats struct {
	IORead         uint64
	IOWrite        uint64
	BlockCacheSize int
	OpenedTables   int
	WriteDelays    int32
	WritePaused    bool
}

// Stats reads the current engine counters.
func (ldb *LevelDB) Stats() (*Stats, error) {
	var s leveldb.DBStats
	if err := ldb.db.Stats(&s); err != nil {
		return nil, errors.Wrap(err, "level db stats")
	}
	return &Stats{
		IORead:         s.IORead,
		IOWrite:        s.IOWrite,
		BlockCacheSize: s.BlockCacheSize,
		OpenedTables:   s.OpenedTablesCount,
		WriteDelays:    s.WriteDelayCount,
		WritePaused:    s.WritePaused,
	}, nil
}

// CollectStats publishes the engine counters as gauges.
func (ldb *LevelDB) CollectStats() (*Stats, error) {
	s, err := ldb.Stats()
	if err != nil {
		return nil, err
	}
	metricIORead().Set(int64(s.IORead))
	metricIOWrite().Set(int64(s.IOWrite))
	metricBlockCache().Set(int64(s.BlockCacheSize))
	metricOpenTables().Set(int64(s.OpenedTables))
	metricWriteDelays().Set(int64(s.WriteDelays))
	return s, nil
}
