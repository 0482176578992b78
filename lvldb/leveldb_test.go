// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/kv"
)

func TestLevelDB(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get([]byte("missing"))
	assert.True(t, db.IsNotFound(err))

	require.NoError(t, db.Put([]byte("k1"), []byte("v1")))
	v, err := db.Get([]byte("k1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	has, err := db.Has([]byte("k1"))
	assert.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.Delete([]byte("k1")))
	has, err = db.Has([]byte("k1"))
	assert.NoError(t, err)
	assert.False(t, has)
}

func TestBatchAndBucket(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	a := kv.Bucket("a").NewStore(db)
	b := kv.Bucket("b").NewStore(db)

	batch := a.NewBatch()
	assert.NoError(t, batch.Put([]byte("1"), []byte("x")))
	assert.NoError(t, batch.Put([]byte("2"), []byte("y")))
	assert.Equal(t, 2, batch.Len())

	_, err = a.Get([]byte("1"))
	assert.True(t, a.IsNotFound(err), "batch not written yet")
	require.NoError(t, batch.Write())

	require.NoError(t, b.Put([]byte("1"), []byte("z")))

	var keys []string
	it := a.Iterate(kv.Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.NoError(t, it.Error())
	assert.Equal(t, []string{"1", "2"}, keys)

	v, err := b.Get([]byte("1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("z"), v)
}

func TestStats(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 100; i++ {
		require.NoError(t, db.Put([]byte{byte(i)}, make([]byte, 64)))
	}

	s, err := db.CollectStats()
	require.NoError(t, err)
	assert.False(t, s.WritePaused)
	assert.Zero(t, s.WriteDelays)

	require.NoError(t, db.Close())
	_, err = db.Stats()
	assert.Error(t, err)
}
