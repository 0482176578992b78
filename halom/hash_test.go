// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package halom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlake2b(t *testing.T) {
	assert.Equal(t, Blake2b([]byte("foobar")), Blake2b([]byte("foo"), []byte("bar")))
	assert.NotEqual(t, Blake2b([]byte("foo")), Blake2b([]byte("bar")))
}

func TestKeccak256(t *testing.T) {
	// keccak256("") well-known digest
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
}

func TestParseAddress(t *testing.T) {
	addr := BytesToAddress([]byte("staker"))
	parsed, err := ParseAddress(addr.String())
	assert.NoError(t, err)
	assert.Equal(t, addr, parsed)

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
	_, err = ParseAddress("zz" + addr.String()[2:])
	assert.Error(t, err)
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	assert.Equal(t, uint64(100), c.Now())
	assert.Equal(t, uint64(150), c.Advance(50))
	c.Set(120)
	assert.Equal(t, uint64(150), c.Now(), "clock never moves backwards")
	c.Set(200)
	assert.Equal(t, uint64(200), c.Now())
}
