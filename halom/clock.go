// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package halom

import (
	"sync/atomic"
	"time"
)

// Clock is the external monotonic time source, in unix seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the host wall clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is advanced explicitly, used by tests and the dev node.
type ManualClock struct {
	now atomic.Uint64
}

func NewManualClock(now uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(now)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Set moves the clock to t. Moving backwards is ignored.
func (c *ManualClock) Set(t uint64) {
	for {
		cur := c.now.Load()
		if t <= cur || c.now.CompareAndSwap(cur, t) {
			return
		}
	}
}

// Advance moves the clock forward by d seconds and returns the new time.
func (c *ManualClock) Advance(d uint64) uint64 {
	return c.now.Add(d)
}
