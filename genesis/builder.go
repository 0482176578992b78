// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"hash"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

// Builder helper to build the genesis state.
type Builder struct {
	timestamp uint64
	procs     []func(c *builtin.Contracts) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process, run against the builtin contracts bound to the genesis state.
func (b *Builder) State(proc func(c *builtin.Contracts) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

// Build runs the state processes on st, returning the events they emitted.
func (b *Builder) Build(st *state.State) (events []*halom.Event, err error) {
	contracts := builtin.Bind(st, func(ev *halom.Event) {
		events = append(events, ev)
	})
	for _, proc := range b.procs {
		if err := proc(contracts); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}
	return events, nil
}

// ComputeID compute genesis ID, the hash of the genesis state changes.
func (b *Builder) ComputeID() (halom.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return halom.Bytes32{}, err
	}
	defer db.Close()

	st := state.New(db)
	if _, err := b.Build(st); err != nil {
		return halom.Bytes32{}, err
	}
	h := &hashPutter{halom.NewBlake2b()}
	if _, err := st.Commit(h); err != nil {
		return halom.Bytes32{}, err
	}
	var id halom.Bytes32
	h.Sum(id[:0])
	return id, nil
}

// hashPutter digests the key/values written to it, in order.
type hashPutter struct {
	hash.Hash
}

func (h *hashPutter) Put(key, val []byte) error {
	h.Write(key)
	h.Write(val)
	return nil
}

func (h *hashPutter) Delete(key []byte) error {
	h.Write(key)
	return nil
}
