// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/kv"
	"github.com/halom-protocol/halom/stackedmap"
)

const (
	balanceKeyPrefix = 'b'
	storageKeyPrefix = 's'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type entryKey struct {
	kind byte
	addr halom.Address
	key  halom.Bytes32
}

func (k entryKey) dbKey() []byte {
	b := make([]byte, 0, 1+len(k.addr)+len(k.key))
	b = append(b, k.kind)
	b = append(b, k.addr[:]...)
	if k.kind == storageKeyPrefix {
		b = append(b, k.key[:]...)
	}
	return b
}

// State manages balances and contract storage on top of a kv store.
// Changes are kept in memory until Commit.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[entryKey, []byte]
}

// New create state object.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	s.sm.Push()
	return s
}

func (s *State) load(key entryKey) ([]byte, bool, error) {
	val, err := s.src.Get(key.dbKey())
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (s *State) get(key entryKey) ([]byte, error) {
	v, _, err := s.sm.Get(key)
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr halom.Address) (*big.Int, error) {
	v, err := s.get(entryKey{kind: balanceKeyPrefix, addr: addr})
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(v), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr halom.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v", balance)}
	}
	s.sm.Put(entryKey{kind: balanceKeyPrefix, addr: addr}, balance.Bytes())
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr halom.Address, key halom.Bytes32) (halom.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return halom.Bytes32{}, err
	}
	if len(raw) == 0 {
		return halom.Bytes32{}, nil
	}
	_, content, _, err := rlp.Split(raw)
	if err != nil {
		return halom.Bytes32{}, &Error{err}
	}
	return halom.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr halom.Address, key, value halom.Bytes32) {
	var raw rlp.RawValue
	if !value.IsZero() {
		raw, _ = rlp.EncodeToBytes(trimLeftZeros(value[:]))
	}
	s.SetRawStorage(addr, key, raw)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr halom.Address, key halom.Bytes32) (rlp.RawValue, error) {
	return s.get(entryKey{kind: storageKeyPrefix, addr: addr, key: key})
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr halom.Address, key halom.Bytes32, raw rlp.RawValue) {
	s.sm.Put(entryKey{kind: storageKeyPrefix, addr: addr, key: key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr halom.Address, key halom.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be passed through.
func (s *State) DecodeStorage(addr halom.Address, key halom.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	return dec(raw)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	if revision < 1 {
		panic("invalid revision")
	}
	s.sm.PopTo(revision)
}

// Commit writes all changes into the given putter, typically a batch.
// Only the last value of each key is written.
func (s *State) Commit(putter kv.Putter) (int, error) {
	latest := make(map[entryKey][]byte)
	var order []entryKey
	s.sm.Journal(func(key entryKey, value []byte) bool {
		if _, ok := latest[key]; !ok {
			order = append(order, key)
		}
		latest[key] = value
		return true
	})

	for _, key := range order {
		var err error
		if val := latest[key]; len(val) == 0 {
			err = putter.Delete(key.dbKey())
		} else {
			err = putter.Put(key.dbKey(), val)
		}
		if err != nil {
			return 0, &Error{err}
		}
	}
	return len(order), nil
}

func trimLeftZeros(b []byte) []byte {
	for i, v := range b {
		if v != 0 {
			return b[i:]
		}
	}
	return nil
}
