// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package timelock

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/halom"
)

// State of an operation.
type State uint8

const (
	StateUnset State = iota
	StateWaiting
	StateReady
	StateDone
	// StateExpired is a ready operation past the grace period. It can only be cancelled.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateWaiting:
		return "waiting"
	case StateReady:
		return "ready"
	case StateDone:
		return "done"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Call is one invocation of an operation.
type Call struct {
	Target  halom.Address
	Value   *big.Int
	Payload []byte
}

// CallsFromActions converts calls decoded from a payload.
func CallsFromActions(calls []action.Call) []Call {
	out := make([]Call, 0, len(calls))
	for _, c := range calls {
		out = append(out, Call{
			Target:  c.Target,
			Value:   action.Big(c.Value),
			Payload: c.Payload,
		})
	}
	return out
}

// Operation is the stored record of a scheduled operation.
type Operation struct {
	ReadyTime   uint64
	ScheduledAt uint64
	Predecessor halom.Bytes32
	Done        bool
}

// State returns the state of the operation at now. A grace period of 0 never expires it.
func (o *Operation) State(now, grace uint64) State {
	switch {
	case o == nil || o.ReadyTime == 0:
		return StateUnset
	case o.Done:
		return StateDone
	case now < o.ReadyTime:
		return StateWaiting
	case grace > 0 && now-o.ReadyTime > grace:
		return StateExpired
	}
	return StateReady
}

// HashOperation returns the id of a single call operation.
func HashOperation(call Call, predecessor, salt halom.Bytes32) halom.Bytes32 {
	return halom.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			call.Target,
			bigOrZero(call.Value),
			call.Payload,
			predecessor,
			salt,
		})
	})
}

// HashOperationBatch returns the id of a batch operation.
func HashOperationBatch(calls []Call, predecessor, salt halom.Bytes32) halom.Bytes32 {
	normalized := make([]Call, 0, len(calls))
	for _, c := range calls {
		c.Value = bigOrZero(c.Value)
		normalized = append(normalized, c)
	}
	return halom.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			normalized,
			predecessor,
			salt,
		})
	})
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
