// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/eventdb"
	"github.com/halom-protocol/halom/genesis"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/kv"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/state"
)

var logger = log.WithContext("pkg", "runtime")

const metaBucket = kv.Bucket("m")

var (
	genesisIDKey = []byte("genesis-id")
	lastTimeKey  = []byte("last-time")
)

// ErrGenesisMismatch is returned when the store was seeded by another genesis.
var ErrGenesisMismatch = errors.New("genesis mismatch")

// Output is the result of one call.
type Output struct {
	Time   uint64         `json:"time"`
	Events []*halom.Event `json:"events"`
}

// Runtime executes calls one at a time against the persisted state.
// A call either commits all its state changes and events or none of them.
type Runtime struct {
	db     kv.Store
	meta   kv.Store
	events *eventdb.EventDB
	clock  halom.Clock

	mu       sync.RWMutex
	lastTime uint64
}

// New create a Runtime object.
func New(db kv.Store, events *eventdb.EventDB, clock halom.Clock) (*Runtime, error) {
	rt := &Runtime{
		db:     db,
		meta:   metaBucket.NewStore(db),
		events: events,
		clock:  clock,
	}
	data, err := rt.meta.Get(lastTimeKey)
	if err != nil {
		if !rt.meta.IsNotFound(err) {
			return nil, errors.Wrap(err, "load last time")
		}
	} else {
		rt.lastTime = new(big.Int).SetBytes(data).Uint64()
	}
	return rt, nil
}

func (rt *Runtime) Events() *eventdb.EventDB { return rt.events }
func (rt *Runtime) Clock() halom.Clock       { return rt.clock }

// GenesisID returns the id of the genesis the store was seeded with.
func (rt *Runtime) GenesisID() (halom.Bytes32, bool, error) {
	data, err := rt.meta.Get(genesisIDKey)
	if err != nil {
		if rt.meta.IsNotFound(err) {
			return halom.Bytes32{}, false, nil
		}
		return halom.Bytes32{}, false, err
	}
	return halom.BytesToBytes32(data), true, nil
}

// InitGenesis seeds an empty store with gene, or verifies a seeded one was built from it.
func (rt *Runtime) InitGenesis(gene *genesis.Genesis) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	id, ok, err := rt.GenesisID()
	if err != nil {
		return err
	}
	if ok {
		if id != gene.ID() {
			return errors.WithMessagef(ErrGenesisMismatch, "want %v, stored %v", gene.ID(), id)
		}
		logger.Debug("genesis verified", "name", gene.Name(), "id", id)
		return nil
	}

	st := state.New(rt.db)
	events, err := gene.Build(st)
	if err != nil {
		return errors.Wrap(err, "build genesis")
	}
	batch := rt.db.NewBatch()
	if _, err := st.Commit(batch); err != nil {
		return err
	}
	id = gene.ID()
	if err := batch.Put(metaKey(genesisIDKey), id.Bytes()); err != nil {
		return err
	}
	if err := rt.commit(batch, events, gene.LaunchTime()); err != nil {
		return err
	}
	logger.Info("genesis initialized", "name", gene.Name(), "id", id, "events", len(events))
	return nil
}

// Call runs data on the builtin contract at target on behalf of caller.
// A positive value is transferred from caller to target before the payload runs.
func (rt *Runtime) Call(caller, target halom.Address, value *big.Int, data []byte) (*Output, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	startTime := time.Now()
	now := rt.now()
	logger.Debug("calling", "caller", caller, "target", target, "time", now)

	out, err := rt.call(caller, target, value, data, now)
	result := "ok"
	switch {
	case err == nil:
	case reverts.IsRevertErr(err):
		result = "reverted"
		logger.Info("call reverted", "caller", caller, "target", target, "err", err)
	default:
		result = "failed"
		logger.Warn("call failed", "caller", caller, "target", target, "err", err)
	}
	metricCallCount().AddWithLabel(1, map[string]string{"result": result})
	metricCallDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), map[string]string{"result": result})
	return out, err
}

func (rt *Runtime) call(caller, target halom.Address, value *big.Int, data []byte, now uint64) (*Output, error) {
	var events []*halom.Event
	st := state.New(rt.db)
	c := builtin.Bind(st, func(ev *halom.Event) {
		events = append(events, ev)
	})

	checkpoint := st.NewCheckpoint()
	if value != nil && value.Sign() > 0 {
		if err := c.Token.Transfer(caller, target, value); err != nil {
			st.RevertTo(checkpoint)
			return nil, err
		}
	}
	ctx := &action.Context{Caller: caller, Value: value, Now: now}
	if err := c.Registry.Invoke(ctx, target, data); err != nil {
		st.RevertTo(checkpoint)
		return nil, err
	}

	batch := rt.db.NewBatch()
	if _, err := st.Commit(batch); err != nil {
		return nil, err
	}
	if err := rt.commit(batch, events, now); err != nil {
		return nil, err
	}
	return &Output{Time: now, Events: events}, nil
}

// commit writes batch along with the time mark, then appends events.
func (rt *Runtime) commit(batch kv.Batch, events []*halom.Event, now uint64) error {
	if err := batch.Put(metaKey(lastTimeKey), new(big.Int).SetUint64(now).Bytes()); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write batch")
	}
	if now > rt.lastTime {
		rt.lastTime = now
		metricLastTime().Set(int64(now))
	}
	if err := rt.events.Insert(events, now); err != nil {
		return errors.Wrap(err, "append events")
	}
	return nil
}

// View runs fn against a read-only snapshot of the committed state.
func (rt *Runtime) View(fn func(c *builtin.Contracts, now uint64) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	return fn(builtin.Bind(state.New(rt.db), nil), rt.now())
}

// now never goes back past the time of the last committed call.
func (rt *Runtime) now() uint64 {
	now := rt.clock.Now()
	if now < rt.lastTime {
		return rt.lastTime
	}
	return now
}

func metaKey(k []byte) []byte {
	return append([]byte(metaBucket), k...)
}

func (o *Output) String() string {
	return fmt.Sprintf("Output(time=%d, events=%d)", o.Time, len(o.Events))
}
