// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package timelock delays the execution of governance operations.
//
// An operation moves Unset -> Waiting -> Ready -> Done. Waiting and Ready operations can be
// cancelled back to Unset. An operation only executes once its predecessor, if any, is Done.
package timelock

import (
	"math"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/builtin/token"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/metrics"
)

// DefaultMinDelay applies until a minimum delay is stored.
const DefaultMinDelay uint64 = 60 * 60

var (
	logger    = log.WithContext("pkg", "timelock")
	metricOps = metrics.LazyLoadCounterVec("timelock_operations_count", []string{"op", "result"})

	slotOperations = halom.BytesToBytes32([]byte("operations"))
	slotMinDelay   = halom.BytesToBytes32([]byte("min-delay"))
	slotTestMode   = halom.BytesToBytes32([]byte("test-mode"))
	slotPaused     = halom.BytesToBytes32([]byte("paused"))
)

// Invoker runs call data against a contract address.
type Invoker interface {
	Invoke(ctx *action.Context, addr halom.Address, data []byte) error
}

// Timelock binder of the delayed execution queue. Value sent by calls comes from the
// balance held at the timelock address.
type Timelock struct {
	sctx    *solidity.Context
	params  *params.Params
	acl     acl.Checker
	token   token.Ledger
	invoker Invoker

	operations *solidity.Mapping[halom.Bytes32, *Operation]
	minDelay   *solidity.Raw[uint64]
	testMode   *solidity.Raw[bool]
	paused     *solidity.Raw[bool]
}

func New(sctx *solidity.Context, params *params.Params, checker acl.Checker, ledger token.Ledger, invoker Invoker) *Timelock {
	return &Timelock{
		sctx:    sctx,
		params:  params,
		acl:     checker,
		token:   ledger,
		invoker: invoker,

		operations: solidity.NewMapping[halom.Bytes32, *Operation](sctx, slotOperations),
		minDelay:   solidity.NewRaw[uint64](sctx, slotMinDelay),
		testMode:   solidity.NewRaw[bool](sctx, slotTestMode),
		paused:     solidity.NewRaw[bool](sctx, slotPaused),
	}
}

func (t *Timelock) Address() halom.Address {
	return t.sctx.Address()
}

func record(op string, err error, ctx ...any) error {
	if err != nil {
		metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "rejected"})
		logger.Info(op+" rejected", append(ctx, "error", err)...)
		return err
	}
	metricOps().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})
	logger.Info(op+" done", ctx...)
	return nil
}

//
// Getters - no state change
//

func (t *Timelock) MinDelay() (uint64, error) {
	d, err := t.minDelay.Get()
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return DefaultMinDelay, nil
	}
	return d, nil
}

func (t *Timelock) TestMode() (bool, error) {
	return t.testMode.Get()
}

func (t *Timelock) Paused() (bool, error) {
	return t.paused.Get()
}

// GracePeriod returns how long a ready operation stays executable, 0 meaning forever.
func (t *Timelock) GracePeriod() (uint64, error) {
	return t.params.GetUint64(halom.KeyTimelockGracePeriod)
}

// Operation returns the stored operation, nil if unset.
func (t *Timelock) Operation(id halom.Bytes32) (*Operation, error) {
	return t.operations.Get(id)
}

// OperationState returns the state of operation id at now.
func (t *Timelock) OperationState(id halom.Bytes32, now uint64) (State, error) {
	op, err := t.operations.Get(id)
	if err != nil {
		return StateUnset, err
	}
	grace, err := t.GracePeriod()
	if err != nil {
		return StateUnset, err
	}
	return op.State(now, grace), nil
}

//
// Setters - state change
//

// Init stores the initial minimum delay, used by genesis.
func (t *Timelock) Init(minDelay uint64) error {
	if minDelay < halom.MinDelayFloor {
		return errors.WithMessagef(reverts.ErrInsufficientDelay, "min delay must be at least %d", halom.MinDelayFloor)
	}
	return t.minDelay.Update(minDelay)
}

// Schedule registers a single call operation that becomes ready after delay.
func (t *Timelock) Schedule(caller halom.Address, call Call, predecessor, salt halom.Bytes32, delay, now uint64) (halom.Bytes32, error) {
	id := HashOperation(call, predecessor, salt)
	logger.Debug("scheduling", "id", id, "target", call.Target, "delay", delay)
	err := t.schedule(caller, id, []Call{call}, predecessor, delay, now)
	return id, record("schedule", err, "id", id, "delay", delay)
}

// ScheduleBatch registers the calls as one operation that becomes ready after delay.
func (t *Timelock) ScheduleBatch(caller halom.Address, calls []Call, predecessor, salt halom.Bytes32, delay, now uint64) (halom.Bytes32, error) {
	id := HashOperationBatch(calls, predecessor, salt)
	logger.Debug("scheduling batch", "id", id, "calls", len(calls), "delay", delay)
	err := t.schedule(caller, id, calls, predecessor, delay, now)
	return id, record("scheduleBatch", err, "id", id, "delay", delay)
}

func (t *Timelock) schedule(caller halom.Address, id halom.Bytes32, calls []Call, predecessor halom.Bytes32, delay, now uint64) error {
	if err := acl.Require(t.acl, acl.RoleProposer, caller); err != nil {
		return err
	}
	if paused, err := t.paused.Get(); err != nil {
		return err
	} else if paused {
		return reverts.ErrEmergencyPaused
	}
	if len(calls) == 0 {
		return errors.WithMessage(reverts.ErrInvalidPayload, "no calls")
	}

	minDelay, err := t.MinDelay()
	if err != nil {
		return err
	}
	testMode, err := t.testMode.Get()
	if err != nil {
		return err
	}
	if delay < minDelay && !testMode {
		return errors.WithMessagef(reverts.ErrInsufficientDelay, "delay %d below minimum %d", delay, minDelay)
	}
	if delay > math.MaxUint64-now {
		return errors.WithMessagef(reverts.ErrInvalidPayload, "delay %d overflows ready time", delay)
	}

	op, err := t.operations.Get(id)
	if err != nil {
		return err
	}
	grace, err := t.GracePeriod()
	if err != nil {
		return err
	}
	// an expired operation can be scheduled again
	if state := op.State(now, grace); state != StateUnset && state != StateExpired {
		return errors.WithMessagef(reverts.ErrUnexpectedOperationState, "operation %s already scheduled", id.AbbrevString())
	}
	op = &Operation{
		ReadyTime:   now + delay,
		ScheduledAt: now,
		Predecessor: predecessor,
	}
	if op.ReadyTime == 0 {
		// zero marks unset operations
		op.ReadyTime = 1
	}
	if err := t.operations.Set(id, op); err != nil {
		return err
	}
	return t.sctx.Emit("CallScheduled", []halom.Bytes32{id}, map[string]any{
		"calls":       len(calls),
		"predecessor": predecessor,
		"readyTime":   op.ReadyTime,
	})
}

// Execute runs a ready single call operation.
func (t *Timelock) Execute(caller halom.Address, call Call, predecessor, salt halom.Bytes32, now uint64) (halom.Bytes32, error) {
	id := HashOperation(call, predecessor, salt)
	logger.Debug("executing", "id", id, "target", call.Target)
	err := t.execute(caller, id, []Call{call}, now)
	return id, record("execute", err, "id", id)
}

// ExecuteBatch runs a ready batch operation. Either every call succeeds or none takes effect.
func (t *Timelock) ExecuteBatch(caller halom.Address, calls []Call, predecessor, salt halom.Bytes32, now uint64) (halom.Bytes32, error) {
	id := HashOperationBatch(calls, predecessor, salt)
	logger.Debug("executing batch", "id", id, "calls", len(calls))
	err := t.execute(caller, id, calls, now)
	return id, record("executeBatch", err, "id", id)
}

func (t *Timelock) execute(caller halom.Address, id halom.Bytes32, calls []Call, now uint64) error {
	if err := acl.Require(t.acl, acl.RoleExecutor, caller); err != nil {
		return err
	}
	op, err := t.operations.Get(id)
	if err != nil {
		return err
	}
	grace, err := t.GracePeriod()
	if err != nil {
		return err
	}
	switch op.State(now, grace) {
	case StateUnset, StateDone:
		return errors.WithMessagef(reverts.ErrUnexpectedOperationState, "operation %s is not pending", id.AbbrevString())
	case StateWaiting:
		return errors.WithMessagef(reverts.ErrOperationNotReady, "ready at %d", op.ReadyTime)
	case StateExpired:
		return errors.WithMessagef(reverts.ErrOperationExpired, "expired at %d", op.ReadyTime+grace)
	}
	if !op.Predecessor.IsZero() {
		pred, err := t.operations.Get(op.Predecessor)
		if err != nil {
			return err
		}
		if pred == nil || !pred.Done {
			return errors.WithMessagef(reverts.ErrOperationNotReady, "predecessor %s not done", op.Predecessor.AbbrevString())
		}
	}

	st := t.sctx.State()
	checkpoint := st.NewCheckpoint()

	op.Done = true
	if err := t.operations.Set(id, op); err != nil {
		st.RevertTo(checkpoint)
		return err
	}
	for i, call := range calls {
		if err := t.invoke(call, now); err != nil {
			st.RevertTo(checkpoint)
			return errors.WithMessagef(err, "call %d to %s", i, call.Target)
		}
	}
	return t.sctx.Emit("CallExecuted", []halom.Bytes32{id}, map[string]any{
		"calls": len(calls),
	})
}

func (t *Timelock) invoke(call Call, now uint64) error {
	value := bigOrZero(call.Value)
	if value.Sign() > 0 {
		if err := t.token.Transfer(t.Address(), call.Target, value); err != nil {
			return err
		}
	}
	if len(call.Payload) == 0 {
		return nil
	}
	return t.invoker.Invoke(&action.Context{
		Caller: t.Address(),
		Value:  value,
		Now:    now,
	}, call.Target, call.Payload)
}

// Cancel drops an operation that is still waiting for its delay.
func (t *Timelock) Cancel(caller halom.Address, id halom.Bytes32, now uint64) error {
	logger.Debug("cancelling", "id", id)
	err := t.cancel(caller, id, now)
	return record("cancel", err, "id", id)
}

func (t *Timelock) cancel(caller halom.Address, id halom.Bytes32, now uint64) error {
	if err := acl.Require(t.acl, acl.RoleCanceller, caller); err != nil {
		return err
	}
	op, err := t.operations.Get(id)
	if err != nil {
		return err
	}
	grace, err := t.GracePeriod()
	if err != nil {
		return err
	}
	if state := op.State(now, grace); state != StateWaiting {
		return errors.WithMessagef(reverts.ErrUnexpectedOperationState, "operation %s is %s", id.AbbrevString(), state)
	}
	t.operations.Delete(id)
	return t.sctx.Emit("Cancelled", []halom.Bytes32{id}, nil)
}

// UpdateDelay changes the minimum delay. Only admins, usually the timelock itself, may call it.
func (t *Timelock) UpdateDelay(caller halom.Address, delay uint64) error {
	logger.Debug("updating min delay", "caller", caller, "delay", delay)
	err := t.updateDelay(caller, delay)
	return record("updateDelay", err, "delay", delay)
}

func (t *Timelock) updateDelay(caller halom.Address, delay uint64) error {
	if err := acl.Require(t.acl, acl.RoleAdmin, caller); err != nil {
		return err
	}
	if delay < halom.MinDelayFloor {
		return errors.WithMessagef(reverts.ErrInsufficientDelay, "min delay must be at least %d", halom.MinDelayFloor)
	}
	old, err := t.MinDelay()
	if err != nil {
		return err
	}
	if err := t.minDelay.Update(delay); err != nil {
		return err
	}
	return t.sctx.Emit("MinDelayChange", nil, map[string]any{
		"oldDuration": old,
		"newDuration": delay,
	})
}

// SetTestMode lets operations be scheduled below the minimum delay.
func (t *Timelock) SetTestMode(caller halom.Address, enabled bool) error {
	logger.Debug("setting test mode", "caller", caller, "enabled", enabled)
	err := t.setFlag(caller, acl.RoleAdmin, t.testMode, "TestModeSet", enabled)
	return record("setTestMode", err, "enabled", enabled)
}

// SetPaused blocks or unblocks scheduling. Only guardians may call it.
func (t *Timelock) SetPaused(caller halom.Address, paused bool) error {
	logger.Debug("setting paused", "caller", caller, "paused", paused)
	err := t.setFlag(caller, acl.RoleGuardian, t.paused, "PausedSet", paused)
	return record("setPaused", err, "paused", paused)
}

func (t *Timelock) setFlag(caller halom.Address, role acl.Role, flag *solidity.Raw[bool], event string, value bool) error {
	if err := acl.Require(t.acl, role, caller); err != nil {
		return err
	}
	if err := flag.Update(value); err != nil {
		return err
	}
	return t.sctx.Emit(event, nil, map[string]any{"value": value})
}
