// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package governor implements the proposal lifecycle.
//
// Proposals are voted with stake derived voting power. Succeeded proposals are queued as one
// timelock batch salted with the proposal id, and executed through the timelock.
package governor

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/linkedlist"
	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/metrics"
)

var (
	logger    = log.WithContext("pkg", "governor")
	metricOps = metrics.LazyLoadCounterVec("governor_operations_count", []string{"op", "result"})

	slotProposals = halom.BytesToBytes32([]byte("proposals"))
	slotReceipts  = halom.BytesToBytes32([]byte("receipts"))
	slotActivity  = halom.BytesToBytes32([]byte("activity"))
	slotOpen      = halom.BytesToBytes32([]byte("open-proposals"))
	slotCount     = halom.BytesToBytes32([]byte("proposal-count"))
	slotPaused    = halom.BytesToBytes32([]byte("paused"))
)

// PowerSource provides the voting power of accounts.
type PowerSource interface {
	VotingPower(addr halom.Address, now uint64) (*big.Int, error)
	TotalVotingPower(now uint64) (*big.Int, error)
}

// Executor is the delayed execution queue proposals are handed to.
type Executor interface {
	MinDelay() (uint64, error)
	ScheduleBatch(caller halom.Address, calls []timelock.Call, predecessor, salt halom.Bytes32, delay, now uint64) (halom.Bytes32, error)
	ExecuteBatch(caller halom.Address, calls []timelock.Call, predecessor, salt halom.Bytes32, now uint64) (halom.Bytes32, error)
	OperationState(id halom.Bytes32, now uint64) (timelock.State, error)
}

// Governor binder of the governance contract.
type Governor struct {
	sctx     *solidity.Context
	params   *params.Params
	acl      acl.Checker
	power    PowerSource
	executor Executor

	proposals *solidity.Mapping[halom.Bytes32, *Proposal]
	receipts  *solidity.Mapping[halom.Bytes32, *Receipt]
	activity  *solidity.Mapping[halom.Address, *activity]
	open      *linkedlist.LinkedList[halom.Bytes32]
	count     *solidity.Uint256
	paused    *solidity.Raw[bool]
}

func New(sctx *solidity.Context, params *params.Params, checker acl.Checker, power PowerSource, executor Executor) *Governor {
	return &Governor{
		sctx:     sctx,
		params:   params,
		acl:      checker,
		power:    power,
		executor: executor,

		proposals: solidity.NewMapping[halom.Bytes32, *Proposal](sctx, slotProposals),
		receipts:  solidity.NewMapping[halom.Bytes32, *Receipt](sctx, slotReceipts),
		activity:  solidity.NewMapping[halom.Address, *activity](sctx, slotActivity),
		open:      linkedlist.New[halom.Bytes32](sctx, slotOpen),
		count:     solidity.NewUint256(sctx, slotCount),
		paused:    solidity.NewRaw[bool](sctx, slotPaused),
	}
}

func (g *Governor) Address() halom.Address {
	return g.sctx.Address()
}

type config struct {
	votingDelay       uint64
	votingPeriod      uint64
	proposalThreshold *big.Int
	quorumBps         uint64
	voteCooldown      uint64
	dailyVoteCap      uint64
	proposalMaxAge    uint64
	executionDelay    uint64
}

func (g *Governor) config() (*config, error) {
	var (
		cfg config
		err error
	)
	for _, p := range []struct {
		key halom.Bytes32
		dst *uint64
	}{
		{halom.KeyVotingDelay, &cfg.votingDelay},
		{halom.KeyVotingPeriod, &cfg.votingPeriod},
		{halom.KeyQuorumBps, &cfg.quorumBps},
		{halom.KeyVoteCooldown, &cfg.voteCooldown},
		{halom.KeyDailyVoteCap, &cfg.dailyVoteCap},
		{halom.KeyProposalMaxAge, &cfg.proposalMaxAge},
		{halom.KeyExecutionDelay, &cfg.executionDelay},
	} {
		if *p.dst, err = g.params.GetUint64(p.key); err != nil {
			return nil, err
		}
	}
	if cfg.proposalThreshold, err = g.params.Get(halom.KeyProposalThreshold); err != nil {
		return nil, err
	}
	if cfg.quorumBps > halom.BasisPoints {
		cfg.quorumBps = halom.BasisPoints
	}
	return &cfg, nil
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

func receiptKey(id halom.Bytes32, voter halom.Address) halom.Bytes32 {
	return halom.Blake2b(id.Bytes(), voter.Bytes())
}

//
// Getters - no state change
//

// Proposal returns the stored proposal, nil if unknown.
func (g *Governor) Proposal(id halom.Bytes32) (*Proposal, error) {
	p, err := g.proposals.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proposal")
	}
	if p == nil {
		return nil, nil
	}
	return p.normalize(), nil
}

func (g *Governor) mustProposal(id halom.Bytes32) (*Proposal, error) {
	p, err := g.Proposal(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.WithMessagef(reverts.ErrUnknownProposal, "proposal %s", id.AbbrevString())
	}
	return p, nil
}

// ProposalState returns the state of proposal id at now.
func (g *Governor) ProposalState(id halom.Bytes32, now uint64) (State, error) {
	p, err := g.mustProposal(id)
	if err != nil {
		return StatePending, err
	}
	cfg, err := g.config()
	if err != nil {
		return StatePending, err
	}
	s, err := g.state(cfg, p, now)
	return s, err
}

// Receipt returns the vote of voter on proposal id, nil if none.
func (g *Governor) Receipt(id halom.Bytes32, voter halom.Address) (*Receipt, error) {
	return g.receipts.Get(receiptKey(id, voter))
}

// Quorum returns the turnout needed at now.
func (g *Governor) Quorum(now uint64) (*big.Int, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	return g.quorum(cfg, now)
}

func (g *Governor) quorum(cfg *config, now uint64) (*big.Int, error) {
	total, err := g.power.TotalVotingPower(now)
	if err != nil {
		return nil, err
	}
	q := new(big.Int).Mul(total, new(big.Int).SetUint64(cfg.quorumBps))
	return q.Quo(q, new(big.Int).SetUint64(halom.BasisPoints)), nil
}

func (g *Governor) Paused() (bool, error) {
	return g.paused.Get()
}

// ProposalCount returns the number of proposals ever created.
func (g *Governor) ProposalCount() (uint64, error) {
	n, err := g.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// OpenProposals returns the ids of proposals not known to be final, oldest first.
func (g *Governor) OpenProposals() ([]halom.Bytes32, error) {
	var ids []halom.Bytes32
	err := g.open.Iter(func(id halom.Bytes32) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// state derives the state of p at now.
func (g *Governor) state(cfg *config, p *Proposal, now uint64) (State, error) {
	switch p.Status {
	case statusCanceled:
		return StateCanceled, nil
	case statusDefeated:
		return StateDefeated, nil
	case statusExecuted:
		return StateExecuted, nil
	case statusExpired:
		return StateExpired, nil
	case statusQueued:
		opState, err := g.executor.OperationState(p.OperationID, now)
		if err != nil {
			return StateQueued, err
		}
		switch opState {
		case timelock.StateDone:
			return StateExecuted, nil
		case timelock.StateExpired:
			return StateExpired, nil
		case timelock.StateUnset:
			// cancelled in the timelock
			return StateCanceled, nil
		}
		return StateQueued, nil
	case statusSucceeded:
		return g.succeededOrExpired(cfg, p, now), nil
	}

	if now < p.VotingStart {
		return StatePending, nil
	}
	if now < p.VotingEnd {
		return StateActive, nil
	}
	if p.For.Cmp(p.Against) > 0 && p.Turnout().Cmp(p.Quorum) >= 0 {
		return g.succeededOrExpired(cfg, p, now), nil
	}
	return StateDefeated, nil
}

func (g *Governor) succeededOrExpired(cfg *config, p *Proposal, now uint64) State {
	if cfg.proposalMaxAge > 0 && now > p.VotingEnd+cfg.proposalMaxAge {
		return StateExpired
	}
	return StateSucceeded
}

//
// Setters - state change
//

// Propose creates a proposal carrying the given calls. The arrays must have the same length.
func (g *Governor) Propose(proposer halom.Address, targets []halom.Address, values []*big.Int, payloads [][]byte, description string, now uint64) (halom.Bytes32, error) {
	logger.Debug("proposing", "proposer", proposer, "calls", len(targets))
	id, err := g.propose(proposer, targets, values, payloads, description, now)
	return id, record("propose", err, "proposer", proposer, "id", id)
}

func (g *Governor) propose(proposer halom.Address, targets []halom.Address, values []*big.Int, payloads [][]byte, description string, now uint64) (halom.Bytes32, error) {
	if paused, err := g.paused.Get(); err != nil {
		return halom.Bytes32{}, err
	} else if paused {
		return halom.Bytes32{}, reverts.ErrEmergencyPaused
	}
	if len(targets) != len(values) || len(targets) != len(payloads) {
		return halom.Bytes32{}, errors.WithMessagef(reverts.ErrInvalidProposalLength,
			"targets %d, values %d, payloads %d", len(targets), len(values), len(payloads))
	}
	if len(targets) == 0 {
		return halom.Bytes32{}, reverts.ErrEmptyProposal
	}

	cfg, err := g.config()
	if err != nil {
		return halom.Bytes32{}, err
	}
	power, err := g.power.VotingPower(proposer, now)
	if err != nil {
		return halom.Bytes32{}, err
	}
	if power.Cmp(cfg.proposalThreshold) < 0 {
		return halom.Bytes32{}, errors.WithMessagef(reverts.ErrInsufficientProposerVotes,
			"power %v below threshold %v", power, cfg.proposalThreshold)
	}

	normalized := make([]*big.Int, len(values))
	for i, v := range values {
		if v == nil {
			v = new(big.Int)
		}
		if v.Sign() < 0 {
			return halom.Bytes32{}, errors.WithMessagef(reverts.ErrInvalidAmount, "negative value in call %d", i)
		}
		normalized[i] = v
	}
	descHash := halom.Keccak256([]byte(description))
	id := HashProposal(targets, normalized, payloads, descHash)

	existing, err := g.proposals.Get(id)
	if err != nil {
		return halom.Bytes32{}, err
	}
	if existing != nil {
		return halom.Bytes32{}, errors.WithMessagef(reverts.ErrProposalExists, "proposal %s", id.AbbrevString())
	}

	votingStart := now + cfg.votingDelay
	votingEnd := votingStart + cfg.votingPeriod
	// fixed now, later stakes cannot move it
	quorum, err := g.quorum(cfg, votingEnd)
	if err != nil {
		return halom.Bytes32{}, err
	}
	p := &Proposal{
		Proposer:        proposer,
		Targets:         targets,
		Values:          normalized,
		Payloads:        payloads,
		Description:     description,
		DescriptionHash: descHash,
		CreationTime:    now,
		VotingStart:     votingStart,
		VotingEnd:       votingEnd,
		Quorum:          quorum,
		Status:          statusOpen,
	}
	p.normalize()
	if err := g.proposals.Set(id, p); err != nil {
		return halom.Bytes32{}, err
	}
	if err := g.open.Add(id); err != nil {
		return halom.Bytes32{}, err
	}
	if err := g.count.Add(big.NewInt(1)); err != nil {
		return halom.Bytes32{}, err
	}
	return id, g.sctx.Emit("ProposalCreated", []halom.Bytes32{id, halom.BytesToBytes32(proposer.Bytes())}, map[string]any{
		"calls":       len(targets),
		"description": description,
		"votingStart": p.VotingStart,
		"votingEnd":   p.VotingEnd,
		"quorum":      quorum.String(),
	})
}

// CastVote records the vote of voter weighted by its voting power at now.
func (g *Governor) CastVote(voter halom.Address, id halom.Bytes32, support VoteType, reason string, now uint64) (*big.Int, error) {
	logger.Debug("casting vote", "voter", voter, "id", id, "support", support)
	weight, err := g.castVote(voter, id, support, reason, now)
	return weight, record("castVote", err, "voter", voter, "id", id, "weight", weight)
}

func (g *Governor) castVote(voter halom.Address, id halom.Bytes32, support VoteType, reason string, now uint64) (*big.Int, error) {
	p, err := g.mustProposal(id)
	if err != nil {
		return nil, err
	}
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	state, err := g.state(cfg, p, now)
	if err != nil {
		return nil, err
	}
	if state != StateActive {
		return nil, errors.WithMessagef(reverts.ErrUnexpectedProposalState, "proposal is %s", state)
	}
	if support > VoteAbstain {
		return nil, errors.WithMessagef(reverts.ErrInvalidVoteType, "vote type %d", support)
	}

	act, err := g.activity.Get(voter)
	if err != nil {
		return nil, err
	}
	if act == nil {
		act = &activity{}
	}
	day := now / halom.Day
	if act.Voted && cfg.voteCooldown > 0 && now < act.LastVote+cfg.voteCooldown {
		return nil, errors.WithMessagef(reverts.ErrFlashLoanDetected, "last vote at %d, cooldown %d", act.LastVote, cfg.voteCooldown)
	}
	if act.Day != day {
		act.Day, act.Count = day, 0
	}
	if cfg.dailyVoteCap > 0 && act.Count >= cfg.dailyVoteCap {
		return nil, errors.WithMessagef(reverts.ErrFlashLoanDetected, "daily vote cap %d reached", cfg.dailyVoteCap)
	}

	key := receiptKey(id, voter)
	if r, err := g.receipts.Get(key); err != nil {
		return nil, err
	} else if r != nil {
		return nil, reverts.ErrAlreadyVoted
	}

	weight, err := g.power.VotingPower(voter, now)
	if err != nil {
		return nil, err
	}
	switch support {
	case VoteAgainst:
		p.Against.Add(p.Against, weight)
	case VoteFor:
		p.For.Add(p.For, weight)
	case VoteAbstain:
		p.Abstain.Add(p.Abstain, weight)
	}
	if err := g.proposals.Set(id, p); err != nil {
		return nil, err
	}
	if err := g.receipts.Set(key, &Receipt{Support: support, Weight: weight, Timestamp: now}); err != nil {
		return nil, err
	}
	act.LastVote, act.Voted = now, true
	act.Count++
	if err := g.activity.Set(voter, act); err != nil {
		return nil, err
	}
	return weight, g.sctx.Emit("VoteCast", []halom.Bytes32{id, halom.BytesToBytes32(voter.Bytes())}, map[string]any{
		"support": support,
		"weight":  weight.String(),
		"reason":  reason,
	})
}

// Cancel withdraws a pending or active proposal. Only its proposer may call it.
func (g *Governor) Cancel(caller halom.Address, id halom.Bytes32, now uint64) error {
	logger.Debug("cancelling proposal", "caller", caller, "id", id)
	err := g.cancel(caller, id, now)
	return record("cancel", err, "id", id)
}

func (g *Governor) cancel(caller halom.Address, id halom.Bytes32, now uint64) error {
	p, err := g.mustProposal(id)
	if err != nil {
		return err
	}
	if p.Proposer != caller {
		return errors.WithMessage(reverts.ErrUnauthorized, "only the proposer can cancel")
	}
	cfg, err := g.config()
	if err != nil {
		return err
	}
	state, err := g.state(cfg, p, now)
	if err != nil {
		return err
	}
	if state != StatePending && state != StateActive {
		return errors.WithMessagef(reverts.ErrUnexpectedProposalState, "proposal is %s", state)
	}
	p.Status = statusCanceled
	if err := g.proposals.Set(id, p); err != nil {
		return err
	}
	if err := g.open.Remove(id); err != nil {
		return err
	}
	return g.sctx.Emit("ProposalCanceled", []halom.Bytes32{id}, nil)
}

// Resolve persists the outcome of proposal id if voting is over.
func (g *Governor) Resolve(id halom.Bytes32, now uint64) (State, error) {
	p, err := g.mustProposal(id)
	if err != nil {
		return StatePending, err
	}
	cfg, err := g.config()
	if err != nil {
		return StatePending, err
	}
	state, err := g.resolve(cfg, id, p, now)
	return state, record("resolve", err, "id", id, "state", state)
}

// Housekeep resolves every open proposal and drops final ones from the open index.
// It returns the number of proposals whose stored status changed.
func (g *Governor) Housekeep(now uint64) (int, error) {
	logger.Debug("housekeeping", "now", now)
	cfg, err := g.config()
	if err != nil {
		return 0, err
	}
	changed := 0
	err = g.open.Iter(func(id halom.Bytes32) error {
		p, err := g.mustProposal(id)
		if err != nil {
			return err
		}
		before := p.Status
		if _, err := g.resolve(cfg, id, p, now); err != nil {
			return err
		}
		if p.Status != before {
			changed++
		}
		return nil
	})
	return changed, record("housekeep", err, "changed", changed)
}

func (g *Governor) resolve(cfg *config, id halom.Bytes32, p *Proposal, now uint64) (State, error) {
	state, err := g.state(cfg, p, now)
	if err != nil {
		return state, err
	}

	next := p.Status
	switch state {
	case StateDefeated:
		next = statusDefeated
	case StateSucceeded:
		next = statusSucceeded
	case StateExpired:
		next = statusExpired
	case StateExecuted:
		next = statusExecuted
	case StateCanceled:
		next = statusCanceled
	}
	if next != p.Status {
		p.Status = next
		if err := g.proposals.Set(id, p); err != nil {
			return state, err
		}
		if err := g.sctx.Emit("ProposalResolved", []halom.Bytes32{id}, map[string]any{
			"state":   state,
			"for":     p.For.String(),
			"against": p.Against.String(),
			"abstain": p.Abstain.String(),
			"quorum":  p.Quorum.String(),
		}); err != nil {
			return state, err
		}
	}
	if state.IsFinal() {
		if err := g.open.Remove(id); err != nil {
			return state, err
		}
	}
	return state, nil
}

// Queue schedules a succeeded proposal in the timelock.
func (g *Governor) Queue(id halom.Bytes32, now uint64) (halom.Bytes32, error) {
	logger.Debug("queueing proposal", "id", id)
	opID, err := g.queue(id, now)
	return opID, record("queue", err, "id", id, "operation", opID)
}

func (g *Governor) queue(id halom.Bytes32, now uint64) (halom.Bytes32, error) {
	p, err := g.mustProposal(id)
	if err != nil {
		return halom.Bytes32{}, err
	}
	cfg, err := g.config()
	if err != nil {
		return halom.Bytes32{}, err
	}
	state, err := g.state(cfg, p, now)
	if err != nil {
		return halom.Bytes32{}, err
	}
	if state != StateSucceeded {
		return halom.Bytes32{}, errors.WithMessagef(reverts.ErrUnexpectedProposalState, "proposal is %s", state)
	}

	delay, err := g.executor.MinDelay()
	if err != nil {
		return halom.Bytes32{}, err
	}
	if cfg.executionDelay > delay {
		delay = cfg.executionDelay
	}
	opID, err := g.executor.ScheduleBatch(g.Address(), p.Calls(), halom.Bytes32{}, id, delay, now)
	if err != nil {
		return halom.Bytes32{}, err
	}

	p.Status = statusQueued
	p.OperationID = opID
	p.Eta = now + delay
	if err := g.proposals.Set(id, p); err != nil {
		return halom.Bytes32{}, err
	}
	return opID, g.sctx.Emit("ProposalQueued", []halom.Bytes32{id, opID}, map[string]any{
		"eta": p.Eta,
	})
}

// Execute runs a queued proposal through the timelock.
func (g *Governor) Execute(id halom.Bytes32, now uint64) error {
	logger.Debug("executing proposal", "id", id)
	err := g.execute(id, now)
	return record("execute", err, "id", id)
}

func (g *Governor) execute(id halom.Bytes32, now uint64) error {
	p, err := g.mustProposal(id)
	if err != nil {
		return err
	}
	cfg, err := g.config()
	if err != nil {
		return err
	}
	state, err := g.state(cfg, p, now)
	if err != nil {
		return err
	}
	if state != StateQueued {
		return errors.WithMessagef(reverts.ErrUnexpectedProposalState, "proposal is %s", state)
	}

	st := g.sctx.State()
	checkpoint := st.NewCheckpoint()

	p.Status = statusExecuted
	if err := g.proposals.Set(id, p); err != nil {
		st.RevertTo(checkpoint)
		return err
	}
	if err := g.open.Remove(id); err != nil {
		st.RevertTo(checkpoint)
		return err
	}
	if _, err := g.executor.ExecuteBatch(g.Address(), p.Calls(), halom.Bytes32{}, id, now); err != nil {
		st.RevertTo(checkpoint)
		return err
	}
	return g.sctx.Emit("ProposalExecuted", []halom.Bytes32{id}, nil)
}

// SetPaused blocks or unblocks new proposals. Only guardians may call it.
func (g *Governor) SetPaused(caller halom.Address, paused bool) error {
	logger.Debug("setting paused", "caller", caller, "paused", paused)
	err := g.setPaused(caller, paused)
	return record("setPaused", err, "paused", paused)
}

func (g *Governor) setPaused(caller halom.Address, paused bool) error {
	if err := acl.Require(g.acl, acl.RoleGuardian, caller); err != nil {
		return err
	}
	if err := g.paused.Update(paused); err != nil {
		return err
	}
	return g.sctx.Emit("PausedSet", nil, map[string]any{"value": paused})
}
