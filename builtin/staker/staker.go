// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/builtin/staker/pool"
	"github.com/halom-protocol/halom/builtin/staker/position"
	"github.com/halom-protocol/halom/builtin/staker/validator"
	"github.com/halom-protocol/halom/builtin/token"
	"github.com/halom-protocol/halom/builtin/votingpower"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/metrics"
)

var (
	logger    = log.WithContext("pkg", "staker")
	metricOps = metrics.LazyLoadCounterVec("staker_operations_count", []string{"op", "result"})
)

// Delegation voting power policies, selected by halom.KeyDelegationPolicy.
const (
	// PolicyRetain leaves the whole power with the delegator.
	PolicyRetain uint64 = 0
	// PolicyTransfer moves the power of the delegated amount to the validator.
	PolicyTransfer uint64 = 1
)

// Staker implements the staking ledger.
type Staker struct {
	sctx   *solidity.Context
	params *params.Params
	acl    acl.Checker
	token  token.Ledger
	calc   *votingpower.Calculator

	poolService      *pool.Service
	positionService  *position.Service
	validatorService *validator.Service
}

// New create a new instance. Staked tokens are held at the address of sctx.
func New(sctx *solidity.Context, params *params.Params, checker acl.Checker, ledger token.Ledger, calc *votingpower.Calculator) *Staker {
	return &Staker{
		sctx:   sctx,
		params: params,
		acl:    checker,
		token:  ledger,
		calc:   calc,

		poolService:      pool.New(sctx),
		positionService:  position.New(sctx),
		validatorService: validator.New(sctx),
	}
}

// Address returns the address holding staked tokens.
func (s *Staker) Address() halom.Address {
	return s.sctx.Address()
}

type config struct {
	minStake, maxStake *big.Int
	minLock, maxLock   uint64
	slashBps           uint64
	maxCommissionBps   uint64
	policy             uint64
}

func (s *Staker) config() (*config, error) {
	var (
		cfg config
		err error
	)
	if cfg.minStake, err = s.params.Get(halom.KeyMinStake); err != nil {
		return nil, err
	}
	if cfg.maxStake, err = s.params.Get(halom.KeyMaxStake); err != nil {
		return nil, err
	}
	if cfg.minLock, err = s.params.GetUint64(halom.KeyMinLockDuration); err != nil {
		return nil, err
	}
	if cfg.maxLock, err = s.params.GetUint64(halom.KeyMaxLockDuration); err != nil {
		return nil, err
	}
	if cfg.slashBps, err = s.params.GetUint64(halom.KeySlashBps); err != nil {
		return nil, err
	}
	if cfg.maxCommissionBps, err = s.params.GetUint64(halom.KeyMaxCommissionBps); err != nil {
		return nil, err
	}
	if cfg.maxCommissionBps > halom.MaxCommissionRateBps {
		cfg.maxCommissionBps = halom.MaxCommissionRateBps
	}
	if cfg.slashBps > halom.BasisPoints {
		cfg.slashBps = halom.BasisPoints
	}
	if cfg.policy, err = s.params.GetUint64(halom.KeyDelegationPolicy); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// record counts the operation and logs its outcome.
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

func addressTopic(addr halom.Address) halom.Bytes32 {
	return halom.BytesToBytes32(addr.Bytes())
}

//
// Getters - no state change
//

// Pool returns the reward pool aggregate.
func (s *Staker) Pool() (*pool.Pool, error) {
	return s.poolService.Get()
}

// Position returns the position of staker, nil if none.
func (s *Staker) Position(staker halom.Address) (*position.Position, error) {
	return s.positionService.Get(staker)
}

// Validator returns the validator record of addr, nil if none.
func (s *Staker) Validator(addr halom.Address) (*validator.Validator, error) {
	return s.validatorService.Get(addr)
}

// Delegators returns the addresses delegating to validator.
func (s *Staker) Delegators(addr halom.Address) ([]halom.Address, error) {
	var out []halom.Address
	err := s.validatorService.IterDelegators(addr, func(d halom.Address) error {
		out = append(out, d)
		return nil
	})
	return out, err
}

// StakerCount returns the number of positions.
func (s *Staker) StakerCount() (uint64, error) {
	return s.positionService.Count()
}

// PendingRewards returns the claimable rewards of staker including the not yet settled accrual,
// net of the validator commission.
func (s *Staker) PendingRewards(staker halom.Address) (*big.Int, error) {
	pos, err := s.positionService.Get(staker)
	if err != nil || pos == nil {
		return new(big.Int), err
	}
	p, err := s.poolService.Get()
	if err != nil {
		return nil, err
	}
	accrued := pos.Accrued(p.AccRewardPerShare)
	commission, err := s.commissionOf(pos, accrued)
	if err != nil {
		return nil, err
	}
	accrued.Sub(accrued, commission)
	return accrued.Add(accrued, pos.Pending), nil
}

// VotingPower returns the voting power of addr at now.
func (s *Staker) VotingPower(addr halom.Address, now uint64) (*big.Int, error) {
	cfg, err := votingpower.LoadConfig(s.params)
	if err != nil {
		return nil, err
	}
	policy, err := s.params.GetUint64(halom.KeyDelegationPolicy)
	if err != nil {
		return nil, err
	}
	pos, err := s.positionService.Get(addr)
	if err != nil || pos == nil {
		return new(big.Int), err
	}
	return s.power(cfg, policy, addr, pos, now)
}

// TotalVotingPower sums the voting power of every position at now.
func (s *Staker) TotalVotingPower(now uint64) (*big.Int, error) {
	cfg, err := votingpower.LoadConfig(s.params)
	if err != nil {
		return nil, err
	}
	policy, err := s.params.GetUint64(halom.KeyDelegationPolicy)
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	err = s.positionService.Iter(func(addr halom.Address, pos *position.Position) error {
		power, err := s.power(cfg, policy, addr, pos, now)
		if err != nil {
			return err
		}
		total.Add(total, power)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

func (s *Staker) power(cfg votingpower.Config, policy uint64, addr halom.Address, pos *position.Position, now uint64) (*big.Int, error) {
	lock := pos.Lock()
	if policy == PolicyTransfer {
		// delegated stake counts for the validator only while the validator's own lock is live
		if pos.IsDelegated() {
			target, err := s.positionService.Get(pos.DelegatedTo)
			if err != nil {
				return nil, err
			}
			if holdsLock(target, now) {
				lock.Principal.Sub(lock.Principal, pos.DelegatedAmount)
			}
		}
		if holdsLock(pos, now) {
			val, err := s.validatorService.Get(addr)
			if err != nil {
				return nil, err
			}
			if val != nil {
				lock.Principal.Add(lock.Principal, val.TotalDelegated)
			}
		}
	}
	return s.calc.Power(cfg, lock, now), nil
}

func holdsLock(pos *position.Position, now uint64) bool {
	return pos != nil && pos.Principal.Sign() > 0 && now >= pos.LockStart && now < pos.UnlockTime()
}

//
// Setters - state change
//

// Init activates the pool, used by genesis.
func (s *Staker) Init() error {
	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	p.Active = true
	return s.poolService.Update(p)
}

// Stake locks amount of staker. The first stake of a position needs a lock duration, later stakes
// pass zero to keep an unexpired lock or a duration to relock from now, never unlocking earlier.
func (s *Staker) Stake(staker halom.Address, amount *big.Int, lockDuration uint64, now uint64) error {
	logger.Debug("staking", "staker", staker, "amount", amount, "lockDuration", lockDuration)
	err := s.stake(staker, amount, lockDuration, now)
	return record("stake", err, "staker", staker, "amount", amount)
}

func (s *Staker) stake(staker halom.Address, amount *big.Int, lockDuration uint64, now uint64) error {
	cfg, err := s.config()
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Cmp(cfg.minStake) < 0 || amount.Cmp(cfg.maxStake) > 0 {
		return errors.WithMessagef(reverts.ErrInvalidAmount, "amount must be within [%v, %v]", cfg.minStake, cfg.maxStake)
	}

	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	if !p.Active {
		return reverts.ErrPoolInactive
	}

	pos, err := s.positionService.GetOrNew(staker)
	if err != nil {
		return err
	}
	principal := new(big.Int).Add(pos.Principal, amount)
	if principal.Cmp(cfg.maxStake) > 0 {
		return errors.WithMessagef(reverts.ErrInvalidAmount, "resulting principal exceeds %v", cfg.maxStake)
	}

	// an expired lock must be renewed before adding to it
	if pos.Principal.Sign() == 0 || lockDuration != 0 || now >= pos.UnlockTime() {
		if lockDuration < cfg.minLock || lockDuration > cfg.maxLock {
			return errors.WithMessagef(reverts.ErrInvalidLockDuration, "lock duration must be within [%d, %d]", cfg.minLock, cfg.maxLock)
		}
		if pos.Principal.Sign() > 0 && now+lockDuration < pos.UnlockTime() {
			return errors.WithMessage(reverts.ErrInvalidLockDuration, "relock cannot shorten the current lock")
		}
		pos.LockStart, pos.LockDuration = now, lockDuration
	}

	if err := s.token.Transfer(staker, s.Address(), amount); err != nil {
		return err
	}

	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return err
	}
	pos.Principal = principal
	released := p.Increase(amount)
	pos.Pending.Add(pos.Pending, released)
	pos.ResetDebt(p.AccRewardPerShare)

	if err := s.positionService.Update(staker, pos); err != nil {
		return err
	}
	if err := s.poolService.Update(p); err != nil {
		return err
	}
	return s.sctx.Emit("Staked", []halom.Bytes32{addressTopic(staker)}, map[string]any{
		"amount":     amount.String(),
		"principal":  principal.String(),
		"unlockTime": pos.UnlockTime(),
		"released":   released.String(),
	})
}

// Unstake withdraws amount of the principal once the lock is over.
func (s *Staker) Unstake(staker halom.Address, amount *big.Int, now uint64) error {
	logger.Debug("unstaking", "staker", staker, "amount", amount)
	err := s.unstake(staker, amount, now)
	return record("unstake", err, "staker", staker, "amount", amount)
}

func (s *Staker) unstake(staker halom.Address, amount *big.Int, now uint64) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	pos, err := s.positionService.Get(staker)
	if err != nil {
		return err
	}
	if pos == nil || pos.Principal.Sign() == 0 {
		return reverts.ErrInsufficientStake
	}
	if now < pos.UnlockTime() {
		return errors.WithMessagef(reverts.ErrLockNotExpired, "unlocks at %d", pos.UnlockTime())
	}
	if amount.Cmp(pos.Principal) > 0 {
		return errors.WithMessagef(reverts.ErrInsufficientStake, "principal is %v", pos.Principal)
	}

	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return err
	}
	pos.Principal = new(big.Int).Sub(pos.Principal, amount)
	p.Decrease(amount)
	if err := s.clampDelegation(staker, pos); err != nil {
		return err
	}
	pos.ResetDebt(p.AccRewardPerShare)

	if err := s.positionService.Update(staker, pos); err != nil {
		return err
	}
	if err := s.poolService.Update(p); err != nil {
		return err
	}
	if err := s.token.Transfer(s.Address(), staker, amount); err != nil {
		return err
	}
	return s.sctx.Emit("Unstaked", []halom.Bytes32{addressTopic(staker)}, map[string]any{
		"amount":    amount.String(),
		"principal": pos.Principal.String(),
	})
}

// AddRewards deposits amount from caller into the reward pool. Only reward sources may call it.
func (s *Staker) AddRewards(caller halom.Address, amount *big.Int) error {
	logger.Debug("adding rewards", "caller", caller, "amount", amount)
	err := s.addRewards(caller, amount)
	return record("addRewards", err, "caller", caller, "amount", amount)
}

func (s *Staker) addRewards(caller halom.Address, amount *big.Int) error {
	if err := acl.Require(s.acl, acl.RoleRewarder, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	if err := s.token.Transfer(caller, s.Address(), amount); err != nil {
		return err
	}
	p.Distribute(amount)
	if err := s.poolService.Update(p); err != nil {
		return err
	}
	return s.sctx.Emit("RewardsAdded", []halom.Bytes32{addressTopic(caller)}, map[string]any{
		"amount":            amount.String(),
		"accRewardPerShare": p.AccRewardPerShare.String(),
		"unallocated":       p.PendingUnallocated.String(),
	})
}

// ClaimRewards pays out the settled rewards of staker. Claiming nothing is a no-op.
func (s *Staker) ClaimRewards(staker halom.Address) (*big.Int, error) {
	logger.Debug("claiming rewards", "staker", staker)
	amount, err := s.claimRewards(staker)
	return amount, record("claimRewards", err, "staker", staker, "amount", amount)
}

func (s *Staker) claimRewards(staker halom.Address) (*big.Int, error) {
	pos, err := s.positionService.Get(staker)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return new(big.Int), nil
	}
	p, err := s.poolService.Get()
	if err != nil {
		return nil, err
	}
	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return nil, err
	}
	amount := new(big.Int).Set(pos.Pending)
	if amount.Sign() == 0 {
		return amount, nil
	}
	pos.Pending = new(big.Int)
	if err := s.positionService.Update(staker, pos); err != nil {
		return nil, err
	}
	if err := s.token.Transfer(s.Address(), staker, amount); err != nil {
		return nil, err
	}
	return amount, s.sctx.Emit("RewardsClaimed", []halom.Bytes32{addressTopic(staker)}, map[string]any{
		"amount": amount.String(),
	})
}

// DelegateToValidator points amount of the principal of staker at validator, replacing any
// previous delegation.
func (s *Staker) DelegateToValidator(staker, validatorAddr halom.Address, amount *big.Int) error {
	logger.Debug("delegating", "staker", staker, "validator", validatorAddr, "amount", amount)
	err := s.delegate(staker, validatorAddr, amount)
	return record("delegate", err, "staker", staker, "validator", validatorAddr, "amount", amount)
}

func (s *Staker) delegate(staker, validatorAddr halom.Address, amount *big.Int) error {
	if validatorAddr.IsZero() || validatorAddr == staker {
		return errors.WithMessage(reverts.ErrInvalidDelegate, "cannot delegate to self or zero address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	pos, err := s.positionService.Get(staker)
	if err != nil {
		return err
	}
	if pos == nil || pos.Principal.Cmp(amount) < 0 {
		return errors.WithMessage(reverts.ErrInsufficientStake, "delegated amount exceeds principal")
	}
	target, err := s.positionService.Get(validatorAddr)
	if err != nil {
		return err
	}
	if target == nil || target.Principal.Sign() == 0 {
		return errors.WithMessagef(reverts.ErrInvalidDelegate, "%s has no stake", validatorAddr)
	}

	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return err
	}
	if pos.IsDelegated() {
		if err := s.validatorService.SubDelegation(pos.DelegatedTo, staker, pos.DelegatedAmount, new(big.Int)); err != nil {
			return err
		}
	}
	if err := s.validatorService.AddDelegation(validatorAddr, staker, amount); err != nil {
		return err
	}
	pos.DelegatedTo = validatorAddr
	pos.DelegatedAmount = new(big.Int).Set(amount)
	if err := s.positionService.Update(staker, pos); err != nil {
		return err
	}
	return s.sctx.Emit("Delegated", []halom.Bytes32{addressTopic(staker), addressTopic(validatorAddr)}, map[string]any{
		"amount": amount.String(),
	})
}

// UndelegateFromValidator removes the delegation of staker.
func (s *Staker) UndelegateFromValidator(staker halom.Address) error {
	logger.Debug("undelegating", "staker", staker)
	err := s.undelegate(staker)
	return record("undelegate", err, "staker", staker)
}

func (s *Staker) undelegate(staker halom.Address) error {
	pos, err := s.positionService.Get(staker)
	if err != nil {
		return err
	}
	if pos == nil || !pos.IsDelegated() {
		return reverts.ErrDelegationNotFound
	}
	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return err
	}
	from, amount := pos.DelegatedTo, pos.DelegatedAmount
	if err := s.validatorService.SubDelegation(from, staker, amount, new(big.Int)); err != nil {
		return err
	}
	pos.DelegatedTo = halom.Address{}
	pos.DelegatedAmount = new(big.Int)
	if err := s.positionService.Update(staker, pos); err != nil {
		return err
	}
	return s.sctx.Emit("Undelegated", []halom.Bytes32{addressTopic(staker), addressTopic(from)}, map[string]any{
		"amount": amount.String(),
	})
}

// SetCommissionRate sets the commission of a validator holding delegations. Delegators are
// settled at the old rate first.
func (s *Staker) SetCommissionRate(validatorAddr halom.Address, bps uint64) error {
	logger.Debug("setting commission rate", "validator", validatorAddr, "bps", bps)
	err := s.setCommissionRate(validatorAddr, bps)
	return record("setCommissionRate", err, "validator", validatorAddr, "bps", bps)
}

func (s *Staker) setCommissionRate(validatorAddr halom.Address, bps uint64) error {
	val, err := s.validatorService.Get(validatorAddr)
	if err != nil {
		return err
	}
	if val == nil || val.TotalDelegated.Sign() == 0 {
		return errors.WithMessage(reverts.ErrUnauthorized, "no delegations")
	}
	cfg, err := s.config()
	if err != nil {
		return err
	}
	if bps > cfg.maxCommissionBps {
		return errors.WithMessagef(reverts.ErrCommissionTooHigh, "max is %d bps", cfg.maxCommissionBps)
	}

	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	err = s.validatorService.IterDelegators(validatorAddr, func(delegator halom.Address) error {
		pos, err := s.positionService.Get(delegator)
		if err != nil || pos == nil {
			return err
		}
		if err := s.settle(pos, p.AccRewardPerShare); err != nil {
			return err
		}
		return s.positionService.Update(delegator, pos)
	})
	if err != nil {
		return err
	}

	// settlement credited commission, reload
	if val, err = s.validatorService.GetOrNew(validatorAddr); err != nil {
		return err
	}
	val.CommissionRateBps = bps
	if err := s.validatorService.Update(validatorAddr, val); err != nil {
		return err
	}
	return s.sctx.Emit("CommissionRateSet", []halom.Bytes32{addressTopic(validatorAddr)}, map[string]any{
		"bps": bps,
	})
}

// ClaimCommission pays out the commission earned by a validator.
func (s *Staker) ClaimCommission(validatorAddr halom.Address) (*big.Int, error) {
	logger.Debug("claiming commission", "validator", validatorAddr)
	amount, err := s.claimCommission(validatorAddr)
	return amount, record("claimCommission", err, "validator", validatorAddr, "amount", amount)
}

func (s *Staker) claimCommission(validatorAddr halom.Address) (*big.Int, error) {
	val, err := s.validatorService.Get(validatorAddr)
	if err != nil {
		return nil, err
	}
	if val == nil || val.EarnedCommission.Sign() == 0 {
		return new(big.Int), nil
	}
	amount := val.EarnedCommission
	val.EarnedCommission = new(big.Int)
	if err := s.validatorService.Update(validatorAddr, val); err != nil {
		return nil, err
	}
	if err := s.token.Transfer(s.Address(), validatorAddr, amount); err != nil {
		return nil, err
	}
	return amount, s.sctx.Emit("CommissionClaimed", []halom.Bytes32{addressTopic(validatorAddr)}, map[string]any{
		"amount": amount.String(),
	})
}

// Slash burns the configured share of the principal of staker. Only slashers may call it.
func (s *Staker) Slash(caller, staker halom.Address, reason string) (*big.Int, error) {
	logger.Debug("slashing", "caller", caller, "staker", staker, "reason", reason)
	amount, err := s.slash(caller, staker, reason)
	return amount, record("slash", err, "staker", staker, "amount", amount, "reason", reason)
}

func (s *Staker) slash(caller, staker halom.Address, reason string) (*big.Int, error) {
	if err := acl.Require(s.acl, acl.RoleSlasher, caller); err != nil {
		return nil, err
	}
	pos, err := s.positionService.Get(staker)
	if err != nil {
		return nil, err
	}
	if pos == nil || pos.Principal.Sign() == 0 {
		return nil, reverts.ErrInsufficientStake
	}
	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	amount := new(big.Int).Mul(pos.Principal, new(big.Int).SetUint64(cfg.slashBps))
	amount.Quo(amount, new(big.Int).SetUint64(halom.BasisPoints))
	if amount.Sign() == 0 {
		return amount, nil
	}

	p, err := s.poolService.Get()
	if err != nil {
		return nil, err
	}
	if err := s.settle(pos, p.AccRewardPerShare); err != nil {
		return nil, err
	}
	pos.Principal = new(big.Int).Sub(pos.Principal, amount)
	p.Decrease(amount)
	if err := s.clampDelegation(staker, pos); err != nil {
		return nil, err
	}
	pos.ResetDebt(p.AccRewardPerShare)

	if err := s.positionService.Update(staker, pos); err != nil {
		return nil, err
	}
	if err := s.poolService.Update(p); err != nil {
		return nil, err
	}
	if err := s.token.Burn(s.Address(), amount); err != nil {
		return nil, err
	}
	return amount, s.sctx.Emit("Slashed", []halom.Bytes32{addressTopic(staker)}, map[string]any{
		"amount":    amount.String(),
		"principal": pos.Principal.String(),
		"reason":    reason,
	})
}

// SetPoolActive opens or closes the pool for new stakes. Only admins, the timelock included, may call it.
func (s *Staker) SetPoolActive(caller halom.Address, active bool) error {
	logger.Debug("setting pool active", "caller", caller, "active", active)
	err := s.setPoolActive(caller, active)
	return record("setPoolActive", err, "caller", caller, "active", active)
}

func (s *Staker) setPoolActive(caller halom.Address, active bool) error {
	if err := acl.Require(s.acl, acl.RoleAdmin, caller); err != nil {
		return err
	}
	p, err := s.poolService.Get()
	if err != nil {
		return err
	}
	p.Active = active
	if err := s.poolService.Update(p); err != nil {
		return err
	}
	return s.sctx.Emit("PoolActiveSet", nil, map[string]any{"active": active})
}

//
// internal
//

// settle moves the accrual since the last settlement into Pending, less the commission owed
// on the delegated part, and snapshots the reward debt.
func (s *Staker) settle(pos *position.Position, acc *big.Int) error {
	accrued := pos.Accrued(acc)
	if accrued.Sign() > 0 {
		commission, err := s.commissionOf(pos, accrued)
		if err != nil {
			return err
		}
		if commission.Sign() > 0 {
			val, err := s.validatorService.GetOrNew(pos.DelegatedTo)
			if err != nil {
				return err
			}
			val.EarnedCommission.Add(val.EarnedCommission, commission)
			if err := s.validatorService.Update(pos.DelegatedTo, val); err != nil {
				return err
			}
			accrued.Sub(accrued, commission)
		}
		pos.Pending.Add(pos.Pending, accrued)
	}
	pos.ResetDebt(acc)
	return nil
}

// commissionOf returns the commission owed on accrued, pro rata to the delegated part of the principal.
func (s *Staker) commissionOf(pos *position.Position, accrued *big.Int) (*big.Int, error) {
	if accrued.Sign() == 0 || !pos.IsDelegated() || pos.Principal.Sign() == 0 {
		return new(big.Int), nil
	}
	val, err := s.validatorService.Get(pos.DelegatedTo)
	if err != nil || val == nil {
		return new(big.Int), err
	}
	share := new(big.Int).Mul(accrued, pos.DelegatedAmount)
	share.Quo(share, pos.Principal)
	return val.Commission(share), nil
}

// clampDelegation shrinks the delegation of staker after its principal decreased.
func (s *Staker) clampDelegation(staker halom.Address, pos *position.Position) error {
	from := pos.DelegatedTo
	excess := pos.ClampDelegation()
	if excess.Sign() == 0 {
		return nil
	}
	return s.validatorService.SubDelegation(from, staker, excess, pos.DelegatedAmount)
}
