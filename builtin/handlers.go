// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/builtin/governor"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/halom"
)

// decode is a shorthand for handlers taking a payload of type P.
func decode[P any](run func(ctx *action.Context, p *P) error) action.HandlerFunc {
	return func(ctx *action.Context, a *action.Action) error {
		var p P
		if err := action.DecodePayload(a, &p); err != nil {
			return err
		}
		return run(ctx, &p)
	}
}

func (c *Contracts) registerHandlers() {
	c.Registry.Register(Params.Address, action.Handlers{
		action.KindParamsSet: decode(func(ctx *action.Context, p *action.ParamsSetPayload) error {
			if err := acl.Require(c.ACL, acl.RoleAdmin, ctx.Caller); err != nil {
				return err
			}
			if p.Value == nil {
				return errors.WithMessage(reverts.ErrInvalidPayload, "missing value")
			}
			return c.Params.Set(p.Key, action.Big(p.Value))
		}),
	})

	c.Registry.Register(ACL.Address, action.Handlers{
		action.KindACLGrant: decode(func(ctx *action.Context, p *action.RolePayload) error {
			return c.ACL.Grant(ctx.Caller, acl.Role(p.Role), p.Account)
		}),
		action.KindACLRevoke: decode(func(ctx *action.Context, p *action.RolePayload) error {
			return c.ACL.Revoke(ctx.Caller, acl.Role(p.Role), p.Account)
		}),
	})

	c.Registry.Register(Token.Address, action.Handlers{
		action.KindTokenTransfer: decode(func(ctx *action.Context, p *action.TransferPayload) error {
			amount := action.Big(p.Amount)
			if amount == nil || amount.Sign() <= 0 {
				return reverts.ErrInvalidAmount
			}
			return c.Token.Transfer(ctx.Caller, p.To, amount)
		}),
	})

	c.Registry.Register(Staker.Address, action.Handlers{
		action.KindStakerStake: decode(func(ctx *action.Context, p *action.StakePayload) error {
			return c.Staker.Stake(ctx.Caller, action.Big(p.Amount), p.LockDuration, ctx.Now)
		}),
		action.KindStakerUnstake: decode(func(ctx *action.Context, p *action.AmountPayload) error {
			return c.Staker.Unstake(ctx.Caller, action.Big(p.Amount), ctx.Now)
		}),
		action.KindStakerAddRewards: decode(func(ctx *action.Context, p *action.AmountPayload) error {
			return c.Staker.AddRewards(ctx.Caller, action.Big(p.Amount))
		}),
		action.KindStakerClaimRewards: func(ctx *action.Context, _ *action.Action) error {
			_, err := c.Staker.ClaimRewards(ctx.Caller)
			return err
		},
		action.KindStakerDelegate: decode(func(ctx *action.Context, p *action.DelegatePayload) error {
			return c.Staker.DelegateToValidator(ctx.Caller, p.Validator, action.Big(p.Amount))
		}),
		action.KindStakerUndelegate: func(ctx *action.Context, _ *action.Action) error {
			return c.Staker.UndelegateFromValidator(ctx.Caller)
		},
		action.KindStakerSetCommissionRate: decode(func(ctx *action.Context, p *action.CommissionPayload) error {
			return c.Staker.SetCommissionRate(ctx.Caller, p.Bps)
		}),
		action.KindStakerClaimCommission: func(ctx *action.Context, _ *action.Action) error {
			_, err := c.Staker.ClaimCommission(ctx.Caller)
			return err
		},
		action.KindStakerSlash: decode(func(ctx *action.Context, p *action.SlashPayload) error {
			_, err := c.Staker.Slash(ctx.Caller, p.Staker, p.Reason)
			return err
		}),
		action.KindStakerSetPoolActive: decode(func(ctx *action.Context, p *action.FlagPayload) error {
			return c.Staker.SetPoolActive(ctx.Caller, p.Enabled)
		}),
	})

	c.Registry.Register(Timelock.Address, action.Handlers{
		action.KindTimelockSchedule: decode(func(ctx *action.Context, p *action.SchedulePayload) error {
			calls := timelock.CallsFromActions(p.Calls)
			if len(calls) == 1 {
				_, err := c.Timelock.Schedule(ctx.Caller, calls[0], p.Predecessor, p.Salt, p.Delay, ctx.Now)
				return err
			}
			_, err := c.Timelock.ScheduleBatch(ctx.Caller, calls, p.Predecessor, p.Salt, p.Delay, ctx.Now)
			return err
		}),
		action.KindTimelockExecute: decode(func(ctx *action.Context, p *action.SchedulePayload) error {
			calls := timelock.CallsFromActions(p.Calls)
			if len(calls) == 1 {
				_, err := c.Timelock.Execute(ctx.Caller, calls[0], p.Predecessor, p.Salt, ctx.Now)
				return err
			}
			_, err := c.Timelock.ExecuteBatch(ctx.Caller, calls, p.Predecessor, p.Salt, ctx.Now)
			return err
		}),
		action.KindTimelockCancel: decode(func(ctx *action.Context, p *action.OperationPayload) error {
			return c.Timelock.Cancel(ctx.Caller, p.ID, ctx.Now)
		}),
		action.KindTimelockUpdateDelay: decode(func(ctx *action.Context, p *action.DelayPayload) error {
			return c.Timelock.UpdateDelay(ctx.Caller, p.Delay)
		}),
		action.KindTimelockSetTestMode: decode(func(ctx *action.Context, p *action.FlagPayload) error {
			return c.Timelock.SetTestMode(ctx.Caller, p.Enabled)
		}),
		action.KindTimelockSetPaused: decode(func(ctx *action.Context, p *action.FlagPayload) error {
			return c.Timelock.SetPaused(ctx.Caller, p.Enabled)
		}),
	})

	c.Registry.Register(Governor.Address, action.Handlers{
		action.KindGovernorPropose: decode(func(ctx *action.Context, p *action.ProposePayload) error {
			targets, values, payloads := splitCalls(p.Calls)
			_, err := c.Governor.Propose(ctx.Caller, targets, values, payloads, p.Description, ctx.Now)
			return err
		}),
		action.KindGovernorCastVote: decode(func(ctx *action.Context, p *action.VotePayload) error {
			_, err := c.Governor.CastVote(ctx.Caller, p.ProposalID, governor.VoteType(p.Support), p.Reason, ctx.Now)
			return err
		}),
		action.KindGovernorCancel: decode(func(ctx *action.Context, p *action.ProposalPayload) error {
			return c.Governor.Cancel(ctx.Caller, p.ProposalID, ctx.Now)
		}),
		action.KindGovernorQueue: decode(func(ctx *action.Context, p *action.ProposalPayload) error {
			_, err := c.Governor.Queue(p.ProposalID, ctx.Now)
			return err
		}),
		action.KindGovernorExecute: decode(func(ctx *action.Context, p *action.ProposalPayload) error {
			return c.Governor.Execute(p.ProposalID, ctx.Now)
		}),
		action.KindGovernorSetPaused: decode(func(ctx *action.Context, p *action.FlagPayload) error {
			return c.Governor.SetPaused(ctx.Caller, p.Enabled)
		}),
		action.KindGovernorHousekeep: func(ctx *action.Context, _ *action.Action) error {
			_, err := c.Governor.Housekeep(ctx.Now)
			return err
		},
	})
}

func splitCalls(calls []action.Call) (targets []halom.Address, values []*big.Int, payloads [][]byte) {
	for _, call := range calls {
		targets = append(targets, call.Target)
		values = append(values, action.Big(call.Value))
		payloads = append(payloads, call.Payload)
	}
	return
}
