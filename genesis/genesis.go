// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/state"
)

// Genesis to build the initial state.
type Genesis struct {
	builder *Builder
	id      halom.Bytes32
	name    string
}

// Build build the genesis state into st.
func (g *Genesis) Build(st *state.State) ([]*halom.Event, error) {
	return g.builder.Build(st)
}

// ID returns genesis ID.
func (g *Genesis) ID() halom.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the time the network starts at.
func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}

func newGenesis(builder *Builder, name string) (*Genesis, error) {
	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name}, nil
}

// DefaultParams returns the initial value of every governance param.
func DefaultParams() map[halom.Bytes32]*big.Int {
	return map[halom.Bytes32]*big.Int{
		halom.KeyMinStake:            halom.InitialMinStake,
		halom.KeyMaxStake:            halom.InitialMaxStake,
		halom.KeyMinLockDuration:     halom.InitialMinLockDuration,
		halom.KeyMaxLockDuration:     halom.InitialMaxLockDuration,
		halom.KeySlashBps:            halom.InitialSlashBps,
		halom.KeyMaxCommissionBps:    halom.InitialMaxCommissionBps,
		halom.KeyDelegationPolicy:    new(big.Int),
		halom.KeyRootExponent:        halom.InitialRootExponent,
		halom.KeyQuadraticFactor:     halom.InitialQuadraticFactor,
		halom.KeyTimeWeightBps:       halom.InitialTimeWeightBps,
		halom.KeyMaxVotingPower:      halom.InitialMaxVotingPower,
		halom.KeyVotingDelay:         halom.InitialVotingDelay,
		halom.KeyVotingPeriod:        halom.InitialVotingPeriod,
		halom.KeyProposalThreshold:   halom.InitialProposalThreshold,
		halom.KeyQuorumBps:           halom.InitialQuorumBps,
		halom.KeyVoteCooldown:        halom.InitialVoteCooldown,
		halom.KeyDailyVoteCap:        halom.InitialDailyVoteCap,
		halom.KeyProposalMaxAge:      halom.InitialProposalMaxAge,
		halom.KeyExecutionDelay:      halom.InitialExecutionDelay,
		halom.KeyTimelockGracePeriod: halom.InitialTimelockGracePeriod,
	}
}

type grant struct {
	role acl.Role
	who  halom.Address
}

// setupRoles grants the capabilities every network starts with. The timelock administers
// the protocol, the governor feeds the timelock.
func setupRoles(c *builtin.Contracts, admin, guardian halom.Address, extra []grant) error {
	grants := []grant{
		{acl.RoleAdmin, builtin.Timelock.Address},
		{acl.RoleRewarder, builtin.Timelock.Address},
		{acl.RoleSlasher, builtin.Timelock.Address},
		{acl.RoleProposer, builtin.Governor.Address},
		{acl.RoleExecutor, builtin.Governor.Address},
		{acl.RoleAdmin, admin},
		{acl.RoleRewarder, admin},
		{acl.RoleCanceller, guardian},
		{acl.RoleGuardian, guardian},
	}
	for _, g := range grants {
		if g.who.IsZero() {
			continue
		}
		if err := c.ACL.Set(g.role, g.who, true); err != nil {
			return err
		}
	}
	// extra grants may open a role to everyone through the zero address
	for _, g := range extra {
		if err := c.ACL.Set(g.role, g.who, true); err != nil {
			return err
		}
	}
	return nil
}
