// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package halom

import (
	"math/big"
)

// Constants of the protocol.
const (
	// BasisPoints is the denominator of all bps-expressed ratios.
	BasisPoints uint64 = 10_000

	Day uint64 = 24 * 60 * 60

	// MaxCommissionRateBps is the hard ceiling a validator commission can never exceed,
	// the governable cap (KeyMaxCommissionBps) must stay below it.
	MaxCommissionRateBps uint64 = 2000

	// MinDelayFloor is the absolute lower bound of the timelock minimum delay.
	MinDelayFloor uint64 = 10 * 60
)

// Precision is the fixed-point scale of the reward-per-share accumulator.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Keys of governance params.
var (
	// staking ledger
	KeyMinStake         = BytesToBytes32([]byte("min-stake"))
	KeyMaxStake         = BytesToBytes32([]byte("max-stake"))
	KeyMinLockDuration  = BytesToBytes32([]byte("min-lock-duration"))
	KeyMaxLockDuration  = BytesToBytes32([]byte("max-lock-duration"))
	KeySlashBps         = BytesToBytes32([]byte("slash-bps"))
	KeyMaxCommissionBps = BytesToBytes32([]byte("max-commission-bps"))
	KeyDelegationPolicy = BytesToBytes32([]byte("delegation-power-policy"))

	// voting power
	KeyRootExponent    = BytesToBytes32([]byte("power-root-exponent"))
	KeyQuadraticFactor = BytesToBytes32([]byte("power-quadratic-factor"))
	KeyTimeWeightBps   = BytesToBytes32([]byte("power-time-weight-bps"))
	KeyMaxVotingPower  = BytesToBytes32([]byte("power-max"))

	// governor
	KeyVotingDelay       = BytesToBytes32([]byte("voting-delay"))
	KeyVotingPeriod      = BytesToBytes32([]byte("voting-period"))
	KeyProposalThreshold = BytesToBytes32([]byte("proposal-threshold"))
	KeyQuorumBps         = BytesToBytes32([]byte("quorum-bps"))
	KeyVoteCooldown      = BytesToBytes32([]byte("vote-cooldown"))
	KeyDailyVoteCap      = BytesToBytes32([]byte("daily-vote-cap"))
	KeyProposalMaxAge    = BytesToBytes32([]byte("proposal-max-age"))
	KeyExecutionDelay    = BytesToBytes32([]byte("execution-delay"))

	// timelock
	KeyTimelockGracePeriod = BytesToBytes32([]byte("timelock-grace-period"))
)

// Initial values of governance params.
var (
	InitialMinStake         = new(big.Int).Set(Precision)                          // 1 token
	InitialMaxStake         = new(big.Int).Mul(big.NewInt(100_000_000), Precision) // 100M tokens
	InitialMinLockDuration  = big.NewInt(int64(7 * Day))
	InitialMaxLockDuration  = big.NewInt(int64(4 * 365 * Day))
	InitialSlashBps         = big.NewInt(1000) // 10%
	InitialMaxCommissionBps = big.NewInt(int64(MaxCommissionRateBps))

	InitialRootExponent    = big.NewInt(4)
	InitialQuadraticFactor = big.NewInt(1)
	InitialTimeWeightBps   = big.NewInt(20_000) // up to 2x for a fully elapsed lock
	InitialMaxVotingPower  = big.NewInt(5_000_000)

	InitialVotingDelay       = big.NewInt(int64(Day))
	InitialVotingPeriod      = big.NewInt(int64(7 * Day))
	InitialProposalThreshold = big.NewInt(100_000)
	InitialQuorumBps         = big.NewInt(400) // 4%
	InitialVoteCooldown      = big.NewInt(60 * 60)
	InitialDailyVoteCap      = big.NewInt(10)
	InitialProposalMaxAge    = big.NewInt(int64(30 * Day))
	InitialExecutionDelay    = big.NewInt(int64(2 * Day))

	InitialTimelockGracePeriod = big.NewInt(int64(14 * Day))
)
