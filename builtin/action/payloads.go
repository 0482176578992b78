// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package action

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/halom-protocol/halom/halom"
)

// Amounts are JSON encoded as decimal or 0x-prefixed hex strings.

type ParamsSetPayload struct {
	Key   halom.Bytes32         `json:"key"`
	Value *math.HexOrDecimal256 `json:"value"`
}

type RolePayload struct {
	Role    string        `json:"role"`
	Account halom.Address `json:"account"`
}

type TransferPayload struct {
	To     halom.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type StakePayload struct {
	Amount       *math.HexOrDecimal256 `json:"amount"`
	LockDuration uint64                `json:"lockDuration,omitempty"`
}

type AmountPayload struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type DelegatePayload struct {
	Validator halom.Address         `json:"validator"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

type CommissionPayload struct {
	Bps uint64 `json:"bps"`
}

type SlashPayload struct {
	Staker halom.Address `json:"staker"`
	Reason string        `json:"reason"`
}

type FlagPayload struct {
	Enabled bool `json:"enabled"`
}

type DelayPayload struct {
	Delay uint64 `json:"delay"`
}

// Call is one invocation scheduled in the timelock or carried by a proposal.
type Call struct {
	Target  halom.Address         `json:"target"`
	Value   *math.HexOrDecimal256 `json:"value,omitempty"`
	Payload hexutil.Bytes         `json:"payload,omitempty"`
}

type SchedulePayload struct {
	Calls       []Call        `json:"calls"`
	Predecessor halom.Bytes32 `json:"predecessor"`
	Salt        halom.Bytes32 `json:"salt"`
	Delay       uint64        `json:"delay"`
}

type OperationPayload struct {
	ID halom.Bytes32 `json:"id"`
}

type ProposePayload struct {
	Calls       []Call `json:"calls"`
	Description string `json:"description"`
}

type VotePayload struct {
	ProposalID halom.Bytes32 `json:"proposalId"`
	Support    uint8         `json:"support"`
	Reason     string        `json:"reason,omitempty"`
}

type ProposalPayload struct {
	ProposalID halom.Bytes32 `json:"proposalId"`
}

// Big converts a JSON amount into a big.Int, nil stays nil.
func Big(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return (*big.Int)(v)
}

// Amount converts a big.Int into a JSON amount.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}
