// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package action implements the call encoding shared by transactions and timelock operations.
//
// A call payload is a JSON-encoded Action: an action kind plus a kind specific payload.
// Payloads are dispatched to the Target registered for the called address.
package action

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/reverts"
)

// Kind identifies an action.
type Kind string

const (
	KindParamsSet Kind = "params.set"

	KindACLGrant  Kind = "acl.grant"
	KindACLRevoke Kind = "acl.revoke"

	KindTokenTransfer Kind = "token.transfer"

	KindStakerStake             Kind = "staker.stake"
	KindStakerUnstake           Kind = "staker.unstake"
	KindStakerAddRewards        Kind = "staker.addRewards"
	KindStakerClaimRewards      Kind = "staker.claimRewards"
	KindStakerDelegate          Kind = "staker.delegate"
	KindStakerUndelegate        Kind = "staker.undelegate"
	KindStakerSetCommissionRate Kind = "staker.setCommissionRate"
	KindStakerClaimCommission   Kind = "staker.claimCommission"
	KindStakerSlash             Kind = "staker.slash"
	KindStakerSetPoolActive     Kind = "staker.setPoolActive"

	KindTimelockSchedule    Kind = "timelock.schedule"
	KindTimelockExecute     Kind = "timelock.execute"
	KindTimelockCancel      Kind = "timelock.cancel"
	KindTimelockUpdateDelay Kind = "timelock.updateDelay"
	KindTimelockSetTestMode Kind = "timelock.setTestMode"
	KindTimelockSetPaused   Kind = "timelock.setPaused"

	KindGovernorPropose   Kind = "governor.propose"
	KindGovernorCastVote  Kind = "governor.castVote"
	KindGovernorCancel    Kind = "governor.cancel"
	KindGovernorQueue     Kind = "governor.queue"
	KindGovernorExecute   Kind = "governor.execute"
	KindGovernorSetPaused Kind = "governor.setPaused"
	KindGovernorHousekeep Kind = "governor.housekeep"
)

// Action is the envelope of a call payload.
type Action struct {
	Action  Kind            `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode parses an Action from raw call data.
func Decode(data []byte) (*Action, error) {
	if len(data) == 0 {
		return nil, errors.WithMessage(reverts.ErrInvalidPayload, "empty data")
	}
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.WithMessage(reverts.ErrInvalidPayload, err.Error())
	}
	if a.Action == "" {
		return nil, errors.WithMessage(reverts.ErrInvalidPayload, "missing action field")
	}
	return &a, nil
}

// DecodePayload unmarshals the payload of a into dst. An absent payload leaves dst untouched.
func DecodePayload(a *Action, dst any) error {
	if len(a.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.Payload, dst); err != nil {
		return errors.WithMessagef(reverts.ErrInvalidPayload, "%s: %v", a.Action, err)
	}
	return nil
}

// Encode serialises a to JSON call data.
func Encode(a *Action) ([]byte, error) {
	return json.Marshal(a)
}

// Make creates and encodes an Action of kind carrying payload.
func Make(kind Kind, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return Encode(&Action{Action: kind, Payload: raw})
}

// MustMake is like Make but panics on error. Used to build static payloads.
func MustMake(kind Kind, payload any) []byte {
	data, err := Make(kind, payload)
	if err != nil {
		panic(err)
	}
	return data
}
