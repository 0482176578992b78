// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a rejection of a call caused by its inputs or by the contract state,
// as opposed to a storage failure.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// input validation
var (
	ErrInvalidAmount         = New("invalid amount")
	ErrInvalidLockDuration   = New("invalid lock duration")
	ErrInvalidProposalLength = New("invalid proposal length")
	ErrEmptyProposal         = New("empty proposal")
	ErrInvalidVoteType       = New("invalid vote type")
	ErrInvalidPayload        = New("invalid payload")
	ErrUnknownTarget         = New("unknown target")
	ErrCommissionTooHigh     = New("commission too high")
	ErrInvalidDelegate       = New("invalid delegate")
)

// state preconditions
var (
	ErrPoolInactive             = New("pool inactive")
	ErrLockNotExpired           = New("lock not expired")
	ErrInsufficientStake        = New("insufficient stake")
	ErrInsufficientBalance      = New("insufficient balance")
	ErrDelegationNotFound       = New("delegation not found")
	ErrProposalExists           = New("proposal already exists")
	ErrUnknownProposal          = New("unknown proposal")
	ErrUnexpectedProposalState  = New("unexpected proposal state")
	ErrAlreadyVoted             = New("already voted")
	ErrInsufficientDelay        = New("insufficient delay")
	ErrOperationNotReady        = New("operation not ready")
	ErrUnexpectedOperationState = New("unexpected operation state")
	ErrOperationExpired         = New("operation expired")
)

// authorization and abuse protection
var (
	ErrUnauthorized              = New("unauthorized")
	ErrInsufficientProposerVotes = New("insufficient proposer votes")
	ErrFlashLoanDetected         = New("flash loan detected")
	ErrEmergencyPaused           = New("emergency paused")
)
