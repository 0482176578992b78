// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:generate mockgen -source=token.go -destination=token_mock.go -package=token

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

// Ledger is the all-or-nothing token movement primitive the other contracts rely on.
type Ledger interface {
	Balance(addr halom.Address) (*big.Int, error)
	Transfer(from, to halom.Address, amount *big.Int) error
	Burn(from halom.Address, amount *big.Int) error
}

var slotTotalSupply = halom.BytesToBytes32([]byte("total-supply"))

// Token binder of the governance token. Balances live in account state.
type Token struct {
	sctx        *solidity.Context
	totalSupply *solidity.Uint256
}

var _ Ledger = (*Token)(nil)

func New(sctx *solidity.Context) *Token {
	return &Token{
		sctx:        sctx,
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) Balance(addr halom.Address) (*big.Int, error) {
	return t.sctx.State().GetBalance(addr)
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// Mint creates amount tokens for to.
func (t *Token) Mint(to halom.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}
	bal, err := t.Balance(to)
	if err != nil {
		return err
	}
	if err := t.sctx.State().SetBalance(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	return t.emitTransfer(halom.Address{}, to, amount)
}

// Transfer moves amount from one account to another. Zero transfers are accepted.
func (t *Token) Transfer(from, to halom.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	bal, err := t.Balance(to)
	if err != nil {
		return err
	}
	if err := t.sctx.State().SetBalance(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	return t.emitTransfer(from, to, amount)
}

// Burn destroys amount tokens held by from.
func (t *Token) Burn(from halom.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := t.debit(from, amount); err != nil {
		return err
	}
	if err := t.totalSupply.Sub(amount); err != nil {
		return err
	}
	return t.emitTransfer(from, halom.Address{}, amount)
}

func (t *Token) debit(from halom.Address, amount *big.Int) error {
	bal, err := t.Balance(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.WithMessagef(reverts.ErrInsufficientBalance, "%s has %v, needs %v", from, bal, amount)
	}
	return t.sctx.State().SetBalance(from, bal.Sub(bal, amount))
}

func (t *Token) emitTransfer(from, to halom.Address, amount *big.Int) error {
	return t.sctx.Emit("Transfer",
		[]halom.Bytes32{halom.BytesToBytes32(from.Bytes()), halom.BytesToBytes32(to.Bytes())},
		map[string]string{"amount": amount.String()})
}
