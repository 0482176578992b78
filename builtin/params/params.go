// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

// Params binder of the governance parameters contract.
type Params struct {
	sctx *solidity.Context
}

func New(sctx *solidity.Context) *Params {
	return &Params{sctx}
}

// Get native way to get param.
func (p *Params) Get(key halom.Bytes32) (*big.Int, error) {
	v, err := solidity.NewUint256(p.sctx, key).Get()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get param %s", key.AbbrevString())
	}
	return v, nil
}

// GetUint64 returns the param truncated to uint64, saturating on overflow.
func (p *Params) GetUint64(key halom.Bytes32) (uint64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return ^uint64(0), nil
	}
	return v.Uint64(), nil
}

// Set native way to set param.
func (p *Params) Set(key halom.Bytes32, value *big.Int) error {
	solidity.NewUint256(p.sctx, key).Set(value)
	return p.sctx.Emit("Set", []halom.Bytes32{key}, map[string]string{"value": value.String()})
}
