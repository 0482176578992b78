// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/halom-protocol/halom/halom"
)

// CustomGenesis is user customized genesis
type CustomGenesis struct {
	LaunchTime uint64                      `json:"launchTime"`
	Admin      halom.Address               `json:"admin"`
	Guardian   halom.Address               `json:"guardian"`
	MinDelay   uint64                      `json:"minDelay"`
	Treasury   *HexOrDecimal256            `json:"treasury"`
	Accounts   []Account                   `json:"accounts"`
	Roles      []Role                      `json:"roles"`
	Params     map[string]*HexOrDecimal256 `json:"params"`
}

// Account is an account funded at genesis.
type Account struct {
	Address halom.Address    `json:"address"`
	Balance *HexOrDecimal256 `json:"balance"`
}

// Role is an extra capability granted at genesis.
type Role struct {
	Role    string        `json:"role"`
	Account halom.Address `json:"account"`
}

// HexOrDecimal256 marshals big.Int as hex or decimal.
// Copied from go-ethereum/common/math and implement json. Marshaler
type HexOrDecimal256 math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (i *HexOrDecimal256) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(i).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*i = HexOrDecimal256(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (i HexOrDecimal256) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(i)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (i *HexOrDecimal256) big() *big.Int {
	return (*big.Int)(i)
}
