// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/halom"
)

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []halom.Address {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]halom.Address)
	}

	var accs []halom.Address
	for i := 0; i < 10; i++ {
		accs = append(accs, halom.BytesToAddress(halom.Blake2b([]byte(fmt.Sprintf("halom-dev-%d", i))).Bytes()))
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet create genesis for solo mode. The first dev account is admin and guardian,
// and the timelock accepts any delay.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 2025-01-01T00:00:00Z

	balance, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	treasury, _ := new(big.Int).SetString("10000000000000000000000000", 10)

	gen := &CustomGenesis{
		LaunchTime: launchTime,
		Admin:      DevAccounts()[0],
		Guardian:   DevAccounts()[0],
		MinDelay:   halom.MinDelayFloor,
		Treasury:   (*HexOrDecimal256)(treasury),
		Roles: []Role{
			{Role: "executor", Account: halom.Address{}},
		},
	}
	for _, a := range DevAccounts() {
		gen.Accounts = append(gen.Accounts, Account{a, (*HexOrDecimal256)(new(big.Int).Set(balance))})
	}

	builder, err := newCustomBuilder(gen)
	if err != nil {
		panic(err)
	}
	builder.State(func(c *builtin.Contracts) error {
		return c.Timelock.SetTestMode(DevAccounts()[0], true)
	})
	g, err := newGenesis(builder, "devnet")
	if err != nil {
		panic(err)
	}
	return g
}
