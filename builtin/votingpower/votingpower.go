// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package votingpower turns a stake lock into a bounded voting weight.
//
// The weight is the n-th integer root of the locked principal, scaled by a
// quadratic factor, then by a multiplier ramping linearly from 1.0 at lock start
// to the time-weight factor at lock end, and capped. It is zero once the lock expired.
package votingpower

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/halom"
)

const defaultRootCacheSize = 4096

var (
	big1      = big.NewInt(1)
	bigBasis  = new(big.Int).SetUint64(halom.BasisPoints)
	bigZero   = new(big.Int)
	sharedCal = New(defaultRootCacheSize)
)

// Config is the set of governable inputs of the power formula.
type Config struct {
	RootExponent    uint64
	QuadraticFactor *big.Int
	TimeWeightBps   uint64
	// MaxPower caps the result, zero means uncapped.
	MaxPower *big.Int
}

// Lock is the part of a stake position the formula depends on.
type Lock struct {
	Principal    *big.Int
	LockStart    uint64
	LockDuration uint64
}

// Expired reports whether the lock is over at now.
func (l Lock) Expired(now uint64) bool {
	return now >= l.LockStart+l.LockDuration
}

// LoadConfig reads the formula inputs from the params contract.
func LoadConfig(p *params.Params) (Config, error) {
	var (
		cfg Config
		err error
	)
	if cfg.RootExponent, err = p.GetUint64(halom.KeyRootExponent); err != nil {
		return Config{}, err
	}
	if cfg.QuadraticFactor, err = p.Get(halom.KeyQuadraticFactor); err != nil {
		return Config{}, err
	}
	if cfg.TimeWeightBps, err = p.GetUint64(halom.KeyTimeWeightBps); err != nil {
		return Config{}, err
	}
	if cfg.MaxPower, err = p.Get(halom.KeyMaxVotingPower); err != nil {
		return Config{}, err
	}
	if cfg.RootExponent == 0 {
		return Config{}, errors.New("root exponent must be positive")
	}
	return cfg, nil
}

// Calculator evaluates the power formula, memoizing integer roots.
type Calculator struct {
	roots *lru.Cache
}

func New(cacheSize int) *Calculator {
	cache, err := lru.New(cacheSize)
	if err != nil {
		panic(err)
	}
	return &Calculator{roots: cache}
}

// Default returns the process wide calculator.
func Default() *Calculator {
	return sharedCal
}

type rootKey struct {
	x string
	n uint64
}

// Root returns floor(x^(1/n)), served from the cache when possible.
func (c *Calculator) Root(x *big.Int, n uint64) *big.Int {
	key := rootKey{string(x.Bytes()), n}
	if v, ok := c.roots.Get(key); ok {
		return new(big.Int).Set(v.(*big.Int))
	}
	r := IntegerRoot(x, n)
	c.roots.Add(key, new(big.Int).Set(r))
	return r
}

// Power returns the voting power of lock at time now, zero outside [LockStart, unlock).
func (c *Calculator) Power(cfg Config, lock Lock, now uint64) *big.Int {
	if lock.Principal == nil || lock.Principal.Sign() <= 0 || now < lock.LockStart || lock.Expired(now) || cfg.RootExponent == 0 {
		return new(big.Int)
	}

	power := c.Root(lock.Principal, cfg.RootExponent)
	if cfg.QuadraticFactor != nil {
		power.Mul(power, cfg.QuadraticFactor)
	}

	var elapsed uint64
	if now > lock.LockStart {
		elapsed = now - lock.LockStart
	}
	if lock.LockDuration > 0 {
		// multiplier = 1 + (tw - 1) * elapsed / duration, in basis points
		delta := new(big.Int).Sub(new(big.Int).SetUint64(cfg.TimeWeightBps), bigBasis)
		delta.Mul(delta, new(big.Int).SetUint64(elapsed))
		delta.Quo(delta, new(big.Int).SetUint64(lock.LockDuration))
		multiplier := delta.Add(delta, bigBasis)
		if multiplier.Sign() < 0 {
			multiplier.Set(bigZero)
		}
		power.Mul(power, multiplier)
		power.Quo(power, bigBasis)
	}

	if cfg.MaxPower != nil && cfg.MaxPower.Sign() > 0 && power.Cmp(cfg.MaxPower) > 0 {
		power.Set(cfg.MaxPower)
	}
	return power
}

// IntegerRoot returns floor(x^(1/n)) using Newton's iteration on integers.
// It panics on negative x or n == 0.
func IntegerRoot(x *big.Int, n uint64) *big.Int {
	if x.Sign() < 0 {
		panic("integer root of negative number")
	}
	if n == 0 {
		panic("zero root exponent")
	}
	if x.Sign() == 0 || n == 1 {
		return new(big.Int).Set(x)
	}

	bn := new(big.Int).SetUint64(n)
	bn1 := new(big.Int).SetUint64(n - 1)
	exp1 := new(big.Int).SetUint64(n - 1)

	// initial guess 2^ceil(bitlen/n) is never below the root
	guess := new(big.Int).Lsh(big1, uint((uint64(x.BitLen())+n-1)/n))
	next := new(big.Int)
	pow := new(big.Int)
	for {
		// next = ((n-1)*guess + x / guess^(n-1)) / n
		pow.Exp(guess, exp1, nil)
		next.Quo(x, pow)
		next.Add(next, pow.Mul(bn1, guess))
		next.Quo(next, bn)
		if next.Cmp(guess) >= 0 {
			return guess
		}
		guess.Set(next)
	}
}
