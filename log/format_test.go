// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestFormatSlogValue(t *testing.T) {
	tests := []struct {
		name  string
		value slog.Value
		want  string
	}{
		{"string", slog.StringValue("hello"), "hello"},
		{"spaced", slog.StringValue("a b"), `"a b"`},
		{"int", slog.Int64Value(-3), "-3"},
		{"bool", slog.BoolValue(true), "true"},
		{"big", slog.AnyValue(new(big.Int).Exp(big.NewInt(10), big.NewInt(20), nil)), "100000000000000000000"},
		{"nil big", slog.AnyValue((*big.Int)(nil)), "<nil>"},
		{"uint256", slog.AnyValue(uint256.NewInt(42)), "42"},
		{"error", slog.AnyValue(errors.New("boom")), "boom"},
		{"bytes", slog.AnyValue([]byte{0xab, 0xcd}), "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSlogValue(tt.value))
		})
	}
}

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelInfo)
	l := NewLogger(NewTerminalHandlerWithLevel(&out, &lvl, false))

	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.With("pkg", "staker").Info("staked", "amount", big.NewInt(100))
	line := out.String()
	assert.True(t, strings.HasPrefix(line, "INFO ["))
	assert.Contains(t, line, "staked")
	assert.Contains(t, line, "pkg=staker")
	assert.Contains(t, line, "amount=100")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(JSONHandler(&out))
	l.Warn("slashed", "amount", uint256.NewInt(7))
	assert.Contains(t, out.String(), `"lvl":"warn"`)
	assert.Contains(t, out.String(), `"amount":"7"`)
}

func TestWithContextFollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	pkgLogger := WithContext("pkg", "test")

	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	pkgLogger.Info("after set default")
	assert.Contains(t, out.String(), "pkg=test")
}
