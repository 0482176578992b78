// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package halom

// Event is a record emitted by a builtin contract during a call.
type Event struct {
	Address Address   `json:"address"`
	Name    string    `json:"name"`
	Topics  []Bytes32 `json:"topics"`
	Data    []byte    `json:"data"`
}
