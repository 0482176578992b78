// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/halom-protocol/halom/halom"
)

// MaxTopics is the number of indexed topics kept per event.
const MaxTopics = 4

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Event is a stored event. Seq grows with every insert and orders events globally.
type Event struct {
	Seq     uint64                    `json:"seq"`
	Time    uint64                    `json:"time"`
	Address halom.Address             `json:"address"`
	Name    string                    `json:"name"`
	Topics  [MaxTopics]*halom.Bytes32 `json:"topics"`
	Data    []byte                    `json:"data"`
}

// Range is an inclusive time range in unix seconds. To of zero means no upper bound.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// EventCriteria matches events by emitter, name and topics. Nil fields match anything.
type EventCriteria struct {
	Address *halom.Address            `json:"address"`
	Name    string                    `json:"name"`
	Topics  [MaxTopics]*halom.Bytes32 `json:"topics"`
}

// EventFilter ORs its criteria together and ANDs the result with the range.
type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       Order            `json:"order"`
}
