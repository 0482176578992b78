// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"

	"github.com/halom-protocol/halom/eventdb"
	"github.com/halom-protocol/halom/halom"
)

type FilteredEvent struct {
	Seq     uint64          `json:"seq"`
	Time    uint64          `json:"time"`
	Address halom.Address   `json:"address"`
	Name    string          `json:"name"`
	Topics  []halom.Bytes32 `json:"topics"`
	Data    json.RawMessage `json:"data"`
}

func convertEvent(ev *eventdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Seq:     ev.Seq,
		Time:    ev.Time,
		Address: ev.Address,
		Name:    ev.Name,
		Topics:  make([]halom.Bytes32, 0, len(ev.Topics)),
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, *topic)
		}
	}
	if json.Valid(ev.Data) {
		fe.Data = ev.Data
	} else if len(ev.Data) > 0 {
		fe.Data, _ = json.Marshal(ev.Data)
	}
	return fe
}
