// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	time integer not null,
	address blob(20) not null,
	name text not null,
	topic0 blob(32),
	topic1 blob(32),
	topic2 blob(32),
	topic3 blob(32),
	data blob
);

CREATE INDEX if not exists timeIndex on event(time);
CREATE INDEX if not exists addressIndex on event(address);
CREATE INDEX if not exists nameIndex on event(name);

CREATE INDEX if not exists topicIndex0 on event(topic0);
CREATE INDEX if not exists topicIndex1 on event(topic1);
CREATE INDEX if not exists topicIndex2 on event(topic2);
CREATE INDEX if not exists topicIndex3 on event(topic3);
`

const eventColumns = "seq, time, address, name, topic0, topic1, topic2, topic3, data"
