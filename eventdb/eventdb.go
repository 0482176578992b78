// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/halom"
)

type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its only connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
		newStmtCache(db),
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Insert appends events emitted at time t, in order, in one transaction.
func (db *EventDB) Insert(events []*halom.Event, t uint64) (err error) {
	if len(events) == 0 {
		return nil
	}
	for _, ev := range events {
		if len(ev.Topics) > MaxTopics {
			return fmt.Errorf("event %s: too many topics (%d)", ev.Name, len(ev.Topics))
		}
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var last uint64
	if err := tx.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM event").Scan(&last); err != nil {
		return errors.Wrap(err, "load last sequence")
	}

	for i, ev := range events {
		var topics [MaxTopics][]byte
		for j := range ev.Topics {
			topics[j] = ev.Topics[j].Bytes()
		}
		if _, err := tx.Exec("INSERT INTO event("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			last+uint64(i)+1,
			t,
			ev.Address.Bytes(),
			ev.Name,
			topics[0],
			topics[1],
			topics[2],
			topics[3],
			ev.Data,
		); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricInsertedEvents().Add(int64(len(events)))
	return nil
}

// Count returns the number of stored events.
func (db *EventDB) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (db *EventDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT " + eventColumns + " FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND time >= ?"
		if filter.Range.To > 0 && filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND time <= ?"
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		if criteria.Name != "" {
			args = append(args, criteria.Name)
			stmt += " AND name = ?"
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%d = ?", j)
			}
		}
		stmt += " )"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += " )"
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *EventDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     uint64
			time    uint64
			address []byte
			name    string
			topics  [MaxTopics][]byte
			data    []byte
		)
		if err := rows.Scan(
			&seq,
			&time,
			&address,
			&name,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			Seq:     seq,
			Time:    time,
			Address: halom.BytesToAddress(address),
			Name:    name,
			Data:    data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := halom.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
