// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

func New(db *eventdb.EventDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

func parseUint(query url.Values, name string) (uint64, bool, error) {
	s := query.Get(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, restutil.BadRequest(errors.WithMessage(err, name))
	}
	return v, true, nil
}

// parseFilter reads a single criteria filter from the query string.
func (e *Events) parseFilter(query url.Values) (*eventdb.EventFilter, error) {
	var (
		criteria eventdb.EventCriteria
		filter   eventdb.EventFilter
		err      error
	)
	if s := query.Get("address"); s != "" {
		addr, err := restutil.ParseAddress("address", s)
		if err != nil {
			return nil, err
		}
		criteria.Address = &addr
	}
	criteria.Name = query.Get("name")
	for i := range criteria.Topics {
		name := fmt.Sprintf("topic%d", i)
		if s := query.Get(name); s != "" {
			topic, err := restutil.ParseBytes32(name, s)
			if err != nil {
				return nil, err
			}
			criteria.Topics[i] = &topic
		}
	}
	filter.CriteriaSet = []*eventdb.EventCriteria{&criteria}

	from, hasFrom, err := parseUint(query, "from")
	if err != nil {
		return nil, err
	}
	to, hasTo, err := parseUint(query, "to")
	if err != nil {
		return nil, err
	}
	if hasTo && to < from {
		return nil, restutil.BadRequest(errors.New("to must be greater than or equal to from"))
	}
	if hasFrom || hasTo {
		filter.Range = &eventdb.Range{From: from, To: to}
	}

	switch order := query.Get("order"); order {
	case "", string(eventdb.ASC):
		filter.Order = eventdb.ASC
	case string(eventdb.DESC):
		filter.Order = eventdb.DESC
	default:
		return nil, restutil.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	offset, _, err := parseUint(query, "offset")
	if err != nil {
		return nil, err
	}
	if offset > math.MaxInt64 {
		return nil, restutil.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	limit, hasLimit, err := parseUint(query, "limit")
	if err != nil {
		return nil, err
	}
	if limit > e.limit {
		return nil, restutil.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit))
	}
	if !hasLimit {
		// one more than allowed, to detect an oversized result
		limit = e.limit + 1
	}
	filter.Options = &eventdb.Options{Offset: offset, Limit: limit}
	return &filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	if len(events) > int(e.limit) {
		return restutil.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}

	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = convertEvent(ev)
	}
	return restutil.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}
