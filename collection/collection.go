// Copyright 2025 The OpenCohort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package collection

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/opencohort/mockdb/core"
)

// Collection is a named, insertion-ordered, in-memory store of records
// of one type. T must be a pointer to a struct embedding core.Meta or
// core.Key. Iteration follows insertion order unless a query asks for
// ordering; id lookup is O(1).
//
// A Collection is not safe for concurrent use; the owning database is
// the single writer.
type Collection[T core.Record] struct {
	name   string
	order  []string
	byID   map[string]T
	logger *slog.Logger
}

// New creates an empty collection with the given name.
func New[T core.Record](name string) *Collection[T] {
	return &Collection[T]{
		name:   name,
		byID:   make(map[string]T),
		logger: slog.Default(),
	}
}

// Name returns the collection's schema name.
func (c *Collection[T]) Name() string { return c.name }

// Len returns the number of stored records.
func (c *Collection[T]) Len() int { return len(c.order) }

// Create stores a record, generating an id if the caller did not supply
// one and stamping timestamps on types that carry them. A caller
// supplied id that collides with an existing record is rejected with
// core.ErrDuplicateID rather than shadowing the stored record.
func (c *Collection[T]) Create(rec T) (T, error) {
	var zero T

	id := rec.RecordID()
	if id == "" {
		id = core.NewID()
		rec.SetRecordID(id)
	} else if _, exists := c.byID[id]; exists {
		return zero, fmt.Errorf("%w: %s/%s", core.ErrDuplicateID, c.name, id)
	}

	if ts, ok := any(rec).(core.Timestamped); ok {
		ts.StampCreated(time.Now().UTC())
	}

	c.byID[id] = rec
	c.order = append(c.order, id)
	return rec, nil
}

// CreateMany stores records sequentially, preserving input order. It
// stops at the first failure and returns the records stored so far.
func (c *Collection[T]) CreateMany(recs []T) ([]T, error) {
	stored := make([]T, 0, len(recs))
	for _, rec := range recs {
		created, err := c.Create(rec)
		if err != nil {
			return stored, err
		}
		stored = append(stored, created)
	}
	return stored, nil
}

// FindByID looks up a record by id.
func (c *Collection[T]) FindByID(id string) (T, bool) {
	rec, ok := c.byID[id]
	return rec, ok
}

// Exists reports whether a record with the given id is stored.
func (c *Collection[T]) Exists(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// FindMany returns all records matching the query, in insertion order
// unless the query orders them. A nil query returns everything.
func (c *Collection[T]) FindMany(q *Query[T]) []T {
	var matched []T
	if q == nil || q.Where == nil {
		matched = c.ToArray()
	} else {
		matched = make([]T, 0)
		for _, id := range c.order {
			rec := c.byID[id]
			if q.Where.Matches(rec) {
				matched = append(matched, rec)
			}
		}
	}

	if q != nil && q.OrderBy != nil {
		sortRecords(matched, q.OrderBy)
	}
	if q != nil && q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched
}

// FindFirst returns the first record matching the query, honoring any
// ordering the query requests.
func (c *Collection[T]) FindFirst(q *Query[T]) (T, bool) {
	var zero T
	limited := Query[T]{Limit: 1}
	if q != nil {
		limited.Where = q.Where
		limited.OrderBy = q.OrderBy
	}
	matched := c.FindMany(&limited)
	if len(matched) == 0 {
		return zero, false
	}
	return matched[0], true
}

// Update applies mutate to the stored record and re-stamps its update
// time. A missing id is a normal outcome, not an error.
func (c *Collection[T]) Update(id string, mutate func(rec T)) (T, bool) {
	var zero T
	rec, ok := c.byID[id]
	if !ok {
		return zero, false
	}

	mutate(rec)
	if ts, tok := any(rec).(core.Timestamped); tok {
		ts.StampUpdated(time.Now().UTC())
	}
	return rec, true
}

// Delete removes a record by id, reporting whether one was removed.
func (c *Collection[T]) Delete(id string) bool {
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// ToArray returns the full contents in insertion order. The slice is a
// fresh copy; the records are shared.
func (c *Collection[T]) ToArray() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Hydrate replaces the entire contents with the given records, trusting
// their shapes. When an id appears more than once the first occurrence
// wins and later ones are dropped with a warning.
func (c *Collection[T]) Hydrate(recs []T) {
	c.Clear()
	for _, rec := range recs {
		id := rec.RecordID()
		if id == "" {
			id = core.NewID()
			rec.SetRecordID(id)
		}
		if _, exists := c.byID[id]; exists {
			c.logger.Warn("dropping duplicate id during hydrate",
				"collection", c.name, "id", id)
			continue
		}
		c.byID[id] = rec
		c.order = append(c.order, id)
	}
}

// Clear removes all records.
func (c *Collection[T]) Clear() {
	c.order = c.order[:0]
	c.byID = make(map[string]T)
}

// MarshalRecords encodes every record as JSON, in insertion order.
// Implements storage.CollectionSource.
func (c *Collection[T]) MarshalRecords() ([]json.RawMessage, error) {
	raw := make([]json.RawMessage, 0, len(c.order))
	for _, id := range c.order {
		data, err := json.Marshal(c.byID[id])
		if err != nil {
			return nil, fmt.Errorf("marshal %s/%s: %w", c.name, id, err)
		}
		raw = append(raw, data)
	}
	return raw, nil
}

// HydrateRaw decodes raw JSON records and replaces the contents with
// them. Records that fail to decode abort the hydration.
func (c *Collection[T]) HydrateRaw(raw []json.RawMessage) error {
	recs := make([]T, 0, len(raw))
	for i, data := range raw {
		rec := c.blank()
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("unmarshal %s[%d]: %w", c.name, i, err)
		}
		recs = append(recs, rec)
	}
	c.Hydrate(recs)
	return nil
}

// blank allocates a fresh zero record of the element type.
func (c *Collection[T]) blank() T {
	var zero T
	elem := reflect.TypeOf(zero).Elem()
	return reflect.New(elem).Interface().(T)
}
