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


// Package repo layers domain-shaped operations on top of the raw
// collection store: cross-collection enrichment, vote bookkeeping,
// daily-capped point awards and test grading. Absence is always a
// normal outcome here; repositories return ok=false instead of errors
// for missing records.
package repo

import (
	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// Repository is the typed base every concrete repository embeds. It
// wraps one primary collection and the owning database, and routes
// mutations through the database's event bus.
type Repository[T core.Record] struct {
	db  *mockdb.Database
	col *collection.Collection[T]
}

func newRepository[T core.Record](db *mockdb.Database, col *collection.Collection[T]) Repository[T] {
	return Repository[T]{db: db, col: col}
}

// DB returns the owning database.
func (r *Repository[T]) DB() *mockdb.Database { return r.db }

// All returns every record in insertion order.
func (r *Repository[T]) All() []T { return r.col.ToArray() }

// Get looks up the primary record by id.
func (r *Repository[T]) Get(id string) (T, bool) { return r.col.FindByID(id) }

// Find runs a query against the primary collection.
func (r *Repository[T]) Find(q *collection.Query[T]) []T { return r.col.FindMany(q) }

// First returns the first record matching the query.
func (r *Repository[T]) First(q *collection.Query[T]) (T, bool) { return r.col.FindFirst(q) }

// Count returns the number of stored records.
func (r *Repository[T]) Count() int { return r.col.Len() }

// Create stores a record and emits a created event.
func (r *Repository[T]) Create(rec T) (T, error) {
	return createIn(r.db, r.col, rec)
}

// Update mutates a record in place and emits an updated event.
func (r *Repository[T]) Update(id string, mutate func(rec T)) (T, bool) {
	return updateIn(r.db, r.col, id, mutate)
}

// Delete removes a record and emits a deleted event.
func (r *Repository[T]) Delete(id string) bool {
	return deleteIn(r.db, r.col, id)
}

// whereField builds the common one-field equality query.
func whereField[T any](field string, value any) *collection.Query[T] {
	return &collection.Query[T]{
		Where: collection.FieldEquals[T](map[string]any{field: value}),
	}
}

// createIn, updateIn and deleteIn are the shared mutation paths for
// sibling collections, so every repository write notifies observers the
// same way.

func createIn[T core.Record](db *mockdb.Database, col *collection.Collection[T], rec T) (T, error) {
	created, err := col.Create(rec)
	if err != nil {
		return created, err
	}
	db.Emit(mockdb.Event{Collection: col.Name(), Action: mockdb.ActionCreated, RecordID: created.RecordID()})
	return created, nil
}

func updateIn[T core.Record](db *mockdb.Database, col *collection.Collection[T], id string, mutate func(rec T)) (T, bool) {
	updated, ok := col.Update(id, mutate)
	if !ok {
		return updated, false
	}
	db.Emit(mockdb.Event{Collection: col.Name(), Action: mockdb.ActionUpdated, RecordID: id})
	return updated, true
}

func deleteIn[T core.Record](db *mockdb.Database, col *collection.Collection[T], id string) bool {
	if !col.Delete(id) {
		return false
	}
	db.Emit(mockdb.Event{Collection: col.Name(), Action: mockdb.ActionDeleted, RecordID: id})
	return true
}
