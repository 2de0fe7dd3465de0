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


package mockdb_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
	"github.com/opencohort/mockdb/storage"
	"github.com/opencohort/mockdb/storage/memory"
)

// testSeeder plants a small recognizable dataset.
func testSeeder(ctx context.Context, db *mockdb.Database) error {
	if _, err := db.Users().CreateMany([]*core.User{
		{Meta: core.Meta{ID: "u1"}, Name: "Mira"},
		{Meta: core.Meta{ID: "u2"}, Name: "Sam"},
	}); err != nil {
		return err
	}
	_, err := db.Posts().Create(&core.Post{Meta: core.Meta{ID: "p1"}, AuthorID: "u1", Title: "hello"})
	return err
}

func newTestDB(t *testing.T, adapter storage.Adapter) *mockdb.Database {
	t.Helper()
	if adapter == nil {
		adapter = memory.New()
	}
	return mockdb.New(adapter, mockdb.WithSeeder(testSeeder))
}

func TestInitialize_SeedsEmptyStore(t *testing.T) {
	db := newTestDB(t, nil)
	require.NoError(t, db.Initialize(context.Background()))

	assert.Equal(t, 2, db.Users().Len())
	assert.Equal(t, 1, db.Posts().Len())

	post, ok := db.Posts().FindByID("p1")
	require.True(t, ok)
	assert.Equal(t, "hello", post.Title)
}

func TestInitialize_IsMemoized(t *testing.T) {
	db := newTestDB(t, nil)
	ctx := context.Background()

	require.NoError(t, db.Initialize(ctx))
	db.Posts().Create(&core.Post{Meta: core.Meta{ID: "p2"}, Title: "extra"})

	// A second call must not reseed or rehydrate.
	require.NoError(t, db.Initialize(ctx))
	assert.Equal(t, 2, db.Posts().Len())
}

func TestInitialize_HydratesFromPriorData(t *testing.T) {
	adapter := memory.New()
	ctx := context.Background()

	first := newTestDB(t, adapter)
	require.NoError(t, first.Initialize(ctx))
	first.Users().Create(&core.User{Meta: core.Meta{ID: "u3"}, Name: "Late"})
	require.NoError(t, first.Persist(ctx))

	// A fresh database over the same adapter hydrates instead of
	// reseeding, so the extra user survives.
	second := newTestDB(t, adapter)
	require.NoError(t, second.Initialize(ctx))
	assert.Equal(t, 3, second.Users().Len())
	_, ok := second.Users().FindByID("u3")
	assert.True(t, ok)
}

func TestInitialize_ReseedsOnVersionSkew(t *testing.T) {
	adapter := memory.New()
	ctx := context.Background()

	stale, err := json.Marshal(storage.Snapshot{
		Version: storage.SchemaVersion - 1,
		Data: map[string][]json.RawMessage{
			"users": {json.RawMessage(`{"id":"old","name":"Stale"}`)},
		},
	})
	require.NoError(t, err)
	adapter.SetBlob(stale)

	db := newTestDB(t, adapter)
	require.NoError(t, db.Initialize(ctx))

	// Skewed snapshot discarded, seeder ran.
	_, ok := db.Users().FindByID("old")
	assert.False(t, ok)
	assert.Equal(t, 2, db.Users().Len())
}

func TestInitialize_ReseedsOnMalformedBlob(t *testing.T) {
	adapter := memory.New()
	adapter.SetBlob([]byte("garbage"))

	db := newTestDB(t, adapter)
	require.NoError(t, db.Initialize(context.Background()))
	assert.Equal(t, 2, db.Users().Len())
}

func TestReset_WipesAndReseeds(t *testing.T) {
	db := newTestDB(t, nil)
	ctx := context.Background()
	require.NoError(t, db.Initialize(ctx))

	db.Posts().Create(&core.Post{Meta: core.Meta{ID: "p2"}, Title: "doomed"})
	require.NoError(t, db.Reset(ctx))

	assert.Equal(t, 1, db.Posts().Len())
	_, ok := db.Posts().FindByID("p2")
	assert.False(t, ok)
}

func TestClear_WipesWithoutReseeding(t *testing.T) {
	adapter := memory.New()
	db := newTestDB(t, adapter)
	ctx := context.Background()
	require.NoError(t, db.Initialize(ctx))

	require.NoError(t, db.Clear(ctx))
	assert.Equal(t, 0, db.Users().Len())

	has, err := adapter.HasData(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestStats(t *testing.T) {
	db := newTestDB(t, nil)
	require.NoError(t, db.Initialize(context.Background()))

	stats := db.Stats()
	assert.Equal(t, 2, stats["users"])
	assert.Equal(t, 1, stats["posts"])
	assert.Equal(t, 0, stats["votes"])
}

func TestExport(t *testing.T) {
	db := newTestDB(t, nil)
	require.NoError(t, db.Initialize(context.Background()))

	blob, err := db.Export()
	require.NoError(t, err)

	snap, err := storage.DecodeSnapshot(blob)
	require.NoError(t, err)
	assert.Len(t, snap.Data["users"], 2)
}

func TestSubscribe_DeliversInOrder(t *testing.T) {
	db := newTestDB(t, nil)

	var order []string
	db.Subscribe(func(evt mockdb.Event) { order = append(order, "first") })
	db.Subscribe(func(evt mockdb.Event) { order = append(order, "second") })

	db.Emit(mockdb.Event{Collection: "users", Action: mockdb.ActionCreated})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	db := newTestDB(t, nil)

	calls := 0
	unsubscribe := db.Subscribe(func(evt mockdb.Event) { calls++ })

	db.Emit(mockdb.Event{Action: mockdb.ActionCreated})
	unsubscribe()
	db.Emit(mockdb.Event{Action: mockdb.ActionCreated})

	assert.Equal(t, 1, calls)
}

func TestSubscribe_PanickingListenerIsIsolated(t *testing.T) {
	db := newTestDB(t, nil)

	var survived bool
	db.Subscribe(func(evt mockdb.Event) { panic("listener bug") })
	db.Subscribe(func(evt mockdb.Event) { survived = true })

	assert.NotPanics(t, func() {
		db.Emit(mockdb.Event{Action: mockdb.ActionUpdated})
	})
	assert.True(t, survived)
}

func TestInitialize_EmitsSeededEvent(t *testing.T) {
	db := newTestDB(t, nil)

	var actions []mockdb.Action
	db.Subscribe(func(evt mockdb.Event) { actions = append(actions, evt.Action) })

	require.NoError(t, db.Initialize(context.Background()))
	assert.Contains(t, actions, mockdb.ActionSeeded)
}

func TestDefault_Accessor(t *testing.T) {
	t.Cleanup(mockdb.ResetDefault)

	assert.Nil(t, mockdb.Default())

	db := newTestDB(t, nil)
	mockdb.SetDefault(db)
	assert.Same(t, db, mockdb.Default())

	mockdb.ResetDefault()
	assert.Nil(t, mockdb.Default())
}
