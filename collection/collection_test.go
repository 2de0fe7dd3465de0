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
	"testing"
	"time"

	"github.com/opencohort/mockdb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_GeneratesUniqueIDs(t *testing.T) {
	col := New[*core.Post]("posts")

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		post, err := col.Create(&core.Post{Title: "t"})
		require.NoError(t, err)
		require.NotEmpty(t, post.ID)
		require.False(t, seen[post.ID], "id %s generated twice", post.ID)
		seen[post.ID] = true
	}
	assert.Equal(t, 50, col.Len())
}

func TestCreate_KeepsCallerID(t *testing.T) {
	col := New[*core.Post]("posts")

	post, err := col.Create(&core.Post{Meta: core.Meta{ID: "p1"}, Title: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)

	found, ok := col.FindByID("p1")
	require.True(t, ok)
	assert.Equal(t, "hello", found.Title)
}

func TestCreate_RejectsDuplicateID(t *testing.T) {
	col := New[*core.Post]("posts")

	_, err := col.Create(&core.Post{Meta: core.Meta{ID: "p1"}})
	require.NoError(t, err)

	_, err = col.Create(&core.Post{Meta: core.Meta{ID: "p1"}})
	require.ErrorIs(t, err, core.ErrDuplicateID)
	assert.Equal(t, 1, col.Len())
}

func TestCreate_StampsTimestamps(t *testing.T) {
	col := New[*core.Post]("posts")

	post, err := col.Create(&core.Post{Title: "t"})
	require.NoError(t, err)
	assert.False(t, post.CreatedAt.IsZero())
	assert.False(t, post.UpdatedAt.IsZero())

	// Caller-supplied timestamps survive.
	supplied := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	post2, err := col.Create(&core.Post{Meta: core.Meta{CreatedAt: supplied, UpdatedAt: supplied}})
	require.NoError(t, err)
	assert.Equal(t, supplied, post2.CreatedAt)
}

func TestUpdate_MutatesAndRestamps(t *testing.T) {
	col := New[*core.Post]("posts")
	post, err := col.Create(&core.Post{Title: "before"})
	require.NoError(t, err)
	created := post.UpdatedAt

	time.Sleep(time.Millisecond)
	updated, ok := col.Update(post.ID, func(p *core.Post) { p.Title = "after" })
	require.True(t, ok)
	assert.Equal(t, "after", updated.Title)
	assert.True(t, updated.UpdatedAt.After(created))
}

func TestUpdate_MissingIDIsNotAnError(t *testing.T) {
	col := New[*core.Post]("posts")
	_, ok := col.Update("nope", func(p *core.Post) { p.Title = "x" })
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	col := New[*core.Post]("posts")
	post, err := col.Create(&core.Post{})
	require.NoError(t, err)

	assert.True(t, col.Delete(post.ID))
	assert.False(t, col.Delete(post.ID))
	assert.Equal(t, 0, col.Len())
}

func TestToArray_PreservesInsertionOrder(t *testing.T) {
	col := New[*core.Post]("posts")
	titles := []string{"one", "two", "three"}
	for _, title := range titles {
		_, err := col.Create(&core.Post{Title: title})
		require.NoError(t, err)
	}

	all := col.ToArray()
	require.Len(t, all, 3)
	for i, post := range all {
		assert.Equal(t, titles[i], post.Title)
	}
}

func TestHydrate_FirstOccurrenceWinsOnDuplicate(t *testing.T) {
	col := New[*core.Post]("posts")
	col.Hydrate([]*core.Post{
		{Meta: core.Meta{ID: "p1"}, Title: "kept"},
		{Meta: core.Meta{ID: "p2"}, Title: "other"},
		{Meta: core.Meta{ID: "p1"}, Title: "dropped"},
	})

	assert.Equal(t, 2, col.Len())
	found, ok := col.FindByID("p1")
	require.True(t, ok)
	assert.Equal(t, "kept", found.Title)
}

func TestMarshalRecords_RoundTrip(t *testing.T) {
	col := New[*core.Post]("posts")
	_, err := col.CreateMany([]*core.Post{
		{Meta: core.Meta{ID: "p1"}, Title: "first", Score: 3},
		{Meta: core.Meta{ID: "p2"}, Title: "second", Score: -1},
	})
	require.NoError(t, err)

	raw, err := col.MarshalRecords()
	require.NoError(t, err)
	require.Len(t, raw, 2)

	restored := New[*core.Post]("posts")
	require.NoError(t, restored.HydrateRaw(raw))

	all := restored.ToArray()
	require.Len(t, all, 2)
	assert.Equal(t, "first", all[0].Title)
	assert.Equal(t, 3, all[0].Score)
	assert.Equal(t, "p2", all[1].ID)
}

func TestHydrateRaw_TypedDates(t *testing.T) {
	col := New[*core.Enrollment]("enrollments")
	done := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err := col.Create(&core.Enrollment{CourseID: "c1", UserID: "u1", CompletedAt: done})
	require.NoError(t, err)

	raw, err := col.MarshalRecords()
	require.NoError(t, err)

	restored := New[*core.Enrollment]("enrollments")
	require.NoError(t, restored.HydrateRaw(raw))

	all := restored.ToArray()
	require.Len(t, all, 1)
	assert.True(t, done.Equal(all[0].CompletedAt), "time.Time fields round-trip without string heuristics")
}
