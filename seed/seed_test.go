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


package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/storage/memory"
)

func seedFresh(t *testing.T) *mockdb.Database {
	t.Helper()
	db := mockdb.New(memory.New())
	require.NoError(t, Database(context.Background(), db))
	return db
}

func TestSeed_PopulatesFoundationalCollections(t *testing.T) {
	db := seedFresh(t)
	stats := db.Stats()

	assert.Equal(t, 5, stats["users"])
	assert.Equal(t, 3, stats["courses"])
	assert.Equal(t, 5, stats["lessons"])
	assert.Equal(t, 4, stats["companions"])
	assert.Equal(t, 2, stats["tests"])
	assert.Equal(t, 5, stats["questions"])
	assert.Zero(t, stats["testSessions"], "no derived state is seeded")
}

func TestSeed_ForeignKeysResolve(t *testing.T) {
	db := seedFresh(t)

	for _, course := range db.Courses().ToArray() {
		assert.True(t, db.Categories().Exists(course.CategoryID), "course %s category", course.Slug)
		assert.True(t, db.Users().Exists(course.InstructorID), "course %s instructor", course.Slug)
	}
	for _, lesson := range db.Lessons().ToArray() {
		assert.True(t, db.Courses().Exists(lesson.CourseID))
	}
	for _, question := range db.Questions().ToArray() {
		assert.True(t, db.Tests().Exists(question.TestID))
	}
	for _, vote := range db.Votes().ToArray() {
		assert.True(t, db.Users().Exists(vote.UserID))
	}
}

func TestSeed_IsDeterministic(t *testing.T) {
	first := seedFresh(t)
	second := seedFresh(t)

	blobA, err := first.Export()
	require.NoError(t, err)
	blobB, err := second.Export()
	require.NoError(t, err)

	// Everything except the snapshot wrapper's own timestamp is
	// byte-identical across reseeds.
	assert.Equal(t, stripLastUpdated(string(blobA)), stripLastUpdated(string(blobB)))
}

func stripLastUpdated(blob string) string {
	if i := strings.Index(blob, `"lastUpdated":`); i >= 0 {
		return blob[:i]
	}
	return blob
}
