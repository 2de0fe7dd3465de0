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


package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

func setupCompanions(t *testing.T) (*mockdb.Database, *CompanionRepository) {
	t.Helper()
	db := setupDB(t)
	addUser(t, db, "u1", "Lena")
	mustCreate(t, db.Companions().Create, &core.Companion{Meta: core.Meta{ID: "c1"}, Name: "Haru", Type: "nunu", MatchCount: 42, Rating: 4.8})
	mustCreate(t, db.Companions().Create, &core.Companion{Meta: core.Meta{ID: "c2"}, Name: "Pip", Type: "nunu", MatchCount: 31, Rating: 4.5})
	mustCreate(t, db.Companions().Create, &core.Companion{Meta: core.Meta{ID: "c3"}, Name: "Sage", Type: "nunu", MatchCount: 17, Rating: 4.9})
	mustCreate(t, db.Companions().Create, &core.Companion{Meta: core.Meta{ID: "c4"}, Name: "Rex", Type: "coach", MatchCount: 55, Rating: 4.2})
	return db, NewCompanionRepository(db)
}

func TestByType_OrdersByMatchCount(t *testing.T) {
	_, companions := setupCompanions(t)

	got := companions.ByType("nunu", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Haru", got[0].Name)
	assert.Equal(t, "Pip", got[1].Name)
}

func TestTopRated(t *testing.T) {
	_, companions := setupCompanions(t)

	got := companions.TopRated(1)
	require.Len(t, got, 1)
	assert.Equal(t, "Sage", got[0].Name)
}

func TestRecordMatch_BumpsCountOnce(t *testing.T) {
	db, companions := setupCompanions(t)

	match, ok := companions.RecordMatch("c3", "u1")
	require.True(t, ok)
	assert.Equal(t, "c3", match.CompanionID)

	again, ok := companions.RecordMatch("c3", "u1")
	require.True(t, ok)
	assert.Equal(t, match.ID, again.ID)

	companion, _ := db.Companions().FindByID("c3")
	assert.Equal(t, 18, companion.MatchCount)
	assert.Len(t, companions.MatchesForUser("u1"), 1)
}

func TestRecordMatch_MissingCompanion(t *testing.T) {
	_, companions := setupCompanions(t)
	_, ok := companions.RecordMatch("ghost", "u1")
	assert.False(t, ok)
}
