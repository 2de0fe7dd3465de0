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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencohort/mockdb/core"
)

func TestAward_CreatesProfileLazily(t *testing.T) {
	db := setupDB(t)
	points := NewPointsRepository(db)

	_, ok := points.ProfileFor("u1")
	assert.False(t, ok)

	result, err := points.Award("u1", core.PointsLearning, ActionSprintTask, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Awarded)
	assert.False(t, result.Capped)

	profile, ok := points.ProfileFor("u1")
	require.True(t, ok)
	assert.Equal(t, 10, profile.Total)
	assert.Equal(t, 10, profile.DailyLearning)
}

func TestAward_ClipsAtCategoryCap(t *testing.T) {
	db := setupDB(t)
	points := NewPointsRepository(db, WithCaps(Caps{Learning: 50, Community: 50}))

	result, err := points.Award("u1", core.PointsLearning, "anything", 40)
	require.NoError(t, err)
	assert.Equal(t, 40, result.Awarded)

	// 10 of 30 fit under the cap.
	result, err = points.Award("u1", core.PointsLearning, "anything", 30)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Awarded)
	assert.True(t, result.Capped)
	assert.Equal(t, 50, result.Profile.DailyLearning)

	// Exhausted cap: zero award, still capped, still recorded.
	result, err = points.Award("u1", core.PointsLearning, "anything", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)
	assert.True(t, result.Capped)
	assert.Equal(t, 50, result.Profile.Total)
}

func TestAward_PerActionCapAppliesOnTopOfCategory(t *testing.T) {
	db := setupDB(t)
	points := NewPointsRepository(db, WithCaps(Caps{
		Learning:  1000,
		Community: 1000,
		PerAction: map[string]int{ActionUpvoteReceived: 15},
	}))

	result, err := points.Award("u1", core.PointsCommunity, ActionUpvoteReceived, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Awarded)

	result, err = points.Award("u1", core.PointsCommunity, ActionUpvoteReceived, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Awarded)
	assert.True(t, result.Capped)

	// Other actions in the same category are unaffected.
	result, err = points.Award("u1", core.PointsCommunity, "other_action", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Awarded)
}

func TestAward_CountersResetAtUTCMidnight(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	points := NewPointsRepository(db,
		WithCaps(Caps{Learning: 30, Community: 30}),
		WithPointsClock(func() time.Time { return now }),
	)

	result, err := points.Award("u1", core.PointsLearning, "task", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, result.Awarded)

	// Still the same UTC day: cap exhausted.
	result, err = points.Award("u1", core.PointsLearning, "task", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Awarded)

	// Cross midnight: daily counters reset, lifetime total keeps going.
	now = now.Add(20 * time.Minute)
	result, err = points.Award("u1", core.PointsLearning, "task", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Awarded)
	assert.Equal(t, 10, result.Profile.DailyLearning)
	assert.Equal(t, 40, result.Profile.Total)
}

func TestAward_WritesTransactionRows(t *testing.T) {
	db := setupDB(t)
	points := NewPointsRepository(db, WithCaps(Caps{Learning: 5, Community: 5}))

	_, err := points.Award("u1", core.PointsLearning, "task", 10)
	require.NoError(t, err)

	txs := points.TransactionsFor("u1")
	require.Len(t, txs, 1)
	assert.Equal(t, 10, txs[0].Requested)
	assert.Equal(t, 5, txs[0].Awarded)
	assert.True(t, txs[0].Capped)
}

func TestAward_RejectsBadInput(t *testing.T) {
	db := setupDB(t)
	points := NewPointsRepository(db)

	_, err := points.Award("", core.PointsLearning, "task", 10)
	assert.ErrorIs(t, err, core.ErrEmptyUserID)

	_, err = points.Award("u1", core.PointsLearning, "task", -1)
	assert.ErrorIs(t, err, core.ErrNegativePoints)
}
