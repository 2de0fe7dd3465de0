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

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

func setupQuiz(t *testing.T, level, passScore int) (*mockdb.Database, *TestRepository, func(time.Duration)) {
	t.Helper()
	db := setupDB(t)
	addUser(t, db, "u1", "Lena")

	mustCreate(t, db.Tests().Create, &core.Test{
		Meta: core.Meta{ID: "t1"}, Title: "Quiz", Level: level, PassScore: passScore,
	})
	mustCreate(t, db.Questions().Create, &core.Question{
		Meta: core.Meta{ID: "q1"}, TestID: "t1", Prompt: "2+2?",
		Type: core.QuestionChoice, Options: []string{"3", "4"}, Answer: "4",
		Points: 10, Position: 1,
	})
	mustCreate(t, db.Questions().Create, &core.Question{
		Meta: core.Meta{ID: "q2"}, TestID: "t1", Prompt: "The sky is blue.",
		Type: core.QuestionTrueFalse, Answer: "true", Points: 10, Position: 2,
	})
	mustCreate(t, db.Questions().Create, &core.Question{
		Meta: core.Meta{ID: "q3"}, TestID: "t1", Prompt: "Explain interfaces.",
		Type: core.QuestionFreeText, Keywords: []string{"method", "set", "type", "behavior"},
		Points: 20, Position: 3,
	})

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	advance := func(d time.Duration) { now = now.Add(d) }
	repo := NewTestRepository(db, nil, WithTestClock(func() time.Time { return now }))
	return db, repo, advance
}

func TestSessionDuration_ScalesWithLevel(t *testing.T) {
	assert.Equal(t, 15*time.Minute, SessionDuration(1))
	assert.Equal(t, 25*time.Minute, SessionDuration(3))
}

func TestStartSession_FixesExpiryAndMaxScore(t *testing.T) {
	_, repo, _ := setupQuiz(t, 2, 60)

	session, ok := repo.StartSession("t1", "u1")
	require.True(t, ok)
	assert.Equal(t, core.SessionActive, session.Status)
	assert.Equal(t, 40, session.MaxScore)
	assert.Equal(t, 20*time.Minute, session.ExpiresAt.Sub(session.StartedAt))
}

func TestStartSession_MissingTest(t *testing.T) {
	_, repo, _ := setupQuiz(t, 1, 60)
	_, ok := repo.StartSession("ghost", "u1")
	assert.False(t, ok)
}

func TestCompleteSession_GradesObjectiveExactly(t *testing.T) {
	_, repo, _ := setupQuiz(t, 1, 50)
	session, _ := repo.StartSession("t1", "u1")

	result, ok, err := repo.CompleteSession(session.ID, map[string]string{
		"q1": "4",
		"q2": "TRUE", // case-insensitive
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20, result.Score)
	assert.Equal(t, 50, result.Percent)
	assert.True(t, result.Passed)
}

func TestCompleteSession_FreeTextPartialCredit(t *testing.T) {
	_, repo, _ := setupQuiz(t, 1, 90)
	session, _ := repo.StartSession("t1", "u1")

	// Two of four keywords present: half of 20 points.
	result, ok, err := repo.CompleteSession(session.ID, map[string]string{
		"q3": "An interface describes a method set for a value.",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, result.Score)
}

func TestCompleteSession_FreeTextCappedAtEightyPercent(t *testing.T) {
	_, repo, _ := setupQuiz(t, 1, 90)
	session, _ := repo.StartSession("t1", "u1")

	// All four keywords present, but free text never earns full credit.
	result, ok, err := repo.CompleteSession(session.ID, map[string]string{
		"q3": "A type satisfies an interface when its method set covers the expected behavior.",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 16, result.Score)
}

func TestCompleteSession_ExpiredCannotPass(t *testing.T) {
	_, repo, advance := setupQuiz(t, 1, 50)
	session, _ := repo.StartSession("t1", "u1")

	advance(16 * time.Minute)
	result, ok, err := repo.CompleteSession(session.ID, map[string]string{
		"q1": "4", "q2": "true",
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, result.Expired)
	assert.Equal(t, 20, result.Score, "expired sessions still get graded feedback")
	assert.False(t, result.Passed)
}

func TestCompleteSession_OnlyOnce(t *testing.T) {
	_, repo, _ := setupQuiz(t, 1, 50)
	session, _ := repo.StartSession("t1", "u1")

	_, ok, err := repo.CompleteSession(session.ID, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = repo.CompleteSession(session.ID, map[string]string{"q1": "4"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompleteSession_PassRatchetsLevelForward(t *testing.T) {
	db, repo, _ := setupQuiz(t, 3, 40)
	session, _ := repo.StartSession("t1", "u1")

	_, _, err := repo.CompleteSession(session.ID, map[string]string{"q1": "4", "q2": "true"})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.LevelFor("u1"))

	// Passing a lower-level test later never lowers the record.
	mustCreate(t, db.Tests().Create, &core.Test{Meta: core.Meta{ID: "t2"}, Title: "Easy", Level: 1, PassScore: 0})
	easy, _ := repo.StartSession("t2", "u1")
	_, _, err = repo.CompleteSession(easy.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.LevelFor("u1"))
}

func TestCompleteSession_PassAwardsLearningPoints(t *testing.T) {
	db, repo, _ := setupQuiz(t, 1, 40)
	session, _ := repo.StartSession("t1", "u1")

	_, _, err := repo.CompleteSession(session.ID, map[string]string{"q1": "4", "q2": "true"})
	require.NoError(t, err)

	profile, ok := NewPointsRepository(db).ProfileFor("u1")
	require.True(t, ok)
	assert.Equal(t, testPassedPoints, profile.Total)
}

func TestKeywordOverlap(t *testing.T) {
	cases := []struct {
		name     string
		answer   string
		keywords []string
		want     float64
	}{
		{"all present", "the type and its method set", []string{"type", "method"}, 1},
		{"half present", "only the type matters", []string{"type", "method"}, 0.5},
		{"case insensitive", "METHOD sets", []string{"method"}, 1},
		{"punctuation trimmed", "a type, a method.", []string{"type", "method"}, 1},
		{"none present", "completely unrelated words", []string{"type", "method"}, 0},
		{"no keywords", "anything", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, keywordOverlap(tc.answer, tc.keywords), 0.001)
		})
	}
}
