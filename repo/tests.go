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
	"strings"
	"time"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// Points granted for passing a test.
const testPassedPoints = 50

// Free-text answers can earn at most this fraction of a question's
// points; only exact objective answers reach full credit.
const freeTextCreditCap = 0.8

// GradeResult reports a completed session. Expired sessions are still
// graded for feedback but can never pass.
type GradeResult struct {
	Session  *core.TestSession
	Score    int
	MaxScore int
	Percent  int
	Passed   bool
	Expired  bool
}

// TestRepository owns leveled quizzes, timed sessions and grading.
type TestRepository struct {
	Repository[*core.Test]
	points *PointsRepository
	now    func() time.Time
}

// TestOption configures a TestRepository.
type TestOption func(*TestRepository)

// WithTestClock overrides the time source. Tests use it to start and
// expire sessions deterministically.
func WithTestClock(now func() time.Time) TestOption {
	return func(r *TestRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewTestRepository creates a test repository. Pass awards flow through
// the given points repository so daily caps apply.
func NewTestRepository(db *mockdb.Database, points *PointsRepository, opts ...TestOption) *TestRepository {
	if points == nil {
		points = NewPointsRepository(db)
	}
	r := &TestRepository{
		Repository: newRepository(db, db.Tests()),
		points:     points,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ByLevel returns the tests at one difficulty level.
func (r *TestRepository) ByLevel(level int) []*core.Test {
	return r.Find(whereField[*core.Test]("level", level))
}

// Questions returns a test's questions ordered by position.
func (r *TestRepository) Questions(testID string) []*core.Question {
	return r.db.Questions().FindMany(&collection.Query[*core.Question]{
		Where:   collection.FieldEquals[*core.Question](map[string]any{"testId": testID}),
		OrderBy: &collection.Order{Field: "position"},
	})
}

// SessionDuration is how long an attempt at a test of the given level
// stays open. Harder tests get more time.
func SessionDuration(level int) time.Duration {
	return time.Duration(10+level*5) * time.Minute
}

// StartSession opens a timed attempt at a test. The expiry and maximum
// score are fixed here from the test's level and question points.
func (r *TestRepository) StartSession(testID, userID string) (*core.TestSession, bool) {
	test, ok := r.Get(testID)
	if !ok {
		return nil, false
	}

	maxScore := 0
	for _, q := range r.Questions(testID) {
		maxScore += q.Points
	}

	started := r.now().UTC()
	session, err := createIn(r.db, r.db.TestSessions(), &core.TestSession{
		TestID:    testID,
		UserID:    userID,
		StartedAt: started,
		ExpiresAt: started.Add(SessionDuration(test.Level)),
		Status:    core.SessionActive,
		MaxScore:  maxScore,
	})
	if err != nil {
		return nil, false
	}
	return session, true
}

// CompleteSession grades an active session against the submitted
// answers, keyed by question id. Objective questions score full points
// on a case-insensitive exact match. Free-text questions earn partial
// credit in proportion to grading-keyword overlap, clipped to 80% of
// the question's points. Submissions after the expiry are graded for
// feedback but marked expired and cannot pass.
//
// Passing ratchets the user's highest-level record forward and awards
// learning points through the daily cap. Completing an already
// completed session returns ok=false.
func (r *TestRepository) CompleteSession(sessionID string, answers map[string]string) (*GradeResult, bool, error) {
	session, ok := r.db.TestSessions().FindByID(sessionID)
	if !ok || session.Status != core.SessionActive {
		return nil, false, nil
	}
	test, ok := r.Get(session.TestID)
	if !ok {
		return nil, false, nil
	}

	now := r.now().UTC()
	expired := now.After(session.ExpiresAt)

	score := 0
	for _, q := range r.Questions(session.TestID) {
		score += gradeQuestion(q, answers[q.ID])
	}

	percent := 0
	if session.MaxScore > 0 {
		percent = score * 100 / session.MaxScore
	}
	passed := !expired && percent >= test.PassScore

	updated, _ := updateIn(r.db, r.db.TestSessions(), sessionID, func(s *core.TestSession) {
		s.Status = core.SessionCompleted
		s.CompletedAt = now
		s.Score = score
		s.Passed = passed
	})

	if passed {
		r.ratchetLevel(session.UserID, test.Level)
		if session.UserID != "" {
			if _, err := r.points.Award(session.UserID, core.PointsLearning, ActionTestPassed, testPassedPoints); err != nil {
				return nil, false, err
			}
		}
	}

	return &GradeResult{
		Session:  updated,
		Score:    score,
		MaxScore: session.MaxScore,
		Percent:  percent,
		Passed:   passed,
		Expired:  expired,
	}, true, nil
}

// LevelFor returns the highest test level a user has passed, zero when
// they have passed none.
func (r *TestRepository) LevelFor(userID string) int {
	progress, ok := r.db.LevelProgress().FindFirst(whereField[*core.LevelProgress]("userId", userID))
	if !ok {
		return 0
	}
	return progress.HighestLevelPassed
}

// SessionsForUser returns a user's attempts in insertion order.
func (r *TestRepository) SessionsForUser(userID string) []*core.TestSession {
	return r.db.TestSessions().FindMany(whereField[*core.TestSession]("userId", userID))
}

// ratchetLevel moves the user's highest-passed level forward only.
func (r *TestRepository) ratchetLevel(userID string, level int) {
	if userID == "" {
		return
	}
	existing, ok := r.db.LevelProgress().FindFirst(whereField[*core.LevelProgress]("userId", userID))
	if !ok {
		createIn(r.db, r.db.LevelProgress(), &core.LevelProgress{
			UserID:             userID,
			HighestLevelPassed: level,
		})
		return
	}
	if level > existing.HighestLevelPassed {
		updateIn(r.db, r.db.LevelProgress(), existing.ID, func(p *core.LevelProgress) {
			p.HighestLevelPassed = level
		})
	}
}

// gradeQuestion scores one answer.
func gradeQuestion(q *core.Question, answer string) int {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return 0
	}
	switch q.Type {
	case core.QuestionChoice, core.QuestionTrueFalse:
		if strings.EqualFold(answer, q.Answer) {
			return q.Points
		}
		return 0
	case core.QuestionFreeText:
		earned := int(keywordOverlap(answer, q.Keywords) * float64(q.Points))
		if limit := int(freeTextCreditCap * float64(q.Points)); earned > limit {
			earned = limit
		}
		return earned
	}
	return 0
}
