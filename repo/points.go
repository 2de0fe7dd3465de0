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
	"fmt"
	"time"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

// Well-known point actions.
const (
	ActionUpvoteReceived = "upvote_received"
	ActionSprintTask     = "sprint_task"
	ActionTestPassed     = "test_passed"
)

// Caps holds the per-UTC-day point ceilings. Category caps always
// apply; per-action caps apply only to actions listed in PerAction.
type Caps struct {
	Learning  int
	Community int
	PerAction map[string]int
}

// DefaultCaps returns the platform's standard daily ceilings.
func DefaultCaps() Caps {
	return Caps{
		Learning:  200,
		Community: 100,
		PerAction: map[string]int{
			ActionUpvoteReceived: 50,
			ActionSprintTask:     60,
			ActionTestPassed:     150,
		},
	}
}

// AwardResult reports one award attempt. Awarded is the clipped amount
// actually credited; Capped marks attempts that hit a daily ceiling,
// including zero-point awards at an exhausted cap.
type AwardResult struct {
	Requested   int
	Awarded     int
	Capped      bool
	Profile     *core.PointsProfile
	Transaction *core.PointTransaction
}

// PointsRepository maintains running totals and per-day counters and
// enforces the daily caps by clipping.
type PointsRepository struct {
	Repository[*core.PointsProfile]
	caps Caps
	now  func() time.Time
}

// PointsOption configures a PointsRepository.
type PointsOption func(*PointsRepository)

// WithCaps overrides the default daily ceilings.
func WithCaps(caps Caps) PointsOption {
	return func(r *PointsRepository) { r.caps = caps }
}

// WithPointsClock overrides the time source. Tests use it to cross
// UTC-day boundaries.
func WithPointsClock(now func() time.Time) PointsOption {
	return func(r *PointsRepository) {
		if now != nil {
			r.now = now
		}
	}
}

// NewPointsRepository creates a points repository over the database's
// pointsProfiles collection.
func NewPointsRepository(db *mockdb.Database, opts ...PointsOption) *PointsRepository {
	r := &PointsRepository{
		Repository: newRepository(db, db.PointsProfiles()),
		caps:       DefaultCaps(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProfileFor returns the user's points profile, if one exists yet.
func (r *PointsRepository) ProfileFor(userID string) (*core.PointsProfile, bool) {
	return r.First(whereField[*core.PointsProfile]("userId", userID))
}

// TransactionsFor returns the user's award history in insertion order.
func (r *PointsRepository) TransactionsFor(userID string) []*core.PointTransaction {
	return r.db.PointTransactions().FindMany(whereField[*core.PointTransaction]("userId", userID))
}

// Award credits points to a user, clipping the amount to whatever room
// remains under the category cap and, where configured, the per-action
// cap for the current UTC day. Exhausted caps yield a zero award, not
// an error. Every attempt writes a transaction row flagging whether
// clipping occurred.
func (r *PointsRepository) Award(userID string, category core.PointCategory, action string, amount int) (*AwardResult, error) {
	if userID == "" {
		return nil, core.ErrEmptyUserID
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: %d", core.ErrNegativePoints, amount)
	}

	profile := r.ensureProfile(userID)
	today := r.now().UTC().Format(time.DateOnly)

	awarded := 0
	r.Update(profile.ID, func(p *core.PointsProfile) {
		// Lazy UTC-midnight rollover. Comparing day strings makes the
		// reset idempotent within one day.
		if p.DailyDate != today {
			p.DailyLearning = 0
			p.DailyCommunity = 0
			p.DailyByAction = make(map[string]int)
			p.DailyDate = today
		}
		if p.DailyByAction == nil {
			p.DailyByAction = make(map[string]int)
		}

		room := amount
		switch category {
		case core.PointsLearning:
			if left := r.caps.Learning - p.DailyLearning; left < room {
				room = left
			}
		case core.PointsCommunity:
			if left := r.caps.Community - p.DailyCommunity; left < room {
				room = left
			}
		}
		if actionCap, ok := r.caps.PerAction[action]; ok {
			if left := actionCap - p.DailyByAction[action]; left < room {
				room = left
			}
		}
		if room < 0 {
			room = 0
		}
		awarded = room

		p.Total += awarded
		p.DailyByAction[action] += awarded
		switch category {
		case core.PointsLearning:
			p.DailyLearning += awarded
		case core.PointsCommunity:
			p.DailyCommunity += awarded
		}
	})

	tx, err := createIn(r.db, r.db.PointTransactions(), &core.PointTransaction{
		UserID:    userID,
		Category:  category,
		Action:    action,
		Requested: amount,
		Awarded:   awarded,
		Capped:    awarded < amount,
	})
	if err != nil {
		return nil, err
	}

	updated, _ := r.Get(profile.ID)
	return &AwardResult{
		Requested:   amount,
		Awarded:     awarded,
		Capped:      awarded < amount,
		Profile:     updated,
		Transaction: tx,
	}, nil
}

// ensureProfile finds or lazily creates the user's profile row.
func (r *PointsRepository) ensureProfile(userID string) *core.PointsProfile {
	if profile, ok := r.ProfileFor(userID); ok {
		return profile
	}
	profile, err := r.Create(&core.PointsProfile{
		UserID:        userID,
		DailyByAction: make(map[string]int),
		DailyDate:     r.now().UTC().Format(time.DateOnly),
	})
	if err != nil {
		// Only reachable on an id collision, which Create never
		// produces for generated ids; fall back to the stored row.
		existing, _ := r.ProfileFor(userID)
		return existing
	}
	return profile
}
