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
	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// CompanionRepository owns mentor companions and their match records.
type CompanionRepository struct {
	Repository[*core.Companion]
}

// NewCompanionRepository creates a companion repository.
func NewCompanionRepository(db *mockdb.Database) *CompanionRepository {
	return &CompanionRepository{Repository: newRepository(db, db.Companions())}
}

// ByType returns companions of one type, most matched first.
func (r *CompanionRepository) ByType(companionType string, limit int) []*core.Companion {
	return r.Find(&collection.Query[*core.Companion]{
		Where:   collection.FieldEquals[*core.Companion](map[string]any{"type": companionType}),
		OrderBy: &collection.Order{Field: "matchCount", Desc: true},
		Limit:   limit,
	})
}

// BySpecialty returns companions with a given specialty in insertion
// order.
func (r *CompanionRepository) BySpecialty(specialty string) []*core.Companion {
	return r.Find(whereField[*core.Companion]("specialty", specialty))
}

// TopRated returns the highest-rated companions.
func (r *CompanionRepository) TopRated(limit int) []*core.Companion {
	return r.Find(&collection.Query[*core.Companion]{
		OrderBy: &collection.Order{Field: "rating", Desc: true},
		Limit:   limit,
	})
}

// RecordMatch pairs a user with a companion and bumps the companion's
// cached match counter. A second match against the same pair returns
// the existing row untouched.
func (r *CompanionRepository) RecordMatch(companionID, userID string) (*core.CompanionMatch, bool) {
	if !r.db.Companions().Exists(companionID) {
		return nil, false
	}
	if existing, ok := r.matchFor(companionID, userID); ok {
		return existing, true
	}
	match, err := createIn(r.db, r.db.CompanionMatches(), &core.CompanionMatch{
		CompanionID: companionID,
		UserID:      userID,
		Status:      "active",
	})
	if err != nil {
		return nil, false
	}
	r.Update(companionID, func(c *core.Companion) { c.MatchCount++ })
	return match, true
}

// MatchesForUser returns a user's companion matches in insertion order.
func (r *CompanionRepository) MatchesForUser(userID string) []*core.CompanionMatch {
	return r.db.CompanionMatches().FindMany(whereField[*core.CompanionMatch]("userId", userID))
}

func (r *CompanionRepository) matchFor(companionID, userID string) (*core.CompanionMatch, bool) {
	return r.db.CompanionMatches().FindFirst(&collection.Query[*core.CompanionMatch]{
		Where: collection.Match(func(m *core.CompanionMatch) bool {
			return m.CompanionID == companionID && m.UserID == userID
		}),
	})
}
