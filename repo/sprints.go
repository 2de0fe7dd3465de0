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
	"time"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// Points granted to the user who completes a sprint task.
const sprintTaskPoints = 20

// EnrichedSprint is a sprint assembled with its ordered tasks and
// participant rows.
type EnrichedSprint struct {
	*core.Sprint
	Tasks        []*core.SprintTask        `json:"tasks"`
	Participants []*core.SprintParticipant `json:"participants"`
}

// SprintRepository owns project sprints, their tasks and memberships.
type SprintRepository struct {
	Repository[*core.Sprint]
	points *PointsRepository
	now    func() time.Time
}

// NewSprintRepository creates a sprint repository. Task completion
// awards flow through the given points repository so daily caps apply.
func NewSprintRepository(db *mockdb.Database, points *PointsRepository) *SprintRepository {
	if points == nil {
		points = NewPointsRepository(db)
	}
	return &SprintRepository{
		Repository: newRepository(db, db.Sprints()),
		points:     points,
		now:        time.Now,
	}
}

// Active returns sprints currently running, in insertion order.
func (r *SprintRepository) Active() []*core.Sprint {
	return r.Find(whereField[*core.Sprint]("status", core.SprintActive))
}

// Enriched assembles one sprint with its tasks and participants.
func (r *SprintRepository) Enriched(id string) (*EnrichedSprint, bool) {
	sprint, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	return &EnrichedSprint{
		Sprint: sprint,
		Tasks: r.db.SprintTasks().FindMany(&collection.Query[*core.SprintTask]{
			Where:   collection.FieldEquals[*core.SprintTask](map[string]any{"sprintId": id}),
			OrderBy: &collection.Order{Field: "position"},
		}),
		Participants: r.db.SprintParticipants().FindMany(whereField[*core.SprintParticipant]("sprintId", id)),
	}, true
}

// AllEnriched assembles every sprint with its relations, grouping the
// sibling collections once up front.
func (r *SprintRepository) AllEnriched() []*EnrichedSprint {
	tasks := GroupBy(r.db.SprintTasks().FindMany(&collection.Query[*core.SprintTask]{
		OrderBy: &collection.Order{Field: "position"},
	}), func(t *core.SprintTask) string { return t.SprintID })
	participants := GroupBy(r.db.SprintParticipants().ToArray(),
		func(p *core.SprintParticipant) string { return p.SprintID })

	sprints := r.All()
	enriched := make([]*EnrichedSprint, 0, len(sprints))
	for _, sprint := range sprints {
		e := &EnrichedSprint{
			Sprint:       sprint,
			Tasks:        tasks[sprint.ID],
			Participants: participants[sprint.ID],
		}
		if e.Tasks == nil {
			e.Tasks = []*core.SprintTask{}
		}
		if e.Participants == nil {
			e.Participants = []*core.SprintParticipant{}
		}
		enriched = append(enriched, e)
	}
	return enriched
}

// Join adds a user to a sprint and bumps the cached participant count.
// Joining twice returns the existing membership untouched.
func (r *SprintRepository) Join(sprintID, userID string) (*core.SprintParticipant, bool) {
	if !r.db.Sprints().Exists(sprintID) {
		return nil, false
	}
	if existing, ok := r.membership(sprintID, userID); ok {
		return existing, true
	}
	participant, err := createIn(r.db, r.db.SprintParticipants(), &core.SprintParticipant{
		SprintID: sprintID,
		UserID:   userID,
		JoinedAt: r.now().UTC(),
	})
	if err != nil {
		return nil, false
	}
	r.Update(sprintID, func(s *core.Sprint) { s.ParticipantCount++ })
	return participant, true
}

// Leave removes a user from a sprint and decrements the cached count.
// Leaving a sprint the user never joined is a no-op.
func (r *SprintRepository) Leave(sprintID, userID string) bool {
	existing, ok := r.membership(sprintID, userID)
	if !ok {
		return false
	}
	if !deleteIn(r.db, r.db.SprintParticipants(), existing.ID) {
		return false
	}
	r.Update(sprintID, func(s *core.Sprint) {
		if s.ParticipantCount > 0 {
			s.ParticipantCount--
		}
	})
	return true
}

// CompleteTask marks a sprint task done by a user and awards learning
// points through the daily cap. Completing an already-done task changes
// nothing and awards nothing.
func (r *SprintRepository) CompleteTask(taskID, userID string) (*core.SprintTask, bool, error) {
	task, ok := r.db.SprintTasks().FindByID(taskID)
	if !ok {
		return nil, false, nil
	}
	if task.Completed {
		return task, true, nil
	}

	updated, _ := updateIn(r.db, r.db.SprintTasks(), taskID, func(t *core.SprintTask) {
		t.Completed = true
		t.CompletedBy = userID
	})
	if userID != "" {
		if _, err := r.points.Award(userID, core.PointsLearning, ActionSprintTask, sprintTaskPoints); err != nil {
			return nil, false, err
		}
	}
	return updated, true, nil
}

func (r *SprintRepository) membership(sprintID, userID string) (*core.SprintParticipant, bool) {
	return r.db.SprintParticipants().FindFirst(&collection.Query[*core.SprintParticipant]{
		Where: collection.Match(func(p *core.SprintParticipant) bool {
			return p.SprintID == sprintID && p.UserID == userID
		}),
	})
}
