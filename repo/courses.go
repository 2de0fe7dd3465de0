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

// EnrichedCourse is a course assembled with its relations: ordered
// lessons, category, instructor and tag list. Dangling foreign keys
// leave the related field nil or empty; related data being absent is
// not an error.
type EnrichedCourse struct {
	*core.Course
	Category   *core.Category `json:"category,omitempty"`
	Instructor *core.User     `json:"instructor,omitempty"`
	Lessons    []*core.Lesson `json:"lessons"`
	Tags       []string       `json:"tags"`
}

// CourseRepository owns courses and their enrollment and progress
// bookkeeping.
type CourseRepository struct {
	Repository[*core.Course]
	now func() time.Time
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db *mockdb.Database) *CourseRepository {
	return &CourseRepository{
		Repository: newRepository(db, db.Courses()),
		now:        time.Now,
	}
}

// Published returns published courses in insertion order.
func (r *CourseRepository) Published() []*core.Course {
	return r.Find(whereField[*core.Course]("published", true))
}

// BySlug looks up a course by its URL slug.
func (r *CourseRepository) BySlug(slug string) (*core.Course, bool) {
	return r.First(whereField[*core.Course]("slug", slug))
}

// ByCategory returns courses in a category.
func (r *CourseRepository) ByCategory(categoryID string) []*core.Course {
	return r.Find(whereField[*core.Course]("categoryId", categoryID))
}

// Enriched assembles one course with its relations.
func (r *CourseRepository) Enriched(id string) (*EnrichedCourse, bool) {
	course, ok := r.Get(id)
	if !ok {
		return nil, false
	}

	enriched := &EnrichedCourse{
		Course: course,
		Lessons: r.db.Lessons().FindMany(&collection.Query[*core.Lesson]{
			Where:   collection.FieldEquals[*core.Lesson](map[string]any{"courseId": id}),
			OrderBy: &collection.Order{Field: "position"},
		}),
		Tags: courseTagsOf(r.db.CourseTags().FindMany(whereField[*core.CourseTag]("courseId", id))),
	}
	if category, ok := r.db.Categories().FindByID(course.CategoryID); ok {
		enriched.Category = category
	}
	if instructor, ok := r.db.Users().FindByID(course.InstructorID); ok {
		enriched.Instructor = instructor
	}
	return enriched, true
}

// AllEnriched assembles every course with its relations. Sibling
// collections are indexed by foreign key once up front, so the join is
// O(n+m) rather than a per-course scan.
func (r *CourseRepository) AllEnriched() []*EnrichedCourse {
	categories := IndexBy(r.db.Categories().ToArray(), func(c *core.Category) string { return c.ID })
	users := IndexBy(r.db.Users().ToArray(), func(u *core.User) string { return u.ID })
	lessons := GroupBy(r.db.Lessons().FindMany(&collection.Query[*core.Lesson]{
		OrderBy: &collection.Order{Field: "position"},
	}), func(l *core.Lesson) string { return l.CourseID })
	tags := GroupBy(r.db.CourseTags().ToArray(), func(t *core.CourseTag) string { return t.CourseID })

	courses := r.All()
	enriched := make([]*EnrichedCourse, 0, len(courses))
	for _, course := range courses {
		e := &EnrichedCourse{
			Course:  course,
			Lessons: lessons[course.ID],
			Tags:    courseTagsOf(tags[course.ID]),
		}
		if e.Lessons == nil {
			e.Lessons = []*core.Lesson{}
		}
		if category, ok := categories[course.CategoryID]; ok {
			e.Category = category
		}
		if instructor, ok := users[course.InstructorID]; ok {
			e.Instructor = instructor
		}
		enriched = append(enriched, e)
	}
	return enriched
}

// TrackView records a view row and bumps the course's cached counter.
func (r *CourseRepository) TrackView(courseID, userID string) (*core.Course, bool) {
	if !r.db.Courses().Exists(courseID) {
		return nil, false
	}
	if _, err := createIn(r.db, r.db.CourseViews(), &core.CourseView{
		CourseID: courseID,
		UserID:   userID,
		ViewedAt: r.now().UTC(),
	}); err != nil {
		return nil, false
	}
	return r.Update(courseID, func(c *core.Course) { c.ViewCount++ })
}

// Enroll adds a user to a course. Enrolling twice returns the existing
// enrollment without touching the cached count.
func (r *CourseRepository) Enroll(courseID, userID string) (*core.Enrollment, bool) {
	if !r.db.Courses().Exists(courseID) {
		return nil, false
	}
	if existing, ok := r.enrollment(courseID, userID); ok {
		return existing, true
	}
	enrollment, err := createIn(r.db, r.db.Enrollments(), &core.Enrollment{
		CourseID: courseID,
		UserID:   userID,
	})
	if err != nil {
		return nil, false
	}
	r.Update(courseID, func(c *core.Course) { c.EnrollmentCount++ })
	return enrollment, true
}

// EnrollmentsForUser returns a user's enrollments in insertion order.
func (r *CourseRepository) EnrollmentsForUser(userID string) []*core.Enrollment {
	return r.db.Enrollments().FindMany(whereField[*core.Enrollment]("userId", userID))
}

// CompleteLesson marks a lesson done within an enrollment and
// recomputes the enrollment's progress ratio. Completing the same
// lesson again is a no-op.
func (r *CourseRepository) CompleteLesson(enrollmentID, lessonID string) (*core.Enrollment, bool) {
	enrollment, ok := r.db.Enrollments().FindByID(enrollmentID)
	if !ok {
		return nil, false
	}
	if !r.db.Lessons().Exists(lessonID) {
		return nil, false
	}

	existing, has := r.db.LessonProgress().FindFirst(&collection.Query[*core.LessonProgress]{
		Where: collection.Match(func(p *core.LessonProgress) bool {
			return p.EnrollmentID == enrollmentID && p.LessonID == lessonID
		}),
	})
	if has && existing.Completed {
		return enrollment, true
	}

	now := r.now().UTC()
	if has {
		updateIn(r.db, r.db.LessonProgress(), existing.ID, func(p *core.LessonProgress) {
			p.Completed = true
			p.CompletedAt = now
		})
	} else {
		if _, err := createIn(r.db, r.db.LessonProgress(), &core.LessonProgress{
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
			Completed:    true,
			CompletedAt:  now,
		}); err != nil {
			return nil, false
		}
	}

	total := len(r.db.Lessons().FindMany(whereField[*core.Lesson]("courseId", enrollment.CourseID)))
	done := len(r.db.LessonProgress().FindMany(&collection.Query[*core.LessonProgress]{
		Where: collection.Match(func(p *core.LessonProgress) bool {
			return p.EnrollmentID == enrollmentID && p.Completed
		}),
	}))

	return updateIn(r.db, r.db.Enrollments(), enrollmentID, func(e *core.Enrollment) {
		if total > 0 {
			e.Progress = float64(done) / float64(total)
		}
		if total > 0 && done >= total && e.CompletedAt.IsZero() {
			e.CompletedAt = now
		}
	})
}

func (r *CourseRepository) enrollment(courseID, userID string) (*core.Enrollment, bool) {
	return r.db.Enrollments().FindFirst(&collection.Query[*core.Enrollment]{
		Where: collection.Match(func(e *core.Enrollment) bool {
			return e.CourseID == courseID && e.UserID == userID
		}),
	})
}

func courseTagsOf(rows []*core.CourseTag) []string {
	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.Tag)
	}
	return tags
}
