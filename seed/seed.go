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


// Package seed provides the canonical deterministic dataset. Ids are
// content hashes and timestamps are fixed, so reseeding a wiped store
// always reproduces byte-identical records.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/core"
)

// baseTime anchors every seeded timestamp.
var baseTime = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return baseTime.Add(time.Duration(hours) * time.Hour) }

func id(parts ...string) string {
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "/" + p
	}
	return core.DeterministicID(joined)
}

func meta(hours int, parts ...string) core.Meta {
	t := at(hours)
	return core.Meta{ID: id(parts...), CreatedAt: t, UpdatedAt: t}
}

// Database populates an empty database, foundational collections first
// so every foreign key points at a row that already exists.
func Database(ctx context.Context, db *mockdb.Database) error {
	steps := []struct {
		name string
		fn   func(*mockdb.Database) error
	}{
		{"users", users},
		{"categories", categories},
		{"courses", courses},
		{"lessons", lessons},
		{"community", community},
		{"companions", companions},
		{"sprints", sprints},
		{"shop", shop},
		{"tests", tests},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.fn(db); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	return nil
}

func users(db *mockdb.Database) error {
	_, err := db.Users().CreateMany([]*core.User{
		{Meta: meta(0, "user", "mira"), Name: "Mira Holt", Email: "mira@opencohort.dev", Role: "instructor", Level: 5, Bio: "Systems programming mentor."},
		{Meta: meta(0, "user", "dario"), Name: "Dario Ekene", Email: "dario@opencohort.dev", Role: "instructor", Level: 4, Bio: "Frontend and design systems."},
		{Meta: meta(1, "user", "lena"), Name: "Lena Petrov", Email: "lena@opencohort.dev", Role: "member", Level: 2},
		{Meta: meta(1, "user", "sam"), Name: "Sam Okafor", Email: "sam@opencohort.dev", Role: "member", Level: 1},
		{Meta: meta(2, "user", "yuki"), Name: "Yuki Tanaka", Email: "yuki@opencohort.dev", Role: "member", Level: 3},
	})
	return err
}

func categories(db *mockdb.Database) error {
	_, err := db.Categories().CreateMany([]*core.Category{
		{Meta: meta(0, "category", "backend"), Name: "Backend", Slug: "backend", Description: "Servers, data and APIs."},
		{Meta: meta(0, "category", "frontend"), Name: "Frontend", Slug: "frontend", Description: "Interfaces and interaction."},
		{Meta: meta(0, "category", "career"), Name: "Career", Slug: "career", Description: "Getting hired and growing."},
	})
	return err
}

func courses(db *mockdb.Database) error {
	if _, err := db.Courses().CreateMany([]*core.Course{
		{
			Meta: meta(3, "course", "go-fundamentals"), Title: "Go Fundamentals",
			Slug: "go-fundamentals", Description: "Types, interfaces and the standard library.",
			CategoryID: id("category", "backend"), InstructorID: id("user", "mira"),
			Level: 1, Published: true,
		},
		{
			Meta: meta(4, "course", "concurrent-go"), Title: "Concurrent Go",
			Slug: "concurrent-go", Description: "Goroutines, channels and sync.",
			CategoryID: id("category", "backend"), InstructorID: id("user", "mira"),
			Level: 3, Published: true,
		},
		{
			Meta: meta(5, "course", "css-layouts"), Title: "Modern CSS Layouts",
			Slug: "css-layouts", Description: "Grid, flexbox and container queries.",
			CategoryID: id("category", "frontend"), InstructorID: id("user", "dario"),
			Level: 1, Published: false,
		},
	}); err != nil {
		return err
	}
	_, err := db.CourseTags().CreateMany([]*core.CourseTag{
		{Key: core.Key{ID: id("coursetag", "go-fundamentals", "go")}, CourseID: id("course", "go-fundamentals"), Tag: "go"},
		{Key: core.Key{ID: id("coursetag", "go-fundamentals", "beginner")}, CourseID: id("course", "go-fundamentals"), Tag: "beginner"},
		{Key: core.Key{ID: id("coursetag", "concurrent-go", "go")}, CourseID: id("course", "concurrent-go"), Tag: "go"},
		{Key: core.Key{ID: id("coursetag", "concurrent-go", "concurrency")}, CourseID: id("course", "concurrent-go"), Tag: "concurrency"},
	})
	return err
}

func lessons(db *mockdb.Database) error {
	_, err := db.Lessons().CreateMany([]*core.Lesson{
		{Meta: meta(3, "lesson", "go-fundamentals", "1"), CourseID: id("course", "go-fundamentals"), Title: "Values and Types", Position: 1, Duration: 25},
		{Meta: meta(3, "lesson", "go-fundamentals", "2"), CourseID: id("course", "go-fundamentals"), Title: "Interfaces", Position: 2, Duration: 35},
		{Meta: meta(3, "lesson", "go-fundamentals", "3"), CourseID: id("course", "go-fundamentals"), Title: "Errors", Position: 3, Duration: 30},
		{Meta: meta(4, "lesson", "concurrent-go", "1"), CourseID: id("course", "concurrent-go"), Title: "Goroutines", Position: 1, Duration: 40},
		{Meta: meta(4, "lesson", "concurrent-go", "2"), CourseID: id("course", "concurrent-go"), Title: "Channels", Position: 2, Duration: 45},
	})
	return err
}

func community(db *mockdb.Database) error {
	if _, err := db.Posts().CreateMany([]*core.Post{
		{
			Meta: meta(6, "post", "first-job"), AuthorID: id("user", "lena"),
			Title: "How I landed my first backend job", Body: "Long write-up of the interview loop.",
			Upvotes: 2, Score: 2, CommentCount: 1,
		},
		{
			Meta: meta(7, "post", "channel-pitfalls"), AuthorID: id("user", "yuki"),
			Title: "Channel pitfalls that bit me", Body: "Deadlocks, leaks and nil channels.",
			Upvotes: 1, Score: 1,
		},
	}); err != nil {
		return err
	}
	if _, err := db.Comments().CreateMany([]*core.Comment{
		{
			Meta: meta(8, "comment", "first-job", "1"), PostID: id("post", "first-job"),
			AuthorID: id("user", "sam"), Body: "Congrats, this is really helpful.", Upvotes: 1, Score: 1,
		},
	}); err != nil {
		return err
	}
	if _, err := db.Votes().CreateMany([]*core.Vote{
		{Meta: meta(8, "vote", "first-job", "sam"), UserID: id("user", "sam"), TargetType: core.TargetPost, TargetID: id("post", "first-job"), Type: core.VoteUp},
		{Meta: meta(8, "vote", "first-job", "yuki"), UserID: id("user", "yuki"), TargetType: core.TargetPost, TargetID: id("post", "first-job"), Type: core.VoteUp},
		{Meta: meta(9, "vote", "channel-pitfalls", "lena"), UserID: id("user", "lena"), TargetType: core.TargetPost, TargetID: id("post", "channel-pitfalls"), Type: core.VoteUp},
		{Meta: meta(9, "vote", "comment-first-job", "lena"), UserID: id("user", "lena"), TargetType: core.TargetComment, TargetID: id("comment", "first-job", "1"), Type: core.VoteUp},
	}); err != nil {
		return err
	}
	_, err := db.PostTags().CreateMany([]*core.PostTag{
		{Key: core.Key{ID: id("posttag", "first-job", "career")}, PostID: id("post", "first-job"), Tag: "career"},
		{Key: core.Key{ID: id("posttag", "channel-pitfalls", "go")}, PostID: id("post", "channel-pitfalls"), Tag: "go"},
	})
	return err
}

func companions(db *mockdb.Database) error {
	_, err := db.Companions().CreateMany([]*core.Companion{
		{Meta: meta(2, "companion", "haru"), Name: "Haru", Type: "nunu", Specialty: "accountability", Bio: "Gentle daily check-ins.", MatchCount: 42, Rating: 4.8},
		{Meta: meta(2, "companion", "pip"), Name: "Pip", Type: "nunu", Specialty: "motivation", Bio: "High-energy streak keeper.", MatchCount: 31, Rating: 4.5},
		{Meta: meta(2, "companion", "sage"), Name: "Sage", Type: "nunu", Specialty: "study-planning", Bio: "Calm weekly planning.", MatchCount: 17, Rating: 4.9},
		{Meta: meta(2, "companion", "rex"), Name: "Rex", Type: "coach", Specialty: "interview-prep", Bio: "Mock interviews on demand.", MatchCount: 55, Rating: 4.2},
	})
	return err
}

func sprints(db *mockdb.Database) error {
	if _, err := db.Sprints().CreateMany([]*core.Sprint{
		{
			Meta: meta(10, "sprint", "cli-tool"), Title: "Build a CLI tool",
			Description: "Ship a small command-line utility in a week.",
			Status:      core.SprintActive, StartsAt: at(10), EndsAt: at(10 + 7*24),
			ParticipantCount: 2,
		},
		{
			Meta: meta(11, "sprint", "portfolio"), Title: "Portfolio polish",
			Description: "Refresh your public work.", Status: core.SprintUpcoming,
			StartsAt: at(11 + 7*24), EndsAt: at(11 + 14*24),
		},
	}); err != nil {
		return err
	}
	if _, err := db.SprintTasks().CreateMany([]*core.SprintTask{
		{Meta: meta(10, "sprinttask", "cli-tool", "1"), SprintID: id("sprint", "cli-tool"), Title: "Pick a problem", Position: 1},
		{Meta: meta(10, "sprinttask", "cli-tool", "2"), SprintID: id("sprint", "cli-tool"), Title: "Wire argument parsing", Position: 2},
		{Meta: meta(10, "sprinttask", "cli-tool", "3"), SprintID: id("sprint", "cli-tool"), Title: "Write a README", Position: 3},
	}); err != nil {
		return err
	}
	_, err := db.SprintParticipants().CreateMany([]*core.SprintParticipant{
		{Key: core.Key{ID: id("sprintmember", "cli-tool", "lena")}, SprintID: id("sprint", "cli-tool"), UserID: id("user", "lena"), JoinedAt: at(10)},
		{Key: core.Key{ID: id("sprintmember", "cli-tool", "sam")}, SprintID: id("sprint", "cli-tool"), UserID: id("user", "sam"), JoinedAt: at(11)},
	})
	return err
}

func shop(db *mockdb.Database) error {
	if _, err := db.ProductCategories().CreateMany([]*core.ProductCategory{
		{Meta: meta(0, "productcategory", "apparel"), Name: "Apparel", Slug: "apparel"},
		{Meta: meta(0, "productcategory", "digital"), Name: "Digital Goods", Slug: "digital"},
	}); err != nil {
		return err
	}
	_, err := db.Products().CreateMany([]*core.Product{
		{
			Meta: meta(12, "product", "hoodie"), Title: "Cohort Hoodie",
			Description: "Heavyweight, embroidered logo.", CategoryID: id("productcategory", "apparel"),
			PriceCents: 5400, Stock: 25, Featured: true,
		},
		{
			Meta: meta(12, "product", "sticker-pack"), Title: "Sticker Pack",
			Description: "Six die-cut stickers.", CategoryID: id("productcategory", "apparel"),
			PriceCents: 800, Stock: 200,
		},
		{
			Meta: meta(13, "product", "interview-guide"), Title: "Interview Guide",
			Description: "120-page PDF with drills.", CategoryID: id("productcategory", "digital"),
			PriceCents: 1900, Stock: 9999, Featured: true,
		},
	})
	return err
}

func tests(db *mockdb.Database) error {
	if _, err := db.Tests().CreateMany([]*core.Test{
		{Meta: meta(14, "test", "go-basics"), Title: "Go Basics Check", Level: 1, PassScore: 60},
		{Meta: meta(14, "test", "concurrency"), Title: "Concurrency Check", Level: 3, PassScore: 70},
	}); err != nil {
		return err
	}
	_, err := db.Questions().CreateMany([]*core.Question{
		{
			Meta: meta(14, "question", "go-basics", "1"), TestID: id("test", "go-basics"),
			Prompt: "Which keyword declares a variable with inferred type?",
			Type:   core.QuestionChoice, Options: []string{"var", ":=", "let", "auto"},
			Answer: ":=", Points: 10, Position: 1,
		},
		{
			Meta: meta(14, "question", "go-basics", "2"), TestID: id("test", "go-basics"),
			Prompt: "A nil map can be written to.",
			Type:   core.QuestionTrueFalse, Answer: "false", Points: 10, Position: 2,
		},
		{
			Meta: meta(14, "question", "go-basics", "3"), TestID: id("test", "go-basics"),
			Prompt: "Explain what an interface value holds.",
			Type:   core.QuestionFreeText, Keywords: []string{"type", "value", "dynamic", "method"},
			Points: 20, Position: 3,
		},
		{
			Meta: meta(15, "question", "concurrency", "1"), TestID: id("test", "concurrency"),
			Prompt: "Sending on a closed channel panics.",
			Type:   core.QuestionTrueFalse, Answer: "true", Points: 10, Position: 1,
		},
		{
			Meta: meta(15, "question", "concurrency", "2"), TestID: id("test", "concurrency"),
			Prompt: "Describe when you would pick a mutex over a channel.",
			Type:   core.QuestionFreeText, Keywords: []string{"state", "shared", "ownership", "simple"},
			Points: 20, Position: 2,
		},
	})
	return err
}
