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


// Package mockdb is the embedded mock data layer of the OpenCohort
// platform: an in-memory collection store with snapshot persistence, a
// deterministic seed lifecycle and a synchronous change-notification
// bus. Repositories in the repo package layer domain operations on top.
package mockdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
	"github.com/opencohort/mockdb/storage"
)

// schemaCollection is the uniform view the database holds over its
// typed collections.
type schemaCollection interface {
	storage.CollectionSource
	Len() int
	Clear()
	HydrateRaw(raw []json.RawMessage) error
}

// Seeder populates an empty database with deterministic content,
// foundational collections first. The seed package provides the
// canonical one.
type Seeder func(ctx context.Context, db *Database) error

// Database owns the full schema as a fixed set of named collections and
// drives their lifecycle: seed-or-hydrate on startup, persist, reset
// and clear, plus the event bus observers use to react to mutations.
//
// A Database is a single logical thread of execution. Initialize
// tolerates overlapping calls by memoizing the in-flight work;
// everything else assumes external serialization.
type Database struct {
	adapter storage.Adapter
	seeder  Seeder
	logger  *slog.Logger
	bus     *eventBus

	initOnce sync.Once
	initErr  error

	users              *collection.Collection[*core.User]
	categories         *collection.Collection[*core.Category]
	courses            *collection.Collection[*core.Course]
	lessons            *collection.Collection[*core.Lesson]
	enrollments        *collection.Collection[*core.Enrollment]
	lessonProgress     *collection.Collection[*core.LessonProgress]
	courseTags         *collection.Collection[*core.CourseTag]
	courseViews        *collection.Collection[*core.CourseView]
	posts              *collection.Collection[*core.Post]
	comments           *collection.Collection[*core.Comment]
	votes              *collection.Collection[*core.Vote]
	postTags           *collection.Collection[*core.PostTag]
	bookmarks          *collection.Collection[*core.Bookmark]
	postViews          *collection.Collection[*core.PostView]
	companions         *collection.Collection[*core.Companion]
	companionMatches   *collection.Collection[*core.CompanionMatch]
	sprints            *collection.Collection[*core.Sprint]
	sprintTasks        *collection.Collection[*core.SprintTask]
	sprintParticipants *collection.Collection[*core.SprintParticipant]
	productCategories  *collection.Collection[*core.ProductCategory]
	products           *collection.Collection[*core.Product]
	orders             *collection.Collection[*core.Order]
	tests              *collection.Collection[*core.Test]
	questions          *collection.Collection[*core.Question]
	testSessions       *collection.Collection[*core.TestSession]
	levelProgress      *collection.Collection[*core.LevelProgress]
	pointsProfiles     *collection.Collection[*core.PointsProfile]
	pointTransactions  *collection.Collection[*core.PointTransaction]
	notifications      *collection.Collection[*core.Notification]

	all    []schemaCollection
	byName map[string]schemaCollection
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(db *Database) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// WithSeeder sets the routine run when no usable prior data exists and
// on Reset. Without one, an empty schema is persisted instead.
func WithSeeder(seeder Seeder) Option {
	return func(db *Database) {
		db.seeder = seeder
	}
}

// New constructs a database over the given adapter. Collections are
// created empty; call Initialize to hydrate or seed them.
func New(adapter storage.Adapter, opts ...Option) *Database {
	db := &Database{
		adapter: adapter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	db.bus = newEventBus(db.logger)
	db.buildSchema()
	return db
}

// buildSchema creates every collection, in seed dependency order:
// foundational entities before entities that reference them. The set of
// names is fixed for the process lifetime; Reset recreates contents,
// never the schema.
func (db *Database) buildSchema() {
	db.users = collection.New[*core.User]("users")
	db.categories = collection.New[*core.Category]("categories")
	db.courses = collection.New[*core.Course]("courses")
	db.lessons = collection.New[*core.Lesson]("lessons")
	db.enrollments = collection.New[*core.Enrollment]("enrollments")
	db.lessonProgress = collection.New[*core.LessonProgress]("lessonProgress")
	db.courseTags = collection.New[*core.CourseTag]("courseTags")
	db.courseViews = collection.New[*core.CourseView]("courseViews")
	db.posts = collection.New[*core.Post]("posts")
	db.comments = collection.New[*core.Comment]("comments")
	db.votes = collection.New[*core.Vote]("votes")
	db.postTags = collection.New[*core.PostTag]("postTags")
	db.bookmarks = collection.New[*core.Bookmark]("bookmarks")
	db.postViews = collection.New[*core.PostView]("postViews")
	db.companions = collection.New[*core.Companion]("companions")
	db.companionMatches = collection.New[*core.CompanionMatch]("companionMatches")
	db.sprints = collection.New[*core.Sprint]("sprints")
	db.sprintTasks = collection.New[*core.SprintTask]("sprintTasks")
	db.sprintParticipants = collection.New[*core.SprintParticipant]("sprintParticipants")
	db.productCategories = collection.New[*core.ProductCategory]("productCategories")
	db.products = collection.New[*core.Product]("products")
	db.orders = collection.New[*core.Order]("orders")
	db.tests = collection.New[*core.Test]("tests")
	db.questions = collection.New[*core.Question]("questions")
	db.testSessions = collection.New[*core.TestSession]("testSessions")
	db.levelProgress = collection.New[*core.LevelProgress]("levelProgress")
	db.pointsProfiles = collection.New[*core.PointsProfile]("pointsProfiles")
	db.pointTransactions = collection.New[*core.PointTransaction]("pointTransactions")
	db.notifications = collection.New[*core.Notification]("notifications")

	db.all = []schemaCollection{
		db.users, db.categories, db.courses, db.lessons, db.enrollments,
		db.lessonProgress, db.courseTags, db.courseViews, db.posts,
		db.comments, db.votes, db.postTags, db.bookmarks, db.postViews,
		db.companions, db.companionMatches, db.sprints, db.sprintTasks,
		db.sprintParticipants, db.productCategories, db.products,
		db.orders, db.tests, db.questions, db.testSessions,
		db.levelProgress, db.pointsProfiles, db.pointTransactions,
		db.notifications,
	}
	db.byName = make(map[string]schemaCollection, len(db.all))
	for _, col := range db.all {
		db.byName[col.Name()] = col
	}
}

// Initialize asks the adapter for prior data and either hydrates every
// collection from it or runs the seeder and persists the fresh state.
// It is idempotent: overlapping callers share one in-flight
// initialization instead of racing two hydrations or seeding twice.
func (db *Database) Initialize(ctx context.Context) error {
	db.initOnce.Do(func() {
		db.initErr = db.initialize(ctx)
	})
	return db.initErr
}

func (db *Database) initialize(ctx context.Context) error {
	if err := db.adapter.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize adapter: %w", err)
	}

	has, err := db.adapter.HasData(ctx)
	if err != nil {
		return fmt.Errorf("check prior data: %w", err)
	}

	if has {
		data, err := db.adapter.Load(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if data != nil {
			if err := db.hydrate(data); err != nil {
				return err
			}
			db.bus.emit(Event{Action: ActionHydrated})
			return nil
		}
		// Blob existed but was unusable (version skew or parse
		// failure); fall through to reseed.
		db.logger.Warn("prior data unusable, reseeding")
	}

	if err := db.seed(ctx); err != nil {
		return err
	}
	if err := db.Persist(ctx); err != nil {
		return fmt.Errorf("persist seeded state: %w", err)
	}
	db.bus.emit(Event{Action: ActionSeeded})
	return nil
}

// hydrate bulk-loads every collection from raw snapshot data, trusting
// the shapes. Collections absent from the snapshot stay empty; unknown
// collection names are logged and skipped.
func (db *Database) hydrate(data map[string][]json.RawMessage) error {
	for _, col := range db.all {
		col.Clear()
	}
	for name, raw := range data {
		col, ok := db.byName[name]
		if !ok {
			db.logger.Warn("snapshot contains unknown collection", "collection", name)
			continue
		}
		if err := col.HydrateRaw(raw); err != nil {
			return fmt.Errorf("hydrate %s: %w", name, err)
		}
	}
	return nil
}

func (db *Database) seed(ctx context.Context) error {
	if db.seeder == nil {
		db.logger.Warn("no seeder configured, starting empty")
		return nil
	}
	if err := db.seeder(ctx, db); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

// Persist writes the whole schema through the adapter as one snapshot.
func (db *Database) Persist(ctx context.Context) error {
	sources := make([]storage.CollectionSource, len(db.all))
	for i, col := range db.all {
		sources[i] = col
	}
	return db.adapter.Persist(ctx, sources)
}

// Reset wipes every collection, reseeds and persists.
func (db *Database) Reset(ctx context.Context) error {
	for _, col := range db.all {
		col.Clear()
	}
	if err := db.seed(ctx); err != nil {
		return err
	}
	if err := db.Persist(ctx); err != nil {
		return err
	}
	db.bus.emit(Event{Action: ActionReset})
	return nil
}

// Clear wipes every collection and deletes the persisted snapshot. No
// reseed happens.
func (db *Database) Clear(ctx context.Context) error {
	for _, col := range db.all {
		col.Clear()
	}
	if err := db.adapter.Clear(ctx); err != nil {
		return err
	}
	db.bus.emit(Event{Action: ActionCleared})
	return nil
}

// Subscribe registers a listener for mutation events and returns its
// unsubscribe function. Delivery is synchronous, in subscription order,
// and isolated per listener.
func (db *Database) Subscribe(fn Listener) func() {
	return db.bus.subscribe(fn)
}

// Emit publishes an event to all subscribers. Mutation paths call it
// after the mutation completes.
func (db *Database) Emit(evt Event) {
	db.bus.emit(evt)
}

// Stats returns the record count per collection name.
func (db *Database) Stats() map[string]int {
	stats := make(map[string]int, len(db.all))
	for _, col := range db.all {
		stats[col.Name()] = col.Len()
	}
	return stats
}

// Export builds the current snapshot and returns its JSON blob without
// going through the adapter.
func (db *Database) Export() ([]byte, error) {
	sources := make([]storage.CollectionSource, len(db.all))
	for i, col := range db.all {
		sources[i] = col
	}
	snap, err := storage.BuildSnapshot(sources)
	if err != nil {
		return nil, err
	}
	return storage.EncodeSnapshot(snap)
}

// Close releases the adapter if it holds resources.
func (db *Database) Close() error {
	if closer, ok := db.adapter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Collection accessors. Repositories reach sibling collections through
// these; no other internal structure is part of the upward contract.

func (db *Database) Users() *collection.Collection[*core.User]           { return db.users }
func (db *Database) Categories() *collection.Collection[*core.Category] { return db.categories }
func (db *Database) Courses() *collection.Collection[*core.Course]      { return db.courses }
func (db *Database) Lessons() *collection.Collection[*core.Lesson]      { return db.lessons }
func (db *Database) Enrollments() *collection.Collection[*core.Enrollment] {
	return db.enrollments
}
func (db *Database) LessonProgress() *collection.Collection[*core.LessonProgress] {
	return db.lessonProgress
}
func (db *Database) CourseTags() *collection.Collection[*core.CourseTag]   { return db.courseTags }
func (db *Database) CourseViews() *collection.Collection[*core.CourseView] { return db.courseViews }
func (db *Database) Posts() *collection.Collection[*core.Post]             { return db.posts }
func (db *Database) Comments() *collection.Collection[*core.Comment]       { return db.comments }
func (db *Database) Votes() *collection.Collection[*core.Vote]             { return db.votes }
func (db *Database) PostTags() *collection.Collection[*core.PostTag]       { return db.postTags }
func (db *Database) Bookmarks() *collection.Collection[*core.Bookmark]     { return db.bookmarks }
func (db *Database) PostViews() *collection.Collection[*core.PostView]     { return db.postViews }
func (db *Database) Companions() *collection.Collection[*core.Companion]   { return db.companions }
func (db *Database) CompanionMatches() *collection.Collection[*core.CompanionMatch] {
	return db.companionMatches
}
func (db *Database) Sprints() *collection.Collection[*core.Sprint]         { return db.sprints }
func (db *Database) SprintTasks() *collection.Collection[*core.SprintTask] { return db.sprintTasks }
func (db *Database) SprintParticipants() *collection.Collection[*core.SprintParticipant] {
	return db.sprintParticipants
}
func (db *Database) ProductCategories() *collection.Collection[*core.ProductCategory] {
	return db.productCategories
}
func (db *Database) Products() *collection.Collection[*core.Product]   { return db.products }
func (db *Database) Orders() *collection.Collection[*core.Order]       { return db.orders }
func (db *Database) Tests() *collection.Collection[*core.Test]         { return db.tests }
func (db *Database) Questions() *collection.Collection[*core.Question] { return db.questions }
func (db *Database) TestSessions() *collection.Collection[*core.TestSession] {
	return db.testSessions
}
func (db *Database) LevelProgress() *collection.Collection[*core.LevelProgress] {
	return db.levelProgress
}
func (db *Database) PointsProfiles() *collection.Collection[*core.PointsProfile] {
	return db.pointsProfiles
}
func (db *Database) PointTransactions() *collection.Collection[*core.PointTransaction] {
	return db.pointTransactions
}
func (db *Database) Notifications() *collection.Collection[*core.Notification] {
	return db.notifications
}

// Process-wide default instance. The engine itself is dependency
// injected; this thin accessor exists for the UI layer, which expects a
// shared handle.

var (
	defaultMu sync.Mutex
	defaultDB *Database
)

// SetDefault installs the process-wide database handle.
func SetDefault(db *Database) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDB = db
}

// Default returns the process-wide database handle, or nil if none has
// been installed.
func Default() *Database {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultDB
}

// ResetDefault clears the process-wide handle. Test-only escape hatch.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultDB = nil
}
