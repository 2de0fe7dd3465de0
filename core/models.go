package core

import "time"

// VoteType identifies the direction of a vote.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// TargetType identifies what a vote points at.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// PointCategory groups point awards for daily-cap accounting.
type PointCategory string

const (
	PointsLearning  PointCategory = "learning"
	PointsCommunity PointCategory = "community"
)

// QuestionType identifies how a test question is graded.
type QuestionType string

const (
	QuestionChoice    QuestionType = "choice"
	QuestionTrueFalse QuestionType = "truefalse"
	QuestionFreeText  QuestionType = "freetext"
)

// SprintStatus is the lifecycle state of a project sprint.
type SprintStatus string

const (
	SprintUpcoming SprintStatus = "upcoming"
	SprintActive   SprintStatus = "active"
	SprintDone     SprintStatus = "done"
)

// SessionStatus is the lifecycle state of a test session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// User is a platform member. Instructors and mentees are both users;
// the role field tells them apart.
type User struct {
	Meta
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
	Level     int    `json:"level"`
}

// Category classifies courses.
type Category struct {
	Meta
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Course is a published unit of learning content. Denormalized counters
// are maintained incrementally by the repository layer.
type Course struct {
	Meta
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	CategoryID      string `json:"categoryId"`
	InstructorID    string `json:"instructorId"`
	Level           int    `json:"level"`
	Published       bool   `json:"published"`
	ViewCount       int    `json:"viewCount"`
	EnrollmentCount int    `json:"enrollmentCount"`
}

// Lesson is one ordered unit within a course.
type Lesson struct {
	Meta
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Duration int    `json:"duration"` // minutes
	Content  string `json:"content"`
}

// Enrollment links a user to a course they are taking.
type Enrollment struct {
	Meta
	CourseID    string    `json:"courseId"`
	UserID      string    `json:"userId"`
	Progress    float64   `json:"progress"` // 0..1
	CompletedAt time.Time `json:"completedAt"`
}

// LessonProgress marks a single lesson within an enrollment as done.
type LessonProgress struct {
	Meta
	EnrollmentID string    `json:"enrollmentId"`
	LessonID     string    `json:"lessonId"`
	Completed    bool      `json:"completed"`
	CompletedAt  time.Time `json:"completedAt"`
}

// CourseTag is a tag-per-row junction for courses.
type CourseTag struct {
	Key
	CourseID string `json:"courseId"`
	Tag      string `json:"tag"`
}

// CourseView records a single course page view.
type CourseView struct {
	Key
	CourseID string    `json:"courseId"`
	UserID   string    `json:"userId"`
	ViewedAt time.Time `json:"viewedAt"`
}

// Post is a forum thread starter. Vote counters and score are cached
// here and adjusted incrementally, never recomputed by full scan.
type Post struct {
	Meta
	AuthorID     string `json:"authorId"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
	Score        int    `json:"score"`
	ViewCount    int    `json:"viewCount"`
	CommentCount int    `json:"commentCount"`
}

// Comment is a reply on a post.
type Comment struct {
	Meta
	PostID    string `json:"postId"`
	AuthorID  string `json:"authorId"`
	Body      string `json:"body"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Score     int    `json:"score"`
}

// Vote is one user's vote on one target. A user holds at most one vote
// per target; the repository enforces toggle and flip semantics.
type Vote struct {
	Meta
	UserID     string     `json:"userId"`
	TargetType TargetType `json:"targetType"`
	TargetID   string     `json:"targetId"`
	Type       VoteType   `json:"type"`
}

// PostTag is a tag-per-row junction for posts.
type PostTag struct {
	Key
	PostID string `json:"postId"`
	Tag    string `json:"tag"`
}

// Bookmark marks a post saved by a user.
type Bookmark struct {
	Meta
	UserID string `json:"userId"`
	PostID string `json:"postId"`
}

// PostView records a single post view.
type PostView struct {
	Key
	PostID   string    `json:"postId"`
	UserID   string    `json:"userId"`
	ViewedAt time.Time `json:"viewedAt"`
}

// Companion is a mentor persona available for matching.
type Companion struct {
	Meta
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Specialty  string  `json:"specialty"`
	Bio        string  `json:"bio"`
	MatchCount int     `json:"matchCount"`
	Rating     float64 `json:"rating"`
}

// CompanionMatch links a user to a companion they were matched with.
type CompanionMatch struct {
	Meta
	CompanionID string `json:"companionId"`
	UserID      string `json:"userId"`
	Status      string `json:"status"`
}

// Sprint is a time-boxed group project.
type Sprint struct {
	Meta
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Status           SprintStatus `json:"status"`
	StartsAt         time.Time    `json:"startsAt"`
	EndsAt           time.Time    `json:"endsAt"`
	ParticipantCount int          `json:"participantCount"`
}

// SprintTask is one ordered task within a sprint.
type SprintTask struct {
	Meta
	SprintID    string `json:"sprintId"`
	Title       string `json:"title"`
	Position    int    `json:"position"`
	Completed   bool   `json:"completed"`
	CompletedBy string `json:"completedBy"`
}

// SprintParticipant is a membership row for a sprint.
type SprintParticipant struct {
	Key
	SprintID string    `json:"sprintId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ProductCategory classifies shop products.
type ProductCategory struct {
	Meta
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a shop item.
type Product struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId"`
	PriceCents  int    `json:"priceCents"`
	Stock       int    `json:"stock"`
	Featured    bool   `json:"featured"`
}

// Order is a completed purchase of one product.
type Order struct {
	Meta
	UserID     string `json:"userId"`
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	TotalCents int    `json:"totalCents"`
	Status     string `json:"status"`
}

// Test is a leveled quiz. PassScore is the percentage of the maximum
// score required to pass.
type Test struct {
	Meta
	Title     string `json:"title"`
	Level     int    `json:"level"`
	PassScore int    `json:"passScore"`
}

// Question belongs to a test. Objective questions carry the exact
// expected answer; free-text questions carry grading keywords.
type Question struct {
	Meta
	TestID   string       `json:"testId"`
	Prompt   string       `json:"prompt"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Answer   string       `json:"answer"`
	Keywords []string     `json:"keywords,omitempty"`
	Points   int          `json:"points"`
	Position int          `json:"position"`
}

// TestSession is one timed attempt at a test. Expiry is fixed at
// creation from the test's level.
type TestSession struct {
	Meta
	TestID      string        `json:"testId"`
	UserID      string        `json:"userId"`
	StartedAt   time.Time     `json:"startedAt"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	CompletedAt time.Time     `json:"completedAt"`
	Status      SessionStatus `json:"status"`
	Score       int           `json:"score"`
	MaxScore    int           `json:"maxScore"`
	Passed      bool          `json:"passed"`
}

// LevelProgress is a per-user ratchet: the highest test level passed
// only ever moves forward.
type LevelProgress struct {
	Meta
	UserID             string `json:"userId"`
	HighestLevelPassed int    `json:"highestLevelPassed"`
}

// PointsProfile is a user's running point totals with per-UTC-day
// counters. DailyDate holds the day the counters belong to; counters
// reset lazily when a new day is observed.
type PointsProfile struct {
	Meta
	UserID         string         `json:"userId"`
	Total          int            `json:"total"`
	DailyLearning  int            `json:"dailyLearning"`
	DailyCommunity int            `json:"dailyCommunity"`
	DailyByAction  map[string]int `json:"dailyByAction"`
	DailyDate      string         `json:"dailyDate"` // YYYY-MM-DD, UTC
}

// PointTransaction is the audit row written for every award attempt.
// Capped marks awards that were clipped by a daily cap.
type PointTransaction struct {
	Meta
	UserID    string        `json:"userId"`
	Category  PointCategory `json:"category"`
	Action    string        `json:"action"`
	Requested int           `json:"requested"`
	Awarded   int           `json:"awarded"`
	Capped    bool          `json:"capped"`
}

// Notification is a message shown to a user.
type Notification struct {
	Meta
	UserID  string `json:"userId"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Read    bool   `json:"read"`
}
