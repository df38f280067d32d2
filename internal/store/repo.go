package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEvent is returned when an answer event ID was already recorded.
	ErrDuplicateEvent = errors.New("duplicate answer event")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LearnerRecord is the persisted progress of one learner.
type LearnerRecord struct {
	LearnerID             string     `db:"learner_id"`
	XP                    int        `db:"xp"`
	Streak                int        `db:"streak"`
	LongestStreak         int        `db:"longest_streak"`
	LastActive            *time.Time `db:"last_active"`
	TotalAnswered         int        `db:"total_answered"`
	TotalCorrect          int        `db:"total_correct"`
	TotalQuizzesCompleted int        `db:"total_quizzes_completed"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// ReviewRecord is the persisted scheduling state of one (learner, item) pair.
type ReviewRecord struct {
	LearnerID    string     `db:"learner_id"`
	ItemID       string     `db:"item_id"`
	QuizID       string     `db:"quiz_id"`
	Topic        string     `db:"topic"`
	Difficulty   string     `db:"difficulty"`
	Attempts     int        `db:"attempts"`
	Correct      bool       `db:"correct"`
	HintsUsed    int        `db:"hints_used"`
	AnsweredAt   *time.Time `db:"answered_at"`
	EaseFactor   float64    `db:"ease_factor"`
	IntervalDays int        `db:"interval_days"`
	NextReview   *time.Time `db:"next_review"`
	Repetitions  int        `db:"repetitions"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// QuizRecord is a learner's quiz. Items join a quiz through
// ReviewRecord.QuizID; the quiz row takes its topic and difficulty from
// the first item saved with that quiz ID.
type QuizRecord struct {
	LearnerID   string     `db:"learner_id"`
	QuizID      string     `db:"quiz_id"`
	Topic       string     `db:"topic"`
	Difficulty  string     `db:"difficulty"`
	Completed   bool       `db:"completed"`
	Score       *float64   `db:"score"` // percent, set on completion
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// AnswerEventRecord is one entry of the answer log.
type AnswerEventRecord struct {
	ID          int       `db:"id"`
	Sequence    int64     `db:"sequence"`
	Timestamp   time.Time `db:"timestamp"`
	EventID     string    `db:"event_id"`
	LearnerID   string    `db:"learner_id"`
	ItemID      string    `db:"item_id"`
	Topic       string    `db:"topic"`
	Correct     bool      `db:"correct"`
	Score       float64   `db:"score"`
	Quality     int       `db:"quality"`
	HintsUsed   int       `db:"hints_used"`
	Difficulty  string    `db:"difficulty"`
	XPEarned    int       `db:"xp_earned"`
	StreakAfter int       `db:"streak_after"`
}

// AnswerWrite bundles everything one answer submission persists.
type AnswerWrite struct {
	Review  *ReviewRecord
	Learner *LearnerRecord
	Event   *AnswerEventRecord
}

// LeaderboardOrder selects the ranking column for TopLearners.
type LeaderboardOrder string

const (
	OrderByXP            LeaderboardOrder = "xp"
	OrderByLongestStreak LeaderboardOrder = "longest_streak"
)

// ProgressRepo persists learner stats, review states and the answer log.
type ProgressRepo interface {
	// Learner returns the stats of a learner, or ErrNotFound.
	Learner(ctx context.Context, learnerID string) (*LearnerRecord, error)

	// SaveLearner inserts or updates learner stats.
	SaveLearner(ctx context.Context, rec *LearnerRecord) error

	// Review returns the review state of an item, or ErrNotFound.
	Review(ctx context.Context, learnerID, itemID string) (*ReviewRecord, error)

	// Reviews returns every review state of a learner ordered by item ID.
	Reviews(ctx context.Context, learnerID string) ([]ReviewRecord, error)

	// DueReviews returns answered review states with next_review <= now,
	// earliest first. limit <= 0 means unlimited.
	DueReviews(ctx context.Context, learnerID string, now time.Time, limit int) ([]ReviewRecord, error)

	// SaveReview inserts or updates a review state. A review with a quiz ID
	// creates the quiz row if it does not exist yet.
	SaveReview(ctx context.Context, rec *ReviewRecord) error

	// Quiz returns one quiz of a learner, or ErrNotFound.
	Quiz(ctx context.Context, learnerID, quizID string) (*QuizRecord, error)

	// QuizReviews returns the review states of a quiz's items.
	QuizReviews(ctx context.Context, learnerID, quizID string) ([]ReviewRecord, error)

	// RecentQuizzes returns a learner's quizzes, newest first.
	RecentQuizzes(ctx context.Context, learnerID string, limit int) ([]QuizRecord, error)

	// CompleteQuiz stores the quiz's completion and the learner's stats
	// atomically. It returns ErrNotFound if the quiz does not exist.
	CompleteQuiz(ctx context.Context, learner *LearnerRecord, quiz *QuizRecord) error

	// HasAnswerEvent reports whether an event ID was already recorded.
	HasAnswerEvent(ctx context.Context, eventID string) (bool, error)

	// RecordAnswer writes the review state, learner stats and answer event
	// of one submission atomically and returns the event's sequence number.
	// It returns ErrDuplicateEvent if the event ID already exists.
	RecordAnswer(ctx context.Context, w AnswerWrite) (int64, error)

	// AnswerEvents returns a learner's answer log ordered by sequence.
	AnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error)

	// TopLearners ranks learners by the given column, highest first.
	TopLearners(ctx context.Context, order LeaderboardOrder, limit int) ([]LearnerRecord, error)

	// LearnerRank returns the 1-indexed position TopLearners would give the
	// learner, with the learner's row. It returns ErrNotFound for unknown
	// learners.
	LearnerRank(ctx context.Context, order LeaderboardOrder, learnerID string) (int64, *LearnerRecord, error)

	// DeleteLearner removes every row belonging to a learner.
	DeleteLearner(ctx context.Context, learnerID string) error
}
