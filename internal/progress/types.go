package progress

import (
	"errors"
	"time"

	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/streak"
	"github.com/abhisek/studyforge/internal/xp"
)

var (
	// ErrInvalidHintLevel is returned when a hint level is outside [1, MaxHintLevel].
	ErrInvalidHintLevel = errors.New("invalid hint level")

	// ErrUnknownItem is returned when an operation names an item the learner
	// has no review state for.
	ErrUnknownItem = errors.New("unknown item")

	// ErrDuplicateAnswer is returned when an answer event ID was already recorded.
	ErrDuplicateAnswer = errors.New("duplicate answer")

	// ErrInvalidAnswer is returned for answers missing a learner or item.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrUnknownQuiz is returned when a quiz ID names no quiz of the learner.
	ErrUnknownQuiz = errors.New("unknown quiz")

	// ErrNoLeaderboard is returned when the engine has no board configured.
	ErrNoLeaderboard = errors.New("leaderboard not configured")
)

const (
	// MaxHintLevel is the deepest hint an item offers.
	MaxHintLevel = 3

	// RecentQuizLimit caps the quizzes shown on a dashboard.
	RecentQuizLimit = 10
)

// Item describes a quiz item as the content layer hands it over.
type Item struct {
	ID         string `json:"id" yaml:"id"`
	QuizID     string `json:"quiz_id,omitempty" yaml:"quiz_id,omitempty"`
	Topic      string `json:"topic" yaml:"topic"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
}

// Answer is one graded submission for an item.
type Answer struct {
	EventID    string    `json:"event_id" yaml:"event_id"`
	LearnerID  string    `json:"learner_id" yaml:"learner_id"`
	ItemID     string    `json:"item_id" yaml:"item_id"`
	QuizID     string    `json:"quiz_id,omitempty" yaml:"quiz_id,omitempty"`
	Topic      string    `json:"topic" yaml:"topic"`
	Correct    bool      `json:"correct" yaml:"correct"`
	Score      float64   `json:"score" yaml:"score"`
	Difficulty string    `json:"difficulty" yaml:"difficulty"`
	At         time.Time `json:"at" yaml:"at"`
}

// LearnerStats is the accumulated progress of one learner.
type LearnerStats struct {
	LearnerID             string     `json:"learner_id" yaml:"learner_id"`
	XP                    int        `json:"xp" yaml:"xp"`
	Streak                int        `json:"streak" yaml:"streak"`
	LongestStreak         int        `json:"longest_streak" yaml:"longest_streak"`
	LastActive            *time.Time `json:"last_active,omitempty" yaml:"last_active,omitempty"`
	TotalAnswered         int        `json:"total_answered" yaml:"total_answered"`
	TotalCorrect          int        `json:"total_correct" yaml:"total_correct"`
	TotalQuizzesCompleted int        `json:"total_quizzes_completed" yaml:"total_quizzes_completed"`
	CreatedAt             time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" yaml:"updated_at"`
}

// AnswerResult reports everything one submission changed.
type AnswerResult struct {
	Sequence         int64                  `json:"sequence" yaml:"sequence"`
	EventID          string                 `json:"event_id" yaml:"event_id"`
	Quality          int                    `json:"quality" yaml:"quality"`
	Review           *spacedrep.ReviewState `json:"review" yaml:"review"`
	Stats            LearnerStats           `json:"stats" yaml:"stats"`
	Award            xp.Result              `json:"award" yaml:"award"`
	Level            xp.Level               `json:"level" yaml:"level"`
	Streak           string                 `json:"streak" yaml:"streak"` // outcome of the streak touch
	StreakMaintained bool                   `json:"streak_maintained" yaml:"streak_maintained"`
	MilestoneReached bool                   `json:"milestone_reached" yaml:"milestone_reached"`
	NextMilestone    int                    `json:"next_milestone" yaml:"next_milestone"`
}

// HintResult reports the hint bookkeeping of an item.
type HintResult struct {
	ItemID    string `json:"item_id" yaml:"item_id"`
	Level     int    `json:"level" yaml:"level"`
	HintsUsed int    `json:"hints_used" yaml:"hints_used"`
	Remaining int    `json:"remaining" yaml:"remaining"`
}

// StatsView is LearnerStats plus derived figures for display.
type StatsView struct {
	LearnerStats  `yaml:",inline"`
	Level         xp.Level `json:"level" yaml:"level"`
	Accuracy      float64  `json:"accuracy" yaml:"accuracy"` // percent, one decimal
	NextMilestone int      `json:"next_milestone" yaml:"next_milestone"`
}

// QuizSummary rolls a quiz's items up into answered, correct and score.
type QuizSummary struct {
	QuizID      string          `json:"quiz_id" yaml:"quiz_id"`
	Topic       string          `json:"topic" yaml:"topic"`
	Difficulty  difficulty.Tier `json:"difficulty" yaml:"difficulty"`
	Total       int             `json:"total_items" yaml:"total_items"`
	Answered    int             `json:"answered" yaml:"answered"`
	Correct     int             `json:"correct" yaml:"correct"`
	Score       float64         `json:"score" yaml:"score"` // percent of all items, one decimal
	Completed   bool            `json:"completed" yaml:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

// QuizCompletion reports a completed quiz. Quiz is nil when no quiz ID
// was given.
type QuizCompletion struct {
	Stats LearnerStats `json:"stats" yaml:"stats"`
	Quiz  *QuizSummary `json:"quiz,omitempty" yaml:"quiz,omitempty"`
}

// Dashboard combines stats, ranked topic mastery, recent quizzes and the
// review queue.
type Dashboard struct {
	Stats         StatsView                `json:"stats" yaml:"stats"`
	TopicMastery  []mastery.TopicMastery   `json:"topic_mastery" yaml:"topic_mastery"`
	RecentQuizzes []QuizSummary            `json:"recent_quizzes" yaml:"recent_quizzes"`
	ReviewQueue   []*spacedrep.ReviewState `json:"review_queue" yaml:"review_queue"`
}

// Accuracy returns the percentage of correct answers rounded to one decimal.
func Accuracy(correct, answered int) float64 {
	return mastery.RoundPercent(mastery.Ratio(correct, answered))
}

func newStatsView(s LearnerStats) StatsView {
	return StatsView{
		LearnerStats:  s,
		Level:         xp.LevelOf(s.XP),
		Accuracy:      Accuracy(s.TotalCorrect, s.TotalAnswered),
		NextMilestone: streak.NextMilestone(s.Streak),
	}
}

// parseTier resolves a difficulty tag, reporting whether it fell back.
func parseTier(tag string, fallback difficulty.Tier) (difficulty.Tier, error) {
	if tag == "" {
		return fallback, nil
	}
	return difficulty.Parse(tag)
}
