package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/store"
	"github.com/abhisek/studyforge/internal/streak"
	"github.com/abhisek/studyforge/internal/xp"
)

// RegisterItem makes an item known to the learner's schedule. Registering
// an item twice returns the existing state unchanged.
func (e *Engine) RegisterItem(ctx context.Context, learnerID string, item Item) (*spacedrep.ReviewState, error) {
	if learnerID == "" || item.ID == "" {
		return nil, fmt.Errorf("register item: learner and item ID required: %w", ErrInvalidAnswer)
	}

	unlock := e.locks.lock(learnerID)
	defer unlock()

	rec, err := e.repo.Review(ctx, learnerID, item.ID)
	if err == nil {
		return reviewFromRecord(rec), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load review: %w", err)
	}

	rs := e.newReview(learnerID, item.ID, item.QuizID, item.Topic, item.Difficulty)
	if err := e.repo.SaveReview(ctx, reviewRecord(rs)); err != nil {
		return nil, fmt.Errorf("save review: %w", err)
	}
	e.log.Debug("item registered", "learner", learnerID, "item", item.ID, "quiz", rs.QuizID, "topic", rs.Topic, "difficulty", rs.Difficulty)
	return rs, nil
}

func (e *Engine) newReview(learnerID, itemID, quizID, topic, tag string) *spacedrep.ReviewState {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = mastery.DefaultTopic
	}
	rs := spacedrep.NewReviewState(learnerID, itemID, topic, e.tier(tag, difficulty.Medium))
	rs.QuizID = strings.TrimSpace(quizID)
	return rs
}

// tier parses a difficulty tag, logging and falling back to medium on
// unknown tags.
func (e *Engine) tier(tag string, fallback difficulty.Tier) difficulty.Tier {
	t, err := parseTier(tag, fallback)
	if err != nil {
		e.log.Warn("unknown difficulty, using medium", "difficulty", tag)
	}
	return t
}

// SubmitAnswer applies one graded answer: it reschedules the item, updates
// the daily streak, awards XP with the new streak and persists all of it
// atomically together with the answer event.
//
// An answer for an unregistered item registers it when a topic is given;
// otherwise ErrUnknownItem is returned. An item stays in the first quiz
// it was assigned to. Replaying an EventID returns ErrDuplicateAnswer and
// changes nothing.
func (e *Engine) SubmitAnswer(ctx context.Context, a Answer) (*AnswerResult, error) {
	if a.LearnerID == "" || a.ItemID == "" {
		return nil, fmt.Errorf("submit answer: learner and item ID required: %w", ErrInvalidAnswer)
	}
	if a.Score < 0 || a.Score > 1 {
		return nil, fmt.Errorf("submit answer: score %v outside [0,1]: %w", a.Score, ErrInvalidAnswer)
	}

	if a.EventID == "" {
		a.EventID = uuid.NewString()
	} else {
		dup, err := e.repo.HasAnswerEvent(ctx, a.EventID)
		if err != nil {
			return nil, fmt.Errorf("check answer event: %w", err)
		}
		if dup {
			return nil, fmt.Errorf("event %s: %w", a.EventID, ErrDuplicateAnswer)
		}
	}

	now := a.At
	if now.IsZero() {
		now = e.now()
	}
	now = now.UTC()

	unlock := e.locks.lock(a.LearnerID)
	defer unlock()

	rs, created, err := e.loadOrCreateReview(ctx, a)
	if err != nil {
		return nil, err
	}
	if !created {
		if a.Difficulty != "" {
			rs.Difficulty = e.tier(a.Difficulty, rs.Difficulty)
		}
		if rs.QuizID == "" {
			rs.QuizID = strings.TrimSpace(a.QuizID)
		}
	}

	quality := spacedrep.QualityFor(a.Correct, a.Score)
	if err := rs.Record(quality, a.Correct, now); err != nil {
		return nil, fmt.Errorf("schedule item %s: %w", a.ItemID, err)
	}

	stats, err := e.loadStats(ctx, a.LearnerID)
	if err != nil {
		return nil, err
	}

	touch := streak.Touch(stats.LastActive, now)
	stats.Streak = touch.Apply(stats.Streak)
	stats.LongestStreak = streak.Longest(stats.LongestStreak, stats.Streak)
	if stats.LastActive == nil || now.After(*stats.LastActive) {
		last := now
		stats.LastActive = &last
	}

	award := xp.Award(a.Correct, rs.HintsUsed, rs.Difficulty, stats.Streak)
	stats.XP += award.XPEarned
	stats.TotalAnswered++
	if a.Correct {
		stats.TotalCorrect++
	}
	e.checkInvariants(&stats)

	event := &store.AnswerEventRecord{
		Timestamp:   now,
		EventID:     a.EventID,
		LearnerID:   a.LearnerID,
		ItemID:      a.ItemID,
		Topic:       rs.Topic,
		Correct:     a.Correct,
		Score:       a.Score,
		Quality:     quality,
		HintsUsed:   rs.HintsUsed,
		Difficulty:  string(rs.Difficulty),
		XPEarned:    award.XPEarned,
		StreakAfter: stats.Streak,
	}
	learnerRec := stats.record()
	seq, err := e.repo.RecordAnswer(ctx, store.AnswerWrite{
		Review:  reviewRecord(rs),
		Learner: learnerRec,
		Event:   event,
	})
	if errors.Is(err, store.ErrDuplicateEvent) {
		return nil, fmt.Errorf("event %s: %w", a.EventID, ErrDuplicateAnswer)
	}
	if err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	stats.CreatedAt = learnerRec.CreatedAt
	stats.UpdatedAt = learnerRec.UpdatedAt

	e.publish(ctx, stats)

	milestone := touch.Changed() && streak.IsMilestone(stats.Streak)
	e.log.Debug("answer recorded",
		"learner", a.LearnerID, "item", a.ItemID, "correct", a.Correct,
		"quality", quality, "xp", award.XPEarned, "streak", stats.Streak, "sequence", seq)
	if milestone {
		e.log.Info("streak milestone reached", "learner", a.LearnerID, "streak", stats.Streak)
	}

	return &AnswerResult{
		Sequence:         seq,
		EventID:          a.EventID,
		Quality:          quality,
		Review:           rs,
		Stats:            stats,
		Award:            award,
		Level:            xp.LevelOf(stats.XP),
		Streak:           touch.Outcome.String(),
		StreakMaintained: touch.Maintained(),
		MilestoneReached: milestone,
		NextMilestone:    streak.NextMilestone(stats.Streak),
	}, nil
}

// loadOrCreateReview returns the item's review state and whether it was
// created from the answer.
func (e *Engine) loadOrCreateReview(ctx context.Context, a Answer) (*spacedrep.ReviewState, bool, error) {
	rec, err := e.repo.Review(ctx, a.LearnerID, a.ItemID)
	if err == nil {
		return reviewFromRecord(rec), false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("load review: %w", err)
	}
	if strings.TrimSpace(a.Topic) == "" {
		return nil, false, fmt.Errorf("item %s: %w", a.ItemID, ErrUnknownItem)
	}
	return e.newReview(a.LearnerID, a.ItemID, a.QuizID, a.Topic, a.Difficulty), true, nil
}

// loadStats returns the learner's stats, or fresh stats on first use.
func (e *Engine) loadStats(ctx context.Context, learnerID string) (LearnerStats, error) {
	rec, err := e.repo.Learner(ctx, learnerID)
	if errors.Is(err, store.ErrNotFound) {
		return LearnerStats{LearnerID: learnerID}, nil
	}
	if err != nil {
		return LearnerStats{}, fmt.Errorf("load learner: %w", err)
	}
	return statsFromRecord(rec), nil
}

// RequestHint records that a hint of the given level was shown for an
// item. The hint count only ever grows to the deepest level requested.
func (e *Engine) RequestHint(ctx context.Context, learnerID, itemID string, level int) (*HintResult, error) {
	if level < 1 || level > MaxHintLevel {
		return nil, fmt.Errorf("hint level %d: %w", level, ErrInvalidHintLevel)
	}

	unlock := e.locks.lock(learnerID)
	defer unlock()

	rec, err := e.repo.Review(ctx, learnerID, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrUnknownItem)
	}
	if err != nil {
		return nil, fmt.Errorf("load review: %w", err)
	}

	if level > rec.HintsUsed {
		rec.HintsUsed = level
		if err := e.repo.SaveReview(ctx, rec); err != nil {
			return nil, fmt.Errorf("save review: %w", err)
		}
	}

	return &HintResult{
		ItemID:    itemID,
		Level:     level,
		HintsUsed: rec.HintsUsed,
		Remaining: MaxHintLevel - level,
	}, nil
}

// CompleteQuiz counts a finished quiz for the learner. With a quiz ID it
// also scores the quiz from its items and marks it completed; completing
// the same quiz again refreshes the score without counting it twice.
func (e *Engine) CompleteQuiz(ctx context.Context, learnerID, quizID string) (*QuizCompletion, error) {
	if learnerID == "" {
		return nil, fmt.Errorf("complete quiz: learner ID required: %w", ErrInvalidAnswer)
	}
	quizID = strings.TrimSpace(quizID)

	unlock := e.locks.lock(learnerID)
	defer unlock()

	stats, err := e.loadStats(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	if quizID == "" {
		stats.TotalQuizzesCompleted++
		e.checkInvariants(&stats)
		rec := stats.record()
		if err := e.repo.SaveLearner(ctx, rec); err != nil {
			return nil, fmt.Errorf("save learner: %w", err)
		}
		stats.CreatedAt = rec.CreatedAt
		stats.UpdatedAt = rec.UpdatedAt
		return &QuizCompletion{Stats: stats}, nil
	}

	quiz, err := e.repo.Quiz(ctx, learnerID, quizID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("quiz %s: %w", quizID, ErrUnknownQuiz)
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	items, err := e.repo.QuizReviews(ctx, learnerID, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz items: %w", err)
	}

	if !quiz.Completed {
		stats.TotalQuizzesCompleted++
		now := e.now().UTC()
		quiz.Completed = true
		quiz.CompletedAt = &now
	}
	summary := summarizeQuiz(quiz, reviewsFromRecords(items))
	quiz.Score = &summary.Score
	summary.Completed = quiz.Completed
	summary.CompletedAt = quiz.CompletedAt
	e.checkInvariants(&stats)

	rec := stats.record()
	if err := e.repo.CompleteQuiz(ctx, rec, quiz); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("quiz %s: %w", quizID, ErrUnknownQuiz)
		}
		return nil, fmt.Errorf("complete quiz: %w", err)
	}
	stats.CreatedAt = rec.CreatedAt
	stats.UpdatedAt = rec.UpdatedAt

	e.log.Debug("quiz completed", "learner", learnerID, "quiz", quizID, "score", summary.Score)
	return &QuizCompletion{Stats: stats, Quiz: &summary}, nil
}
