package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/store"
)

// Stats returns the learner's stats with level and accuracy. Unknown
// learners get zero stats.
func (e *Engine) Stats(ctx context.Context, learnerID string) (StatsView, error) {
	stats, err := e.loadStats(ctx, learnerID)
	if err != nil {
		return StatsView{}, err
	}
	e.checkInvariants(&stats)
	return newStatsView(stats), nil
}

// Dashboard loads stats, review states and recent quizzes concurrently and
// derives topic mastery, quiz scores and the review queue from them.
func (e *Engine) Dashboard(ctx context.Context, learnerID string, now time.Time) (*Dashboard, error) {
	var (
		view    StatsView
		states  []*spacedrep.ReviewState
		quizzes []store.QuizRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view, err = e.Stats(gctx, learnerID)
		return err
	})
	g.Go(func() error {
		var err error
		states, err = e.reviews(gctx, learnerID)
		return err
	})
	g.Go(func() error {
		var err error
		quizzes, err = e.repo.RecentQuizzes(gctx, learnerID, RecentQuizLimit)
		if err != nil {
			return fmt.Errorf("load quizzes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recent := make([]QuizSummary, len(quizzes))
	for i := range quizzes {
		recent[i] = summarizeQuiz(&quizzes[i], states)
	}

	return &Dashboard{
		Stats:         view,
		TopicMastery:  e.topicMastery(learnerID, states),
		RecentQuizzes: recent,
		ReviewQueue:   spacedrep.DueQueue(states, now.UTC(), e.limit),
	}, nil
}

// Quiz returns the current summary of one quiz.
func (e *Engine) Quiz(ctx context.Context, learnerID, quizID string) (*QuizSummary, error) {
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
	summary := summarizeQuiz(quiz, reviewsFromRecords(items))
	return &summary, nil
}

// ReviewQueue returns the learner's due items, most overdue first, capped
// at the configured queue limit.
func (e *Engine) ReviewQueue(ctx context.Context, learnerID string, now time.Time) ([]*spacedrep.ReviewState, error) {
	recs, err := e.repo.DueReviews(ctx, learnerID, now.UTC(), e.limit)
	if err != nil {
		return nil, fmt.Errorf("load due reviews: %w", err)
	}
	return reviewsFromRecords(recs), nil
}

// TopicMastery returns the learner's per-topic mastery, best first.
func (e *Engine) TopicMastery(ctx context.Context, learnerID string) ([]mastery.TopicMastery, error) {
	states, err := e.reviews(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	return e.topicMastery(learnerID, states), nil
}

// NextDifficulty suggests the tier to offer next for a topic, based on the
// learner's mastery of it. Unknown topics start at easy.
func (e *Engine) NextDifficulty(ctx context.Context, learnerID, topic string) (difficulty.Tier, error) {
	topics, err := e.TopicMastery(ctx, learnerID)
	if err != nil {
		return "", err
	}
	return mastery.Find(topics, topic).Suggested, nil
}

// History returns the learner's answer log in sequence order.
func (e *Engine) History(ctx context.Context, learnerID string, opts store.QueryOpts) ([]store.AnswerEventRecord, error) {
	events, err := e.repo.AnswerEvents(ctx, learnerID, opts)
	if err != nil {
		return nil, fmt.Errorf("load answer events: %w", err)
	}
	return events, nil
}

// Reset deletes every trace of a learner: stats, review states, answer
// events and leaderboard entries.
func (e *Engine) Reset(ctx context.Context, learnerID string) error {
	unlock := e.locks.lock(learnerID)
	defer unlock()

	if err := e.repo.DeleteLearner(ctx, learnerID); err != nil {
		return fmt.Errorf("reset learner %q: %w", learnerID, err)
	}
	if e.board != nil {
		if err := e.board.Remove(ctx, learnerID); err != nil {
			e.log.Warn("leaderboard removal failed", "learner", learnerID, "error", err)
		}
	}
	e.log.Info("learner reset", "learner", learnerID)
	return nil
}

// Leaderboard returns the top learners of a board.
func (e *Engine) Leaderboard(ctx context.Context, kind leaderboard.Kind, limit int) ([]leaderboard.Entry, error) {
	if e.board == nil {
		return nil, ErrNoLeaderboard
	}
	return e.board.Top(ctx, kind, limit)
}

// LeaderboardPosition returns the learner's rank and score on a board.
// Unranked learners get rank 0.
func (e *Engine) LeaderboardPosition(ctx context.Context, kind leaderboard.Kind, learnerID string) (leaderboard.Entry, error) {
	if e.board == nil {
		return leaderboard.Entry{}, ErrNoLeaderboard
	}
	return e.board.Position(ctx, kind, learnerID)
}

func (e *Engine) reviews(ctx context.Context, learnerID string) ([]*spacedrep.ReviewState, error) {
	recs, err := e.repo.Reviews(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	return reviewsFromRecords(recs), nil
}

func (e *Engine) topicMastery(learnerID string, states []*spacedrep.ReviewState) []mastery.TopicMastery {
	topics := mastery.Aggregate(masteryRecords(states))
	for i := range topics {
		e.checkMastery(learnerID, topics[i].Topic, &topics[i].Mastery)
	}
	return topics
}
