// Package progress orchestrates the scheduler, streak tracker, XP engine
// and mastery aggregator around persisted learner state.
package progress

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/store"
)

// Options configures an Engine.
type Options struct {
	// QueueLimit caps review queues. Zero means spacedrep.DefaultQueueLimit.
	QueueLimit int

	// StrictInvariants makes invariant violations panic instead of being
	// logged and clamped.
	StrictInvariants bool

	// Board receives standings after every answer. Optional.
	Board leaderboard.Board

	Logger *slog.Logger

	// Now overrides the clock for answers without a timestamp.
	Now func() time.Time
}

// Engine applies answers, hints and quiz completions to learner state.
// Every read-modify-write of a learner runs under that learner's lock;
// different learners proceed in parallel.
type Engine struct {
	repo   store.ProgressRepo
	board  leaderboard.Board
	log    *slog.Logger
	now    func() time.Time
	limit  int
	strict bool
	locks  *learnerLocks
}

// NewEngine creates an Engine on top of repo.
func NewEngine(repo store.ProgressRepo, opts Options) *Engine {
	e := &Engine{
		repo:   repo,
		board:  opts.Board,
		log:    opts.Logger,
		now:    opts.Now,
		limit:  opts.QueueLimit,
		strict: opts.StrictInvariants,
		locks:  newLearnerLocks(),
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.limit <= 0 {
		e.limit = spacedrep.DefaultQueueLimit
	}
	return e
}

// learnerLocks hands out one mutex per learner and frees it once no
// caller holds or waits for it.
type learnerLocks struct {
	mu    sync.Mutex
	locks map[string]*learnerLock
}

type learnerLock struct {
	mu   sync.Mutex
	refs int
}

func newLearnerLocks() *learnerLocks {
	return &learnerLocks{locks: make(map[string]*learnerLock)}
}

// lock blocks until the learner's lock is held and returns its release func.
// The key is cloned so the map never aliases caller-owned memory.
func (l *learnerLocks) lock(learnerID string) func() {
	key := strings.Clone(learnerID)

	l.mu.Lock()
	ll, ok := l.locks[key]
	if !ok {
		ll = &learnerLock{}
		l.locks[key] = ll
	}
	ll.refs++
	l.mu.Unlock()

	ll.mu.Lock()
	return func() {
		ll.mu.Unlock()
		l.mu.Lock()
		ll.refs--
		if ll.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

// checkInvariants repairs learner stats that broke an invariant. In strict
// mode it panics instead.
func (e *Engine) checkInvariants(s *LearnerStats) {
	var violations []string
	clamp := func(name string, v *int) {
		if *v < 0 {
			violations = append(violations, fmt.Sprintf("%s=%d below zero", name, *v))
			*v = 0
		}
	}
	clamp("xp", &s.XP)
	clamp("streak", &s.Streak)
	clamp("longest_streak", &s.LongestStreak)
	clamp("total_answered", &s.TotalAnswered)
	clamp("total_correct", &s.TotalCorrect)
	clamp("total_quizzes_completed", &s.TotalQuizzesCompleted)

	if s.LongestStreak < s.Streak {
		violations = append(violations, fmt.Sprintf("longest_streak=%d below streak=%d", s.LongestStreak, s.Streak))
		s.LongestStreak = s.Streak
	}
	if s.TotalCorrect > s.TotalAnswered {
		violations = append(violations, fmt.Sprintf("total_correct=%d above total_answered=%d", s.TotalCorrect, s.TotalAnswered))
		s.TotalCorrect = s.TotalAnswered
	}

	e.report(s.LearnerID, violations)
}

// checkMastery clamps a mastery ratio into [0, 1].
func (e *Engine) checkMastery(learnerID, topic string, m *float64) {
	switch {
	case *m < 0:
		e.report(learnerID, []string{fmt.Sprintf("mastery of %q is %v", topic, *m)})
		*m = 0
	case *m > 1:
		e.report(learnerID, []string{fmt.Sprintf("mastery of %q is %v", topic, *m)})
		*m = 1
	}
}

func (e *Engine) report(learnerID string, violations []string) {
	if len(violations) == 0 {
		return
	}
	if e.strict {
		panic(fmt.Sprintf("progress invariant violated for learner %q: %v", learnerID, violations))
	}
	e.log.Warn("progress invariant violated, clamping", "learner", learnerID, "violations", violations)
}

// publish pushes the learner's standing to the board. Failures are logged
// and never fail the caller.
func (e *Engine) publish(ctx context.Context, s LearnerStats) {
	if e.board == nil {
		return
	}
	err := e.board.Update(ctx, leaderboard.Standing{
		LearnerID:     s.LearnerID,
		XP:            s.XP,
		LongestStreak: s.LongestStreak,
	})
	if err != nil {
		e.log.Warn("leaderboard update failed", "learner", s.LearnerID, "error", err)
	}
}
