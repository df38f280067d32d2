package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// progressRepo implements ProgressRepo on top of sqlx, with statements
// built by ent's SQL builder.
type progressRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

var learnerColumns = []string{
	"learner_id", "xp", "streak", "longest_streak", "last_active",
	"total_answered", "total_correct", "total_quizzes_completed", "created_at", "updated_at",
}

func (r *progressRepo) Learner(ctx context.Context, learnerID string) (*LearnerRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(learnerColumns...).
		From(entsql.Table(tableLearnerStats)).
		Where(entsql.EQ("learner_id", learnerID)).
		Query()

	var rec LearnerRecord
	err := sqlx.GetContext(ctx, r.db, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query learner %q: %w", learnerID, err)
	}
	normalizeLearner(&rec)
	return &rec, nil
}

func (r *progressRepo) SaveLearner(ctx context.Context, rec *LearnerRecord) error {
	return upsertLearner(ctx, r.db, rec)
}

func (r *progressRepo) TopLearners(ctx context.Context, order LeaderboardOrder, limit int) ([]LearnerRecord, error) {
	col := string(order)
	if order != OrderByXP && order != OrderByLongestStreak {
		return nil, fmt.Errorf("unsupported leaderboard order %q", order)
	}

	sel := entsql.Dialect(dialect.SQLite).
		Select(learnerColumns...).
		From(entsql.Table(tableLearnerStats)).
		OrderBy(entsql.Desc(col), entsql.Asc("learner_id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	var recs []LearnerRecord
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("query top learners: %w", err)
	}
	for i := range recs {
		normalizeLearner(&recs[i])
	}
	return recs, nil
}

func (r *progressRepo) LearnerRank(ctx context.Context, order LeaderboardOrder, learnerID string) (int64, *LearnerRecord, error) {
	if order != OrderByXP && order != OrderByLongestStreak {
		return 0, nil, fmt.Errorf("unsupported leaderboard order %q", order)
	}
	rec, err := r.Learner(ctx, learnerID)
	if err != nil {
		return 0, nil, err
	}

	col := string(order)
	score := rec.XP
	if order == OrderByLongestStreak {
		score = rec.LongestStreak
	}

	// Learners ahead: a higher score, or the same score and a smaller ID.
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(tableLearnerStats)).
		Where(entsql.Or(
			entsql.GT(col, score),
			entsql.And(entsql.EQ(col, score), entsql.LT("learner_id", learnerID)),
		)).
		Query()

	var ahead int64
	if err := sqlx.GetContext(ctx, r.db, &ahead, query, args...); err != nil {
		return 0, nil, fmt.Errorf("rank learner %q: %w", learnerID, err)
	}
	return ahead + 1, rec, nil
}

func (r *progressRepo) DeleteLearner(ctx context.Context, learnerID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{tableAnswerEvents, tableReviewStates, tableQuizzes, tableLearnerStats} {
		query, args := entsql.Dialect(dialect.SQLite).
			Delete(table).
			Where(entsql.EQ("learner_id", learnerID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecordAnswer persists one answer submission in a single transaction.
func (r *progressRepo) RecordAnswer(ctx context.Context, w AnswerWrite) (int64, error) {
	if w.Review == nil || w.Learner == nil || w.Event == nil {
		return 0, errors.New("record answer: incomplete write")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	dup, err := hasAnswerEvent(ctx, tx, w.Event.EventID)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, fmt.Errorf("event %s: %w", w.Event.EventID, ErrDuplicateEvent)
	}

	if err := upsertReview(ctx, tx, w.Review); err != nil {
		return 0, err
	}
	if err := upsertLearner(ctx, tx, w.Learner); err != nil {
		return 0, err
	}

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return 0, err
	}
	w.Event.Sequence = seq
	if err := insertAnswerEvent(ctx, tx, w.Event); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return seq, nil
}

func upsertLearner(ctx context.Context, ex sqlx.ExecerContext, rec *LearnerRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLearnerStats).
		Columns(learnerColumns...).
		Values(
			rec.LearnerID, rec.XP, rec.Streak, rec.LongestStreak, nullableTime(rec.LastActive),
			rec.TotalAnswered, rec.TotalCorrect, rec.TotalQuizzesCompleted, rec.CreatedAt.UTC(), rec.UpdatedAt,
		).
		OnConflict(
			entsql.ConflictColumns("learner_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range learnerColumns[1:] {
					if c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		).
		Query()
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert learner %q: %w", rec.LearnerID, err)
	}
	return nil
}

// normalizeLearner moves scanned timestamps into UTC.
func normalizeLearner(rec *LearnerRecord) {
	rec.LastActive = utcPtr(rec.LastActive)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
}

// nullableTime converts an optional timestamp to a driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
