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

var quizColumns = []string{
	"learner_id", "quiz_id", "topic", "difficulty", "completed", "score",
	"completed_at", "created_at", "updated_at",
}

// ensureQuiz inserts the quiz a review belongs to. An existing quiz row is
// left untouched.
func ensureQuiz(ctx context.Context, ex sqlx.ExecerContext, rec *ReviewRecord) error {
	now := time.Now().UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableQuizzes).
		Columns(quizColumns...).
		Values(rec.LearnerID, rec.QuizID, rec.Topic, rec.Difficulty, false, nil, nil, now, now).
		OnConflict(
			entsql.ConflictColumns("learner_id", "quiz_id"),
			entsql.DoNothing(),
		).
		Query()
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure quiz %q/%q: %w", rec.LearnerID, rec.QuizID, err)
	}
	return nil
}

func (r *progressRepo) Quiz(ctx context.Context, learnerID, quizID string) (*QuizRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(quizColumns...).
		From(entsql.Table(tableQuizzes)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("quiz_id", quizID),
		)).
		Query()

	var rec QuizRecord
	err := sqlx.GetContext(ctx, r.db, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query quiz %q/%q: %w", learnerID, quizID, err)
	}
	normalizeQuiz(&rec)
	return &rec, nil
}

func (r *progressRepo) QuizReviews(ctx context.Context, learnerID, quizID string) ([]ReviewRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(reviewColumns...).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("quiz_id", quizID),
		)).
		OrderBy(entsql.Asc("item_id")).
		Query()
	return r.selectReviews(ctx, query, args)
}

func (r *progressRepo) RecentQuizzes(ctx context.Context, learnerID string, limit int) ([]QuizRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(quizColumns...).
		From(entsql.Table(tableQuizzes)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Desc("created_at"), entsql.Asc("quiz_id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	var recs []QuizRecord
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	for i := range recs {
		normalizeQuiz(&recs[i])
	}
	return recs, nil
}

func (r *progressRepo) CompleteQuiz(ctx context.Context, learner *LearnerRecord, quiz *QuizRecord) error {
	if learner == nil || quiz == nil {
		return errors.New("complete quiz: incomplete write")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	quiz.UpdatedAt = time.Now().UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Update(tableQuizzes).
		Set("completed", quiz.Completed).
		Set("score", nullableFloat(quiz.Score)).
		Set("completed_at", nullableTime(quiz.CompletedAt)).
		Set("updated_at", quiz.UpdatedAt).
		Where(entsql.And(
			entsql.EQ("learner_id", quiz.LearnerID),
			entsql.EQ("quiz_id", quiz.QuizID),
		)).
		Query()
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update quiz %q/%q: %w", quiz.LearnerID, quiz.QuizID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quiz %q/%q: %w", quiz.LearnerID, quiz.QuizID, err)
	}
	if n == 0 {
		return fmt.Errorf("quiz %q/%q: %w", quiz.LearnerID, quiz.QuizID, ErrNotFound)
	}

	if err := upsertLearner(ctx, tx, learner); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// normalizeQuiz moves scanned timestamps into UTC.
func normalizeQuiz(rec *QuizRecord) {
	rec.CompletedAt = utcPtr(rec.CompletedAt)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
}
