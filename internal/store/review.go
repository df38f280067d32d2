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

var reviewColumns = []string{
	"learner_id", "item_id", "quiz_id", "topic", "difficulty", "attempts", "correct", "hints_used",
	"answered_at", "ease_factor", "interval_days", "next_review", "repetitions", "created_at", "updated_at",
}

func (r *progressRepo) Review(ctx context.Context, learnerID, itemID string) (*ReviewRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(reviewColumns...).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("item_id", itemID),
		)).
		Query()

	var rec ReviewRecord
	err := sqlx.GetContext(ctx, r.db, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query review %q/%q: %w", learnerID, itemID, err)
	}
	normalizeReview(&rec)
	return &rec, nil
}

func (r *progressRepo) Reviews(ctx context.Context, learnerID string) ([]ReviewRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(reviewColumns...).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy(entsql.Asc("item_id")).
		Query()
	return r.selectReviews(ctx, query, args)
}

func (r *progressRepo) DueReviews(ctx context.Context, learnerID string, now time.Time, limit int) ([]ReviewRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(reviewColumns...).
		From(entsql.Table(tableReviewStates)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.NotNull("answered_at"),
			entsql.NotNull("next_review"),
			entsql.LTE("next_review", now.UTC()),
		)).
		OrderBy(entsql.Asc("next_review"), entsql.Asc("item_id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()
	return r.selectReviews(ctx, query, args)
}

func (r *progressRepo) selectReviews(ctx context.Context, query string, args []any) ([]ReviewRecord, error) {
	var recs []ReviewRecord
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	for i := range recs {
		normalizeReview(&recs[i])
	}
	return recs, nil
}

func (r *progressRepo) SaveReview(ctx context.Context, rec *ReviewRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertReview(ctx, tx, rec); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// upsertReview writes a review state and, for quiz items, makes sure the
// quiz row exists.
func upsertReview(ctx context.Context, ex sqlx.ExecerContext, rec *ReviewRecord) error {
	if rec.QuizID != "" {
		if err := ensureQuiz(ctx, ex, rec); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableReviewStates).
		Columns(reviewColumns...).
		Values(
			rec.LearnerID, rec.ItemID, rec.QuizID, rec.Topic, rec.Difficulty, rec.Attempts, rec.Correct, rec.HintsUsed,
			nullableTime(rec.AnsweredAt), rec.EaseFactor, rec.IntervalDays, nullableTime(rec.NextReview),
			rec.Repetitions, rec.CreatedAt.UTC(), rec.UpdatedAt,
		).
		OnConflict(
			entsql.ConflictColumns("learner_id", "item_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range reviewColumns[2:] {
					if c == "created_at" {
						continue
					}
					u.SetExcluded(c)
				}
			}),
		).
		Query()
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert review %q/%q: %w", rec.LearnerID, rec.ItemID, err)
	}
	return nil
}

// normalizeReview moves scanned timestamps into UTC.
func normalizeReview(rec *ReviewRecord) {
	rec.AnsweredAt = utcPtr(rec.AnsweredAt)
	rec.NextReview = utcPtr(rec.NextReview)
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
}
