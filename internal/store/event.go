package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jmoiron/sqlx"
)

// sequenceCounter manages the global monotonic sequence number assigned to
// every answer event. The answer log is append-only and consumers replay
// it in sequence order, which stays stable even when wall-clock timestamps
// collide or go backwards.
//
// Uses raw SQL because the counter is a database-level atomic increment.
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the
// counter. q is usually the transaction the new event is written in, so
// a rolled-back answer does not consume a number.
func (sc *sequenceCounter) Next(ctx context.Context, q sqlx.QueryerContext) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := q.QueryRowxContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

var answerEventColumns = []string{
	"id", "sequence", "timestamp", "event_id", "learner_id", "item_id", "topic",
	"correct", "score", "quality", "hints_used", "difficulty", "xp_earned", "streak_after",
}

func insertAnswerEvent(ctx context.Context, ex sqlx.ExecerContext, rec *AnswerEventRecord) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAnswerEvents).
		Columns(answerEventColumns[1:]...).
		Values(
			rec.Sequence, rec.Timestamp.UTC(), rec.EventID, rec.LearnerID, rec.ItemID, rec.Topic,
			rec.Correct, rec.Score, rec.Quality, rec.HintsUsed, rec.Difficulty, rec.XPEarned, rec.StreakAfter,
		).
		Query()
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert answer event: %w", err)
	}
	return nil
}

func hasAnswerEvent(ctx context.Context, q sqlx.QueryerContext, eventID string) (bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id").
		From(entsql.Table(tableAnswerEvents)).
		Where(entsql.EQ("event_id", eventID)).
		Limit(1).
		Query()

	var id int
	err := sqlx.GetContext(ctx, q, &id, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query answer event: %w", err)
	}
	return true, nil
}

func (r *progressRepo) HasAnswerEvent(ctx context.Context, eventID string) (bool, error) {
	return hasAnswerEvent(ctx, r.db, eventID)
}

func (r *progressRepo) AnswerEvents(ctx context.Context, learnerID string, opts QueryOpts) ([]AnswerEventRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}

	sel := entsql.Dialect(dialect.SQLite).
		Select(answerEventColumns...).
		From(entsql.Table(tableAnswerEvents)).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Asc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	var events []AnswerEventRecord
	if err := sqlx.SelectContext(ctx, r.db, &events, query, args...); err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	return events, nil
}
