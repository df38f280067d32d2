package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableLearnerStats = "learner_stats"
	tableReviewStates = "review_states"
	tableAnswerEvents = "answer_events"
	tableQuizzes      = "quizzes"
)

var (
	// LearnerStatsColumns holds the columns of the learner_stats table.
	LearnerStatsColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString, Unique: true},
		{Name: "xp", Type: field.TypeInt, Default: 0},
		{Name: "streak", Type: field.TypeInt, Default: 0},
		{Name: "longest_streak", Type: field.TypeInt, Default: 0},
		{Name: "last_active", Type: field.TypeTime, Nullable: true},
		{Name: "total_answered", Type: field.TypeInt, Default: 0},
		{Name: "total_correct", Type: field.TypeInt, Default: 0},
		{Name: "total_quizzes_completed", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LearnerStatsTable holds one progress record per learner identity.
	LearnerStatsTable = &schema.Table{
		Name:       tableLearnerStats,
		Columns:    LearnerStatsColumns,
		PrimaryKey: []*schema.Column{LearnerStatsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "learnerstats_xp", Columns: []*schema.Column{LearnerStatsColumns[1]}},
			{Name: "learnerstats_longest_streak", Columns: []*schema.Column{LearnerStatsColumns[3]}},
		},
	}

	// ReviewStatesColumns holds the columns of the review_states table.
	ReviewStatesColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeString, Default: "medium"},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeBool, Default: false},
		{Name: "hints_used", Type: field.TypeInt, Default: 0},
		{Name: "answered_at", Type: field.TypeTime, Nullable: true},
		{Name: "ease_factor", Type: field.TypeFloat64, Default: 2.5},
		{Name: "interval_days", Type: field.TypeInt, Default: 1},
		{Name: "next_review", Type: field.TypeTime, Nullable: true},
		{Name: "repetitions", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "quiz_id", Type: field.TypeString, Default: ""},
	}
	// ReviewStatesTable holds the scheduling state of every (learner, item) pair.
	ReviewStatesTable = &schema.Table{
		Name:       tableReviewStates,
		Columns:    ReviewStatesColumns,
		PrimaryKey: []*schema.Column{ReviewStatesColumns[0], ReviewStatesColumns[1]},
		Indexes: []*schema.Index{
			{Name: "reviewstate_learner_id_next_review", Columns: []*schema.Column{ReviewStatesColumns[0], ReviewStatesColumns[10]}},
			{Name: "reviewstate_learner_id_topic", Columns: []*schema.Column{ReviewStatesColumns[0], ReviewStatesColumns[2]}},
			{Name: "reviewstate_learner_id_quiz_id", Columns: []*schema.Column{ReviewStatesColumns[0], ReviewStatesColumns[14]}},
		},
	}

	// QuizzesColumns holds the columns of the quizzes table.
	QuizzesColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString, Default: ""},
		{Name: "difficulty", Type: field.TypeString, Default: "medium"},
		{Name: "completed", Type: field.TypeBool, Default: false},
		{Name: "score", Type: field.TypeFloat64, Nullable: true},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// QuizzesTable groups a learner's items into quizzes.
	QuizzesTable = &schema.Table{
		Name:       tableQuizzes,
		Columns:    QuizzesColumns,
		PrimaryKey: []*schema.Column{QuizzesColumns[0], QuizzesColumns[1]},
		Indexes: []*schema.Index{
			{Name: "quiz_learner_id_created_at", Columns: []*schema.Column{QuizzesColumns[0], QuizzesColumns[7]}},
		},
	}

	// AnswerEventsColumns holds the columns of the answer_events table.
	AnswerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString, Default: ""},
		{Name: "correct", Type: field.TypeBool},
		{Name: "score", Type: field.TypeFloat64, Default: 0},
		{Name: "quality", Type: field.TypeInt},
		{Name: "hints_used", Type: field.TypeInt, Default: 0},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "xp_earned", Type: field.TypeInt},
		{Name: "streak_after", Type: field.TypeInt},
	}
	// AnswerEventsTable is the append-only log of submitted answers.
	AnswerEventsTable = &schema.Table{
		Name:       tableAnswerEvents,
		Columns:    AnswerEventsColumns,
		PrimaryKey: []*schema.Column{AnswerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_timestamp", Columns: []*schema.Column{AnswerEventsColumns[2]}},
			{Name: "answerevent_learner_id_item_id", Columns: []*schema.Column{AnswerEventsColumns[4], AnswerEventsColumns[5]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LearnerStatsTable,
		ReviewStatesTable,
		AnswerEventsTable,
		QuizzesTable,
	}
)

// migrate creates or upgrades every table in Tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}
