package progress

import (
	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/store"
)

func statsFromRecord(r *store.LearnerRecord) LearnerStats {
	return LearnerStats{
		LearnerID:             r.LearnerID,
		XP:                    r.XP,
		Streak:                r.Streak,
		LongestStreak:         r.LongestStreak,
		LastActive:            r.LastActive,
		TotalAnswered:         r.TotalAnswered,
		TotalCorrect:          r.TotalCorrect,
		TotalQuizzesCompleted: r.TotalQuizzesCompleted,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (s LearnerStats) record() *store.LearnerRecord {
	return &store.LearnerRecord{
		LearnerID:             s.LearnerID,
		XP:                    s.XP,
		Streak:                s.Streak,
		LongestStreak:         s.LongestStreak,
		LastActive:            s.LastActive,
		TotalAnswered:         s.TotalAnswered,
		TotalCorrect:          s.TotalCorrect,
		TotalQuizzesCompleted: s.TotalQuizzesCompleted,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// reviewFromRecord converts a stored row. Unknown stored difficulty tags
// read back as medium.
func reviewFromRecord(r *store.ReviewRecord) *spacedrep.ReviewState {
	tier := difficulty.Tier(r.Difficulty)
	if !tier.Valid() {
		tier = difficulty.Medium
	}
	return &spacedrep.ReviewState{
		LearnerID:    r.LearnerID,
		ItemID:       r.ItemID,
		QuizID:       r.QuizID,
		Topic:        r.Topic,
		Difficulty:   tier,
		Attempts:     r.Attempts,
		Correct:      r.Correct,
		HintsUsed:    r.HintsUsed,
		AnsweredAt:   r.AnsweredAt,
		EaseFactor:   r.EaseFactor,
		IntervalDays: r.IntervalDays,
		NextReview:   r.NextReview,
		Repetitions:  r.Repetitions,
	}
}

func reviewRecord(rs *spacedrep.ReviewState) *store.ReviewRecord {
	return &store.ReviewRecord{
		LearnerID:    rs.LearnerID,
		ItemID:       rs.ItemID,
		QuizID:       rs.QuizID,
		Topic:        rs.Topic,
		Difficulty:   string(rs.Difficulty),
		Attempts:     rs.Attempts,
		Correct:      rs.Correct,
		HintsUsed:    rs.HintsUsed,
		AnsweredAt:   rs.AnsweredAt,
		EaseFactor:   rs.EaseFactor,
		IntervalDays: rs.IntervalDays,
		NextReview:   rs.NextReview,
		Repetitions:  rs.Repetitions,
	}
}

func reviewsFromRecords(recs []store.ReviewRecord) []*spacedrep.ReviewState {
	out := make([]*spacedrep.ReviewState, len(recs))
	for i := range recs {
		out[i] = reviewFromRecord(&recs[i])
	}
	return out
}

func masteryRecords(states []*spacedrep.ReviewState) []mastery.Record {
	out := make([]mastery.Record, len(states))
	for i, rs := range states {
		out[i] = mastery.Record{Topic: rs.Topic, Answered: rs.Answered(), Correct: rs.Correct}
	}
	return out
}

func quizFromRecord(r *store.QuizRecord) QuizSummary {
	tier := difficulty.Tier(r.Difficulty)
	if !tier.Valid() {
		tier = difficulty.Medium
	}
	return QuizSummary{
		QuizID:      r.QuizID,
		Topic:       r.Topic,
		Difficulty:  tier,
		Completed:   r.Completed,
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
}

// summarizeQuiz rolls the quiz's item states up into its totals. Score
// uses the same ratio rule as accuracy and mastery, over all items.
func summarizeQuiz(r *store.QuizRecord, states []*spacedrep.ReviewState) QuizSummary {
	q := quizFromRecord(r)
	for _, rs := range states {
		if rs.QuizID != r.QuizID {
			continue
		}
		q.Total++
		if rs.Answered() {
			q.Answered++
			if rs.Correct {
				q.Correct++
			}
		}
	}
	q.Score = mastery.RoundPercent(mastery.Ratio(q.Correct, q.Total))
	return q
}
