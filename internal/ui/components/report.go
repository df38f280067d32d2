package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/progress"
	"github.com/abhisek/studyforge/internal/spacedrep"
	"github.com/abhisek/studyforge/internal/ui/theme"
	"github.com/abhisek/studyforge/internal/xp"
)

func row(label, value string) string {
	return theme.Label.Width(18).Render(label) + theme.Value.Render(value)
}

// StatsCard renders a learner's stats with a level progress bar.
func StatsCard(v progress.StatsView, width int) string {
	lines := []string{
		theme.Title.Render("Progress · " + v.LearnerID),
		"",
		row("Level", fmt.Sprintf("%d", v.Level.Level)),
		NewProgressBar("", v.Level.Progress, false, width-8).View(),
		theme.Hint.Render(fmt.Sprintf("%d / %d XP to level %d (%d total)",
			v.Level.XPInLevel, v.Level.XPForNext, v.Level.Level+1, xp.XPForLevel(v.Level.Level+1))),
		"",
		row("Total XP", fmt.Sprintf("%d", v.XP)),
		row("Streak", theme.Streak.Render(fmt.Sprintf("%d day(s)", v.Streak))),
		row("Longest streak", fmt.Sprintf("%d", v.LongestStreak)),
		row("Next milestone", fmt.Sprintf("%d", v.NextMilestone)),
		row("Answered", fmt.Sprintf("%d", v.TotalAnswered)),
		row("Correct", fmt.Sprintf("%d", v.TotalCorrect)),
		row("Accuracy", fmt.Sprintf("%.1f%%", v.Accuracy)),
		row("Quizzes", fmt.Sprintf("%d", v.TotalQuizzesCompleted)),
	}
	return theme.Card.Width(width).Render(strings.Join(lines, "\n"))
}

// MasteryTable renders one bar per topic, best topic first.
func MasteryTable(topics []mastery.TopicMastery, width int) string {
	if len(topics) == 0 {
		return theme.Hint.Render("No topics yet.")
	}

	labelWidth := 0
	for _, tm := range topics {
		if w := lipgloss.Width(tm.Topic); w > labelWidth {
			labelWidth = w
		}
	}

	lines := []string{theme.Heading.Render("Topic mastery")}
	for _, tm := range topics {
		bar := ProgressBar{
			Label:       tm.Topic,
			LabelWidth:  labelWidth,
			Fraction:    tm.Mastery,
			ShowPercent: true,
			Width:       width - 10,
		}
		lines = append(lines, bar.View()+"  "+theme.Tier(tm.Suggested).Render(string(tm.Suggested)))
	}
	return strings.Join(lines, "\n")
}

// ReviewList renders the due items of a review queue.
func ReviewList(queue []*spacedrep.ReviewState, now time.Time) string {
	if len(queue) == 0 {
		return theme.Hint.Render("Nothing due for review.")
	}

	lines := []string{theme.Heading.Render(fmt.Sprintf("Due for review (%d)", len(queue)))}
	for _, rs := range queue {
		status := rs.Status(now)
		style := theme.Label
		if status == spacedrep.ReviewOverdue {
			style = theme.Incorrect
		}
		lines = append(lines, fmt.Sprintf("  %-20s %-14s %s  %s",
			rs.ItemID, rs.Topic,
			theme.Tier(rs.Difficulty).Render(string(rs.Difficulty)),
			style.Render(fmt.Sprintf("%s, %.1f days", status, rs.OverdueDays(now))),
		))
	}
	return strings.Join(lines, "\n")
}

// AnswerLine summarizes one submitted answer.
func AnswerLine(itemID string, res *progress.AnswerResult) string {
	mark := theme.Correct.Render("✓")
	if !res.Review.Correct {
		mark = theme.Incorrect.Render("✗")
	}
	days := res.Review.IntervalDays
	if res.Review.AnsweredAt != nil {
		days = res.Review.DaysUntilReview(*res.Review.AnsweredAt)
	}
	line := fmt.Sprintf("%s %-20s +%d XP  streak %d (%s)  next review in %d day(s)",
		mark, itemID, res.Award.XPEarned, res.Stats.Streak, res.Streak, days)
	if res.MilestoneReached {
		line += "  " + theme.Streak.Render(fmt.Sprintf("milestone: %d days!", res.Stats.Streak))
	}
	return line
}

// QuizList renders quiz summaries, newest first.
func QuizList(quizzes []progress.QuizSummary) string {
	if len(quizzes) == 0 {
		return theme.Hint.Render("No quizzes yet.")
	}

	lines := []string{theme.Heading.Render("Recent quizzes")}
	for _, q := range quizzes {
		lines = append(lines, QuizLine(q))
	}
	return strings.Join(lines, "\n")
}

// QuizLine summarizes one quiz.
func QuizLine(q progress.QuizSummary) string {
	state := theme.Hint.Render("open")
	if q.Completed {
		state = theme.Correct.Render("done")
	}
	return fmt.Sprintf("  %-16s %-14s %s  %d/%d answered, %d correct  %s  %s",
		q.QuizID, q.Topic,
		theme.Tier(q.Difficulty).Render(string(q.Difficulty)),
		q.Answered, q.Total, q.Correct,
		theme.Value.Render(fmt.Sprintf("%.1f%%", q.Score)),
		state,
	)
}

// LeaderboardTable renders ranked entries. A non-nil me whose learner is
// not among the entries is appended below them.
func LeaderboardTable(kind leaderboard.Kind, entries []leaderboard.Entry, me *leaderboard.Entry) string {
	title := "Top XP"
	if kind == leaderboard.KindStreak {
		title = "Longest streaks"
	}
	if len(entries) == 0 {
		return theme.Heading.Render(title) + "\n" + theme.Hint.Render("No learners ranked yet.")
	}

	lines := []string{theme.Heading.Render(title)}
	listed := false
	for _, e := range entries {
		line := fmt.Sprintf("%3d. %-24s %s", e.Rank, e.LearnerID, theme.Value.Render(fmt.Sprintf("%d", e.Score)))
		if me != nil && e.LearnerID == me.LearnerID {
			line = theme.Highlight.Render(line)
			listed = true
		}
		lines = append(lines, line)
	}
	if me != nil && !listed {
		lines = append(lines, theme.Hint.Render("  ..."))
		if me.Rank == 0 {
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("     %-24s unranked", me.LearnerID)))
		} else {
			lines = append(lines, theme.Highlight.Render(fmt.Sprintf("%3d. %-24s %d", me.Rank, me.LearnerID, me.Score)))
		}
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}
