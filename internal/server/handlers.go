package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/studyforge/internal/ingest"
	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/progress"
)

// handleAnswer handles POST /api/progress/answer. The body is one answer
// event and is validated against the ingest schema.
func (s *Server) handleAnswer(c *fiber.Ctx) error {
	a, err := ingest.DecodeAnswer(c.Body())
	if err != nil {
		return err
	}
	a.LearnerID = s.learner(c, a.LearnerID)

	res, err := s.engine.SubmitAnswer(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// handleHint handles POST /api/progress/hint.
func (s *Server) handleHint(c *fiber.Ctx) error {
	var req struct {
		LearnerID string `json:"learner_id"`
		ItemID    string `json:"item_id"`
		Level     int    `json:"level"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "item_id is required")
	}

	res, err := s.engine.RequestHint(c.UserContext(), s.learner(c, req.LearnerID), req.ItemID, req.Level)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// handleRegisterItem handles POST /api/progress/items.
func (s *Server) handleRegisterItem(c *fiber.Ctx) error {
	var req struct {
		LearnerID string `json:"learner_id"`
		progress.Item
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.ID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "id is required")
	}

	rs, err := s.engine.RegisterItem(c.UserContext(), s.learner(c, req.LearnerID), req.Item)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rs)
}

// handleCompleteQuiz handles POST /api/progress/quizzes/complete. The body
// is optional; without a quiz_id only the completion counter moves.
func (s *Server) handleCompleteQuiz(c *fiber.Ctx) error {
	var req struct {
		LearnerID string `json:"learner_id"`
		QuizID    string `json:"quiz_id"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	res, err := s.engine.CompleteQuiz(c.UserContext(), s.learner(c, req.LearnerID), req.QuizID)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// handleQuiz handles GET /api/progress/quizzes/:quizId.
func (s *Server) handleQuiz(c *fiber.Ctx) error {
	q, err := s.engine.Quiz(c.UserContext(), s.learner(c, ""), c.Params("quizId"))
	if err != nil {
		return err
	}
	return c.JSON(q)
}

// handleStats handles GET /api/progress/stats.
func (s *Server) handleStats(c *fiber.Ctx) error {
	view, err := s.engine.Stats(c.UserContext(), s.learner(c, ""))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// handleDashboard handles GET /api/progress/dashboard.
func (s *Server) handleDashboard(c *fiber.Ctx) error {
	d, err := s.engine.Dashboard(c.UserContext(), s.learner(c, ""), s.opts.Now())
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// handleReview handles GET /api/progress/review.
func (s *Server) handleReview(c *fiber.Ctx) error {
	queue, err := s.engine.ReviewQueue(c.UserContext(), s.learner(c, ""), s.opts.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": queue, "count": len(queue)})
}

// handleMastery handles GET /api/progress/mastery.
func (s *Server) handleMastery(c *fiber.Ctx) error {
	topics, err := s.engine.TopicMastery(c.UserContext(), s.learner(c, ""))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"topics": topics})
}

// handleDifficulty handles GET /api/progress/difficulty?topic=.
func (s *Server) handleDifficulty(c *fiber.Ctx) error {
	topic := c.Query("topic")
	tier, err := s.engine.NextDifficulty(c.UserContext(), s.learner(c, ""), topic)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"topic": topic, "difficulty": tier})
}

// handleLeaderboard handles GET /api/leaderboard/:kind with kind xp or
// streak. A learnerId query adds that learner's own position as "me".
func (s *Server) handleLeaderboard(c *fiber.Ctx) error {
	kind, err := leaderboard.ParseKind(c.Params("kind"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	limit := c.QueryInt("limit", s.opts.LeaderboardLimit)
	if limit < 1 || limit > 100 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit %d outside [1,100]", limit))
	}

	entries, err := s.engine.Leaderboard(c.UserContext(), kind, limit)
	if err != nil {
		return err
	}
	resp := fiber.Map{"board": kind, "entries": entries}

	if id := c.Query("learnerId"); id != "" {
		me, err := s.engine.LeaderboardPosition(c.UserContext(), kind, id)
		if err != nil {
			return err
		}
		resp["me"] = me
	}
	return c.JSON(resp)
}
