// Package server exposes the progress engine over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/abhisek/studyforge/internal/difficulty"
	"github.com/abhisek/studyforge/internal/ingest"
	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/mastery"
	"github.com/abhisek/studyforge/internal/progress"
	"github.com/abhisek/studyforge/internal/spacedrep"
)

// Engine is the subset of progress.Engine the HTTP layer needs.
type Engine interface {
	RegisterItem(ctx context.Context, learnerID string, item progress.Item) (*spacedrep.ReviewState, error)
	SubmitAnswer(ctx context.Context, a progress.Answer) (*progress.AnswerResult, error)
	RequestHint(ctx context.Context, learnerID, itemID string, level int) (*progress.HintResult, error)
	CompleteQuiz(ctx context.Context, learnerID, quizID string) (*progress.QuizCompletion, error)
	Quiz(ctx context.Context, learnerID, quizID string) (*progress.QuizSummary, error)
	Stats(ctx context.Context, learnerID string) (progress.StatsView, error)
	Dashboard(ctx context.Context, learnerID string, now time.Time) (*progress.Dashboard, error)
	ReviewQueue(ctx context.Context, learnerID string, now time.Time) ([]*spacedrep.ReviewState, error)
	TopicMastery(ctx context.Context, learnerID string) ([]mastery.TopicMastery, error)
	NextDifficulty(ctx context.Context, learnerID, topic string) (difficulty.Tier, error)
	Leaderboard(ctx context.Context, kind leaderboard.Kind, limit int) ([]leaderboard.Entry, error)
	LeaderboardPosition(ctx context.Context, kind leaderboard.Kind, learnerID string) (leaderboard.Entry, error)
}

// Options configures a Server.
type Options struct {
	DefaultLearner   string
	LeaderboardLimit int
	BodyLimit        int

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer

	Logger *slog.Logger
	Now    func() time.Time
}

// Server wires HTTP routes to an Engine.
type Server struct {
	app    *fiber.App
	engine Engine
	opts   Options
	log    *slog.Logger
}

// New builds the fiber app and registers every route.
func New(engine Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultLearner == "" {
		opts.DefaultLearner = "default"
	}
	if opts.LeaderboardLimit <= 0 {
		opts.LeaderboardLimit = leaderboard.DefaultLimit
	}

	s := &Server{engine: engine, opts: opts, log: opts.Logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "studyforge",
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		// Handlers hand request strings to the engine, which may keep them
		// past the request.
		Immutable:    true,
		ErrorHandler: s.handleError,
	})

	if opts.AccessLog != nil {
		s.app.Use(logger.New(logger.Config{Output: opts.AccessLog}))
	}
	s.app.Use(recover.New())

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api/progress")
	api.Post("/answer", s.handleAnswer)
	api.Post("/hint", s.handleHint)
	api.Post("/items", s.handleRegisterItem)
	api.Post("/quizzes/complete", s.handleCompleteQuiz)
	api.Get("/quizzes/:quizId", s.handleQuiz)
	api.Get("/stats", s.handleStats)
	api.Get("/dashboard", s.handleDashboard)
	api.Get("/review", s.handleReview)
	api.Get("/mastery", s.handleMastery)
	api.Get("/difficulty", s.handleDifficulty)

	board := s.app.Group("/api/leaderboard")
	board.Get("/:kind", s.handleLeaderboard)

	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// learner picks the learner ID from the request body, the learnerId query
// parameter or the configured default, in that order.
func (s *Server) learner(c *fiber.Ctx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if q := c.Query("learnerId"); q != "" {
		return q
	}
	return s.opts.DefaultLearner
}

// handleError maps engine errors to status codes and a JSON body.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := err.Error()

	var fe *fiber.Error
	var ve *ingest.ValidationError
	switch {
	case errors.As(err, &fe):
		status = fe.Code
	case errors.As(err, &ve),
		errors.Is(err, spacedrep.ErrInvalidQuality),
		errors.Is(err, progress.ErrInvalidHintLevel),
		errors.Is(err, progress.ErrInvalidAnswer):
		status = fiber.StatusBadRequest
	case errors.Is(err, progress.ErrUnknownItem),
		errors.Is(err, progress.ErrUnknownQuiz):
		status = fiber.StatusNotFound
	case errors.Is(err, progress.ErrDuplicateAnswer):
		status = fiber.StatusConflict
	case errors.Is(err, progress.ErrNoLeaderboard):
		status = fiber.StatusServiceUnavailable
	default:
		s.log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		msg = "internal error"
	}

	return c.Status(status).JSON(fiber.Map{"error": msg})
}
