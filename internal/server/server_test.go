package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyforge/internal/leaderboard"
	"github.com/abhisek/studyforge/internal/progress"
	"github.com/abhisek/studyforge/internal/store"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, withBoard bool) *Server {
	t.Helper()
	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := progress.Options{Logger: logger, Now: func() time.Time { return testNow }}
	if withBoard {
		opts.Board = leaderboard.NewStoreBoard(st.ProgressRepo())
	}
	engine := progress.NewEngine(st.ProgressRepo(), opts)
	return New(engine, Options{
		DefaultLearner: "ana",
		Logger:         logger,
		Now:            func() time.Time { return testNow.AddDate(0, 0, 2) },
	})
}

func do(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, false)
	status, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestSubmitAnswer(t *testing.T) {
	s := newTestServer(t, false)

	status, body := do(t, s, http.MethodPost, "/api/progress/answer",
		`{"event_id":"e1","item_id":"q1","topic":"Algebra","correct":true}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(5), body["quality"])
	award := body["award"].(map[string]any)
	assert.Equal(t, float64(15), award["xp_earned"])
	stats := body["stats"].(map[string]any)
	assert.Equal(t, "ana", stats["learner_id"], "default learner applies")

	status, body = do(t, s, http.MethodPost, "/api/progress/answer",
		`{"event_id":"e1","item_id":"q1","topic":"Algebra","correct":true}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "duplicate answer")
}

func TestSubmitAnswer_Errors(t *testing.T) {
	s := newTestServer(t, false)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"schema violation", `{"item_id":"q1"}`, http.StatusBadRequest},
		{"malformed json", `{"item_id":`, http.StatusBadRequest},
		{"score out of range", `{"item_id":"q1","correct":true,"score":3}`, http.StatusBadRequest},
		{"unknown item", `{"item_id":"q404","correct":true}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, "/api/progress/answer", tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRegisterItemAndHint(t *testing.T) {
	s := newTestServer(t, false)

	status, body := do(t, s, http.MethodPost, "/api/progress/items?learnerId=ben",
		`{"id":"q1","topic":"Geometry","difficulty":"hard"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "ben", body["learner_id"])
	assert.Equal(t, "hard", body["difficulty"])

	status, body = do(t, s, http.MethodPost, "/api/progress/hint",
		`{"learner_id":"ben","item_id":"q1","level":2}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["hints_used"])
	assert.Equal(t, float64(1), body["remaining"])

	status, _ = do(t, s, http.MethodPost, "/api/progress/hint", `{"learner_id":"ben","item_id":"q1","level":7}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, s, http.MethodPost, "/api/progress/hint", `{"learner_id":"ben","item_id":"nope","level":1}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, s, http.MethodPost, "/api/progress/items", `{"topic":"Geometry"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCompleteQuizAndStats(t *testing.T) {
	s := newTestServer(t, false)

	status, body := do(t, s, http.MethodPost, "/api/progress/quizzes/complete", "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(1), body["stats"].(map[string]any)["total_quizzes_completed"])
	assert.Nil(t, body["quiz"])

	_, _ = do(t, s, http.MethodPost, "/api/progress/answer", `{"item_id":"q1","topic":"Algebra","correct":true}`)
	_, _ = do(t, s, http.MethodPost, "/api/progress/answer", `{"item_id":"q2","topic":"Algebra","correct":false}`)

	status, body = do(t, s, http.MethodGet, "/api/progress/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(50), body["accuracy"])
	assert.Equal(t, float64(17), body["xp"])
	assert.Equal(t, float64(1), body["total_quizzes_completed"])
	level := body["level"].(map[string]any)
	assert.Equal(t, float64(1), level["level"])
}

func TestQuizzes(t *testing.T) {
	s := newTestServer(t, false)

	for _, id := range []string{"q1", "q2"} {
		status, body := do(t, s, http.MethodPost, "/api/progress/items",
			`{"id":"`+id+`","quiz_id":"quiz-1","topic":"Algebra","difficulty":"easy"}`)
		require.Equal(t, http.StatusCreated, status, body)
		assert.Equal(t, "quiz-1", body["quiz_id"])
	}
	status, body := do(t, s, http.MethodPost, "/api/progress/answer",
		`{"item_id":"q1","quiz_id":"quiz-1","correct":true}`)
	require.Equal(t, http.StatusOK, status, body)

	status, body = do(t, s, http.MethodGet, "/api/progress/quizzes/quiz-1", "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["total_items"])
	assert.Equal(t, float64(50), body["score"])
	assert.Equal(t, false, body["completed"])

	status, body = do(t, s, http.MethodPost, "/api/progress/quizzes/complete", `{"quiz_id":"quiz-1"}`)
	require.Equal(t, http.StatusOK, status, body)
	quiz := body["quiz"].(map[string]any)
	assert.Equal(t, true, quiz["completed"])
	assert.Equal(t, "easy", quiz["difficulty"])

	status, body = do(t, s, http.MethodGet, "/api/progress/dashboard", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["recent_quizzes"], 1)

	status, _ = do(t, s, http.MethodGet, "/api/progress/quizzes/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, s, http.MethodPost, "/api/progress/quizzes/complete", `{"quiz_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDashboardReviewAndDifficulty(t *testing.T) {
	s := newTestServer(t, false)

	_, _ = do(t, s, http.MethodPost, "/api/progress/answer", `{"item_id":"a1","topic":"Algebra","correct":true}`)
	_, _ = do(t, s, http.MethodPost, "/api/progress/answer", `{"item_id":"g1","topic":"Geometry","correct":false}`)

	status, body := do(t, s, http.MethodGet, "/api/progress/dashboard", "")
	require.Equal(t, http.StatusOK, status)
	topics := body["topic_mastery"].([]any)
	require.Len(t, topics, 2)
	assert.Equal(t, "Algebra", topics[0].(map[string]any)["topic"])
	assert.Len(t, body["review_queue"], 2)

	status, body = do(t, s, http.MethodGet, "/api/progress/review", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["count"])

	status, body = do(t, s, http.MethodGet, "/api/progress/difficulty?topic=Algebra", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hard", body["difficulty"])

	status, body = do(t, s, http.MethodGet, "/api/progress/mastery", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["topics"], 2)
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t, true)

	_, _ = do(t, s, http.MethodPost, "/api/progress/answer?learnerId=ben", `{"item_id":"q1","topic":"Algebra","correct":true}`)
	_, _ = do(t, s, http.MethodPost, "/api/progress/answer", `{"item_id":"q1","topic":"Algebra","correct":false}`)

	status, body := do(t, s, http.MethodGet, "/api/leaderboard/xp", "")
	require.Equal(t, http.StatusOK, status, body)
	entries := body["entries"].([]any)
	require.Len(t, entries, 2)
	assert.Equal(t, "ben", entries[0].(map[string]any)["learner_id"])

	assert.Nil(t, body["me"])

	status, body = do(t, s, http.MethodGet, "/api/leaderboard/xp?learnerId=ana", "")
	require.Equal(t, http.StatusOK, status, body)
	me := body["me"].(map[string]any)
	assert.Equal(t, "ana", me["learner_id"])
	assert.Equal(t, float64(2), me["rank"])

	status, _ = do(t, s, http.MethodGet, "/api/leaderboard/streak?limit=1", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, s, http.MethodGet, "/api/leaderboard/hints", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, s, http.MethodGet, "/api/leaderboard/xp?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLeaderboardWithoutBoard(t *testing.T) {
	s := newTestServer(t, false)
	status, body := do(t, s, http.MethodGet, "/api/leaderboard/xp", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body["error"], "not configured")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, false)
	status, body := do(t, s, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}
