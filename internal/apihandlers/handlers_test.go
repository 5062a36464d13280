package apihandlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soclisten/internal/app"
	"soclisten/internal/config"
	"soclisten/internal/history"
	"soclisten/internal/models"
	"soclisten/internal/services"
)

type stubSearcher struct {
	posts     []models.Post
	lastLimit int
}

func (s *stubSearcher) Search(ctx context.Context, keywords []string, limit int) ([]models.Post, error) {
	s.lastLimit = limit
	return s.posts, nil
}

type stubClassifier struct{}

func (s *stubClassifier) Classify(ctx context.Context, posts []models.Post) ([]models.AnalysisResult, error) {
	results := make([]models.AnalysisResult, 0, len(posts))
	for _, p := range posts {
		results = append(results, models.AnalysisResult{
			PostID:    p.ID,
			Post:      p,
			Hesitancy: true,
			Sentiment: models.SentimentNegative,
		})
	}
	return results, nil
}

func newTestRouter(searcher services.PostSearcher, classifier services.Classifier) (*gin.Engine, *app.App) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Search.DefaultLimit = 10

	hist := history.NewStore()
	orch := services.NewOrchestrator(searcher, classifier, hist)
	orch.SetPacing(2, 0)

	a := &app.App{
		Config:       cfg,
		Searcher:     searcher,
		Classifier:   classifier,
		History:      hist,
		Orchestrator: orch,
	}

	router := gin.New()
	router.Use(CORSMiddleware())
	h := NewAPIHandler(a)
	router.GET("/", h.RootHandler)
	router.GET("/health", h.HealthHandler)
	router.POST("/api/analyze", h.AnalyzeHandler)
	router.GET("/api/results", h.ResultsHandler)
	return router, a
}

func postAnalyze(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEvents(t *testing.T, body string) []models.StreamEvent {
	t.Helper()
	var events []models.StreamEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev models.StreamEvent
		require.NoError(t, json.Unmarshal([]byte(line), &ev), "line: %s", line)
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	return events
}

func TestAnalyzeHandler_StreamsProgressThenComplete(t *testing.T) {
	searcher := &stubSearcher{posts: []models.Post{
		{ID: "a", Title: "one"},
		{ID: "b", Title: "two"},
		{ID: "c", Title: "three"},
	}}
	router, a := newTestRouter(searcher, &stubClassifier{})

	w := postAnalyze(t, router, `{"keywords": ["measles"], "limit": 3}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	body := w.Body.String()
	events := decodeEvents(t, body)
	require.GreaterOrEqual(t, len(events), 3)

	for _, ev := range events[:len(events)-1] {
		assert.Equal(t, models.StatusProgress, ev.Status)
	}

	// Every serialized progress record carries all three counters, zero or
	// not; strictly-typed consumers rely on the keys being present.
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if !strings.Contains(line, `"status":"progress"`) {
			continue
		}
		assert.Contains(t, line, `"extracted"`)
		assert.Contains(t, line, `"analyzed"`)
		assert.Contains(t, line, `"total"`)
	}
	final := events[len(events)-1]
	require.Equal(t, models.StatusComplete, final.Status)
	require.NotNil(t, final.Data)
	assert.Equal(t, 3, final.Data.TotalAnalyzed)
	assert.InDelta(t, 1.0, final.Data.HesitancyRate, 1e-9)

	assert.Equal(t, 3, a.History.Len())
}

func TestAnalyzeHandler_DefaultLimit(t *testing.T) {
	searcher := &stubSearcher{}
	router, _ := newTestRouter(searcher, &stubClassifier{})

	w := postAnalyze(t, router, `{"keywords": ["measles"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 10, searcher.lastLimit)
}

func TestAnalyzeHandler_BadRequests(t *testing.T) {
	router, _ := newTestRouter(&stubSearcher{}, &stubClassifier{})

	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"no keywords", `{"keywords": [], "limit": 5}`},
		{"negative limit", `{"keywords": ["x"], "limit": -1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postAnalyze(t, router, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAnalyzeHandler_EmptySearchYieldsZeroSummary(t *testing.T) {
	router, _ := newTestRouter(&stubSearcher{}, &stubClassifier{})

	w := postAnalyze(t, router, `{"keywords": ["nothing"], "limit": 5}`)

	events := decodeEvents(t, w.Body.String())
	final := events[len(events)-1]
	require.Equal(t, models.StatusComplete, final.Status)
	require.NotNil(t, final.Data)
	assert.Equal(t, 0, final.Data.TotalAnalyzed)
	assert.Empty(t, final.Data.RecentResults)
}

func TestResultsHandler(t *testing.T) {
	searcher := &stubSearcher{posts: []models.Post{{ID: "a", Title: "one"}}}
	router, _ := newTestRouter(searcher, &stubClassifier{})

	t.Run("empty history", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/results", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
	})

	t.Run("after a run", func(t *testing.T) {
		postAnalyze(t, router, `{"keywords": ["measles"], "limit": 1}`)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/results", nil))

		var results []models.AnalysisResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "a", results[0].PostID)
		assert.True(t, results[0].Hesitancy)
	})
}

func TestRootAndHealth(t *testing.T) {
	router, _ := newTestRouter(&stubSearcher{}, &stubClassifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	router, _ := newTestRouter(&stubSearcher{}, &stubClassifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
