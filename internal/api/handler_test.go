package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-pulse/internal/config"
	"github.com/kurihiro0119/github-pulse/internal/domain"
	apperrors "github.com/kurihiro0119/github-pulse/internal/errors"
	"github.com/kurihiro0119/github-pulse/internal/pulse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// stubRunner records the options it was invoked with
type stubRunner struct {
	report *domain.Report
	err    error
	opts   pulse.Options
	calls  int
}

func (s *stubRunner) Run(ctx context.Context, opts pulse.Options) (*domain.Report, error) {
	s.calls++
	s.opts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Days:      30,
		PageSize:  100,
		RecentCap: 5,
		Strategy:  "api",
	}
}

func serve(runner Runner, method, target string) *httptest.ResponseRecorder {
	handler := NewHandler(runner, testConfig(), testLogger())
	router := SetupRoutes(handler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func sampleReport() *domain.Report {
	return &domain.Report{
		ID:          "test-id",
		Repo:        domain.RepoRef{Owner: "octocat", Name: "hello-world"},
		GeneratedAt: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		Window:      domain.ReportWindow{Days: 7},
		Commits:     domain.Aggregate{Total: 36, ByContributor: map[string]int{}, Recent: []domain.RawRecord{}},
		Issues:      domain.Aggregate{Total: 2, ByContributor: map[string]int{}, Recent: []domain.RawRecord{}},
		Pulls:       domain.Aggregate{Total: 4, ByContributor: map[string]int{}, Recent: []domain.RawRecord{}},
	}
}

func TestGetPulse(t *testing.T) {
	stub := &stubRunner{report: sampleReport()}
	w := serve(stub, http.MethodGet, "/api/v1/repos/octocat/hello-world/pulse?days=7&strategy=api")

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data *domain.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "octocat/hello-world", resp.Data.Repo.FullName())
	assert.Equal(t, 36, resp.Data.Commits.Total)

	assert.Equal(t, domain.RepoRef{Owner: "octocat", Name: "hello-world"}, stub.opts.Repo)
	assert.Equal(t, 7, stub.opts.Window.Days)
	assert.Equal(t, pulse.StrategyAPI, stub.opts.Strategy)
}

func TestGetPulse_ConfigDefaults(t *testing.T) {
	stub := &stubRunner{report: sampleReport()}
	w := serve(stub, http.MethodGet, "/api/v1/repos/octocat/hello-world/pulse")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, stub.opts.Window.Days)
	assert.Equal(t, pulse.StrategyAPI, stub.opts.Strategy)
	assert.Equal(t, 100, stub.opts.PageSize)
	assert.Equal(t, 5, stub.opts.RecentCap)
}

func TestGetPulse_NonIntegerDays(t *testing.T) {
	stub := &stubRunner{report: sampleReport()}
	w := serve(stub, http.MethodGet, "/api/v1/repos/octocat/hello-world/pulse?days=soon")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, stub.calls, "a malformed request must not start a collection run")
}

func TestGetPulse_ErrorStatusMapping(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "rate limited", err: apperrors.NewRateLimitedError("quota gone"), expected: http.StatusTooManyRequests},
		{name: "not found", err: apperrors.NewNotFoundError("repository octocat/missing"), expected: http.StatusNotFound},
		{name: "invalid window", err: apperrors.NewInvalidWindowError(-1), expected: http.StatusBadRequest},
		{name: "bad request", err: apperrors.NewBadRequestError("unknown strategy"), expected: http.StatusBadRequest},
		{name: "upstream request failed", err: apperrors.NewRequestFailedError("commits", "octocat/hello-world", 502), expected: http.StatusBadGateway},
		{name: "scrape failed", err: apperrors.NewScrapeFailedError("div.Box.mt-3", nil), expected: http.StatusBadGateway},
		{name: "internal", err: apperrors.NewInternalError("boom", nil), expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubRunner{err: tc.err}
			w := serve(stub, http.MethodGet, "/api/v1/repos/octocat/hello-world/pulse")

			require.Equal(t, tc.expected, w.Code)

			var resp struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(apperrors.CodeOf(tc.err)), resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	w := serve(&stubRunner{}, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
