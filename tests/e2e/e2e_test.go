//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite runs end-to-end API tests against a running runs API instance
type E2ETestSuite struct {
	suite.Suite
	baseURL string
	scope   string
	client  *http.Client
}

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type run struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}

func (s *E2ETestSuite) SetupSuite() {
	s.baseURL = os.Getenv("RUNS_API_URL")
	if s.baseURL == "" {
		s.baseURL = "http://localhost:8888"
	}

	s.client = &http.Client{
		Timeout: 30 * time.Second,
	}

	// Wait for API to be ready
	s.waitForAPI()
}

func (s *E2ETestSuite) SetupTest() {
	// Runs are never deleted, so every test writes to a fresh scope.
	s.scope = fmt.Sprintf("e2e-%d", time.Now().UnixNano())
}

func (s *E2ETestSuite) waitForAPI() {
	maxAttempts := 30
	for i := 0; i < maxAttempts; i++ {
		resp, err := s.client.Get(s.baseURL + "/readyz")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(1 * time.Second)
	}
	s.T().Fatal("API failed to become ready within timeout")
}

// ============ HELPER METHODS ============

func (s *E2ETestSuite) doRequest(method, path string, body io.Reader) *http.Response {
	req, err := http.NewRequest(method, s.baseURL+path, body)
	require.NoError(s.T(), err)

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), resp.Header.Get("X-Request-ID"), "%s %s", method, path)
	return resp
}

func (s *E2ETestSuite) createRun(target string) *http.Response {
	body, err := json.Marshal(map[string]string{"target": target})
	require.NoError(s.T(), err)
	return s.doRequest(http.MethodPost, "/api/runs/"+s.scope, bytes.NewReader(body))
}

func (s *E2ETestSuite) parseResponse(resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	if v != nil {
		err = json.Unmarshal(body, v)
		require.NoError(s.T(), err, "Failed to parse response: %s", string(body))
	}
}

// ============ HEALTH CHECK TESTS ============

func (s *E2ETestSuite) TestHealthEndpoint() {
	resp := s.doRequest(http.MethodGet, "/health", nil)
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	s.parseResponse(resp, &result)
	assert.Equal(s.T(), "healthy", result["status"])
}

// ============ RUN TESTS ============

func (s *E2ETestSuite) TestRunLifecycle() {
	targets := []string{"pit", "cows", "baal"}

	var created []run
	for _, target := range targets {
		resp := s.createRun(target)
		require.Equal(s.T(), http.StatusOK, resp.StatusCode)

		var r run
		s.parseResponse(resp, &r)
		assert.Equal(s.T(), target, r.Category)
		created = append(created, r)
	}

	resp := s.doRequest(http.MethodGet, "/api/runs/"+s.scope, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var listed []run
	s.parseResponse(resp, &listed)
	require.Len(s.T(), listed, len(created))
	for i := range created {
		assert.Equal(s.T(), created[i].ID, listed[i].ID)
		assert.Equal(s.T(), created[i].Category, listed[i].Category)
	}
}

func (s *E2ETestSuite) TestEmptyScope() {
	resp := s.doRequest(http.MethodGet, "/api/runs/"+s.scope, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(s.T(), err)
	assert.JSONEq(s.T(), `[]`, string(body))
}

// ============ ERROR TESTS ============

func (s *E2ETestSuite) TestErrorEnvelopes() {
	tests := []struct {
		name     string
		resp     func() *http.Response
		status   int
		expected envelope
	}{
		{
			name:     "unknown target",
			resp:     func() *http.Response { return s.createRun("diablo") },
			status:   http.StatusUnprocessableEntity,
			expected: envelope{Code: 20001, Message: `unknown run target "diablo"`},
		},
		{
			name: "malformed body",
			resp: func() *http.Response {
				return s.doRequest(http.MethodPost, "/api/runs/"+s.scope, strings.NewReader(`{"target":`))
			},
			status:   http.StatusUnprocessableEntity,
			expected: envelope{Code: 422, Message: "failed to process request body"},
		},
		{
			name: "body too large",
			resp: func() *http.Response {
				return s.doRequest(http.MethodPost, "/api/runs/"+s.scope, strings.NewReader(strings.Repeat(" ", 2048)))
			},
			status:   http.StatusBadRequest,
			expected: envelope{Code: 400, Message: "request body is too large"},
		},
		{
			name:     "unknown route",
			resp:     func() *http.Response { return s.doRequest(http.MethodGet, "/api/nothing", nil) },
			status:   http.StatusNotFound,
			expected: envelope{Code: 404, Message: "not found"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp := tt.resp()
			assert.Equal(s.T(), tt.status, resp.StatusCode)

			var env envelope
			s.parseResponse(resp, &env)
			assert.Equal(s.T(), tt.expected, env)
		})
	}
}

func (s *E2ETestSuite) TestRequestIDsAreDistinct() {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		resp := s.doRequest(http.MethodGet, "/livez", nil)
		resp.Body.Close()
		seen[resp.Header.Get("X-Request-ID")] = struct{}{}
	}
	assert.Len(s.T(), seen, 20)
}
