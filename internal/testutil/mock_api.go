// Package testutil provides testing utilities for the footystats services.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior of a mock provider endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockFootballAPI is a configurable mock of the football data provider.
type MockFootballAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	RequestsByPath    map[string]int
	LastRequestHeader http.Header
}

// NewMockFootballAPI creates a new mock provider server.
func NewMockFootballAPI() *MockFootballAPI {
	mock := &MockFootballAPI{
		handlers:       make(map[string]func(w http.ResponseWriter, r *http.Request)),
		RequestsByPath: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.RequestsByPath[r.URL.Path]++
		mock.LastRequestHeader = r.Header.Clone()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockFootballAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockFootballAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockFootballAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.RequestsByPath = make(map[string]int)
	m.LastRequestHeader = nil
}

// Requests returns how many requests hit the given path.
func (m *MockFootballAPI) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestsByPath[path]
}

// SetHandler sets a custom handler for a specific path.
func (m *MockFootballAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a static response for a specific path.
func (m *MockFootballAPI) SetResponse(path string, response MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if response.Delay > 0 {
			time.Sleep(response.Delay)
		}
		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}
		if response.StatusCode == 0 {
			response.StatusCode = http.StatusOK
		}
		w.WriteHeader(response.StatusCode)
		fmt.Fprint(w, response.Body)
	})
}

// SetTeamMatchesResponse configures the finished-matches endpoint for a team.
func (m *MockFootballAPI) SetTeamMatchesResponse(teamID string, response MockResponse) {
	m.SetResponse("/v4/teams/"+teamID+"/matches", response)
}

// SetCompetitionsResponse configures the competitions listing endpoint.
func (m *MockFootballAPI) SetCompetitionsResponse(response MockResponse) {
	m.SetResponse("/v4/competitions", response)
}

// SetStandingsResponse configures the standings endpoint for a competition.
func (m *MockFootballAPI) SetStandingsResponse(competitionID int64, response MockResponse) {
	m.SetResponse(fmt.Sprintf("/v4/competitions/%d/standings", competitionID), response)
}

// SetPersonMatchesResponse configures the person matches endpoint.
func (m *MockFootballAPI) SetPersonMatchesResponse(personID string, response MockResponse) {
	m.SetResponse("/v4/persons/"+personID+"/matches", response)
}

// NewHealthyResponse builds a 200 response with a fresh request budget.
func NewHealthyResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"X-Requests-Available-Minute": "9",
			"X-RequestCounter-Reset":      "60",
		},
	}
}

// defaultHandler serves 404 for unconfigured paths.
func (m *MockFootballAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `{"message": "resource not found: %s"}`, r.URL.Path)
}
