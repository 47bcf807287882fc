// Package footballdata provides the HTTP client for the external football
// data provider, with request budget gating, error classification, and
// structured logging. It deliberately carries no retry logic: a failed
// upstream call fails the whole request outward to its caller.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matchpulse/footystats/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production endpoint of the data provider.
const DefaultBaseURL = "https://api.football-data.org"

// Prometheus metrics for upstream requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "footballdata_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "footballdata_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "footballdata_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Client talks to the football data provider.
type Client struct {
	httpClient *http.Client
	budget     *ratelimit.Tracker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the data provider. Defaults to DefaultBaseURL.
	BaseURL string

	// APIToken is sent as the X-Auth-Token header.
	APIToken string

	// Redis client for shared budget state. When nil, budget gating is
	// disabled (unit tests, offline tools).
	Redis *redis.Client

	// Timeout per upstream request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, apiToken string) Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		APIToken: apiToken,
		Redis:    redisClient,
		Timeout:  30 * time.Second,
	}
}

// New creates a new football data client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "footballdata-client").Logger()

	var budget *ratelimit.Tracker
	if cfg.Redis != nil {
		budget = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		budget:     budget,
		config:     cfg,
		logger:     logger,
	}, nil
}

// GetLastMatchesFinished fetches the team's most recent finished matches,
// newest first, bounded by limit.
func (c *Client) GetLastMatchesFinished(ctx context.Context, teamID string, limit int) ([]Match, error) {
	endpoint := fmt.Sprintf("/v4/teams/%s/matches", teamID)
	query := fmt.Sprintf("status=FINISHED&limit=%d", limit)

	var out MatchesResponse
	if err := c.getJSON(ctx, endpoint, query, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// GetCompetitions fetches the full competitions listing.
func (c *Client) GetCompetitions(ctx context.Context) ([]Competition, error) {
	var out CompetitionsResponse
	if err := c.getJSON(ctx, "/v4/competitions", "", &out); err != nil {
		return nil, err
	}
	return out.Competitions, nil
}

// GetStandings fetches the standings tables of a competition.
func (c *Client) GetStandings(ctx context.Context, competitionID int64) (*StandingsResponse, error) {
	endpoint := fmt.Sprintf("/v4/competitions/%d/standings", competitionID)

	var out StandingsResponse
	if err := c.getJSON(ctx, endpoint, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPersonMatches fetches a player's most recent matches, bounded by limit.
func (c *Client) GetPersonMatches(ctx context.Context, personID string, limit int) ([]Match, error) {
	endpoint := fmt.Sprintf("/v4/persons/%s/matches", personID)
	query := fmt.Sprintf("limit=%d", limit)

	var out MatchesResponse
	if err := c.getJSON(ctx, endpoint, query, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// getJSON performs a budget-gated GET against the provider and decodes the
// JSON response body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, query string, out any) error {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: budget gate
	if c.budget != nil {
		allowed, err := c.budget.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Budget check failed")
			return fmt.Errorf("budget check: %w", err)
		}
		if !allowed {
			c.logger.Warn().Str("endpoint", endpoint).Msg("Request blocked by budget gate")
			requestsTotal.WithLabelValues(endpoint, "budget_blocked").Inc()
			return ErrRequestBlocked
		}
	}

	// Step 2: build request
	url := c.config.BaseURL + endpoint
	if query != "" {
		url += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.config.APIToken != "" {
		req.Header.Set("X-Auth-Token", c.config.APIToken)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("endpoint", endpoint).Msg("Executing upstream request")

	// Step 3: execute (single attempt, no retries)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()

		// An interrupted wait is a distinct failure category.
		if ctx.Err() != nil {
			c.logger.Warn().Str("endpoint", endpoint).Msg("Upstream wait interrupted")
			return &APIError{
				Class:    ErrorClassNetwork,
				Endpoint: endpoint,
				Message:  "request interrupted",
				Err:      fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err()),
			}
		}

		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Upstream request failed")
		return &APIError{
			Class:    ErrorClassNetwork,
			Endpoint: endpoint,
			Message:  "request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	// Step 4: record budget headers
	if c.budget != nil {
		if err := c.budget.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update budget from headers")
		}
	}

	// Step 5: non-2xx is a transport failure
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")

		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Endpoint:   endpoint,
			Message:    resp.Status,
		}
	}

	requestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	// Step 6: decode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Endpoint:   endpoint,
			Message:    "read response body",
			Err:        err,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
		return &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassServer,
			Endpoint:   endpoint,
			Message:    "decode response body",
			Err:        err,
		}
	}

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
