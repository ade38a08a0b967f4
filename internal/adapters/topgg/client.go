package topgg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"drop-bot/internal/adapters/metrics"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://top.gg/api"

	// top.gg allows 60 requests per minute per token.
	requestsPerMinute = 60
	requestBurst      = 5
)

var ErrMissingCredentials = errors.New("top.gg token and bot id are required")

type checkResponse struct {
	Voted int `json:"voted"`
}

// Client checks whether a user has voted for the bot on top.gg.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	botID      string
	limiter    *rate.Limiter
}

func NewClient(baseURL, token, botID string) (*Client, error) {
	if token == "" || botID == "" {
		return nil, ErrMissingCredentials
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: NewMetricsRoundTripper(http.DefaultTransport),
		},
		baseURL: baseURL,
		token:   token,
		botID:   botID,
		limiter: newLimiter(),
	}, nil
}

// NewTestClient creates a client with custom base URL for testing.
func NewTestClient(baseURL, token, botID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
		botID:   botID,
		limiter: newLimiter(),
	}
}

func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestBurst)
}

// HasVoted reports whether userID voted for the bot in the last 12 hours.
func (c *Client) HasVoted(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, errors.New("check vote: empty user id")
	}

	u := fmt.Sprintf("%s/bots/%s/check?userId=%s", c.baseURL, url.PathEscape(c.botID), url.QueryEscape(userID))

	var data checkResponse
	if err := c.getAndDecode(ctx, u, &data); err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return data.Voted == 1, nil
}

func (c *Client) getAndDecode(ctx context.Context, url string, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// -- Middleware --

type MetricsRoundTripper struct {
	Proxied http.RoundTripper
}

func NewMetricsRoundTripper(proxied http.RoundTripper) *MetricsRoundTripper {
	if proxied == nil {
		proxied = http.DefaultTransport
	}
	return &MetricsRoundTripper{Proxied: proxied}
}

func (mrt *MetricsRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := mrt.Proxied.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	metrics.TopGGRequestDuration.WithLabelValues("check", status).Observe(duration)
	metrics.TopGGRequests.WithLabelValues("check", status).Inc()

	return resp, err
}
