package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"drivesort/internal/logging"
	"drivesort/internal/services"
)

// DefaultBaseURL is the production Microsoft Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const defaultMaxAttempts = 4

// HTTPDoer describes the HTTP client used by the Graph client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies a bearer token for each request.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken adapts a fixed access token into a TokenSource.
type StaticToken string

func (t StaticToken) AccessToken(context.Context) (string, error) {
	return string(t), nil
}

// Client is a Microsoft Graph HTTP client with retry and pagination support.
type Client struct {
	baseURL     string
	httpClient  HTTPDoer
	tokens      TokenSource
	maxAttempts int
	logger      *slog.Logger

	// sleep is overridable so retry tests run instantly.
	sleep func(time.Duration)
}

// NewClient constructs a Graph client. A nil httpClient falls back to
// http.DefaultClient; an empty baseURL falls back to the production endpoint.
func NewClient(baseURL string, tokens TokenSource, httpClient HTTPDoer, logger *slog.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
		tokens:      tokens,
		maxAttempts: defaultMaxAttempts,
		logger:      logging.WithComponent(logger, "graph"),
		sleep:       time.Sleep,
	}
}

// apiError is the error envelope Graph returns on non-2xx responses.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

// Post issues a POST request with a JSON payload.
func (c *Client) Post(ctx context.Context, endpoint string, payload, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, payload, out)
}

// Patch issues a PATCH request with a JSON payload.
func (c *Client) Patch(ctx context.Context, endpoint string, payload, out any) error {
	return c.do(ctx, http.MethodPatch, endpoint, payload, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	url := endpoint
	if !strings.HasPrefix(url, "http") {
		url = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request payload: %w", err)
		}
		body = encoded
	}

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}

		retryable, err := c.doOnce(ctx, method, url, body, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !retryable {
			return err
		}
		lastErr = err
		c.logger.Warn("graph request retrying",
			logging.String("method", method),
			logging.String("url", url),
			logging.Int("attempt", attempt+1),
			logging.Error(err))
	}

	return services.Wrap(services.ErrRemoteUnavailable, "graph", method+" "+endpoint,
		fmt.Sprintf("retries exhausted after %d attempts", c.maxAttempts), lastErr)
}

// doOnce performs a single request. The bool result reports whether the
// failure is worth retrying.
func (c *Client) doOnce(ctx context.Context, method, url string, body []byte, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return false, fmt.Errorf("acquire access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		delay := retryAfter(resp)
		c.logger.Warn("graph rate limited", logging.Duration("retry_after", delay))
		c.sleep(delay)
		return true, fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= http.StatusInternalServerError:
		return true, fmt.Errorf("server error %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return false, services.Wrap(services.ErrNotFound, "graph", method+" "+url, apiMessage(resp), nil)
	case resp.StatusCode >= http.StatusBadRequest:
		return false, fmt.Errorf("graph returned %d: %s", resp.StatusCode, apiMessage(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return false, nil
}

// listPage is one page of a collection response.
type listPage struct {
	Value    []Item `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// GetPaginated fetches every page of a collection endpoint, following
// continuation links, and returns the logical union in page order.
func (c *Client) GetPaginated(ctx context.Context, endpoint string) ([]Item, error) {
	var all []Item
	next := endpoint
	for next != "" {
		var page listPage
		if err := c.Get(ctx, next, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Value...)
		next = page.NextLink
	}
	return all, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if value := resp.Header.Get("Retry-After"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 30 * time.Second
}

func apiMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	var envelope apiError
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		if envelope.Error.Message != "" {
			return envelope.Error.Code + ": " + envelope.Error.Message
		}
		return envelope.Error.Code
	}
	return strings.TrimSpace(string(data))
}

// SetSleepForTests replaces the retry sleeper and returns a restore func.
func (c *Client) SetSleepForTests(sleep func(time.Duration)) func() {
	previous := c.sleep
	if sleep == nil {
		sleep = func(time.Duration) {}
	}
	c.sleep = sleep
	return func() { c.sleep = previous }
}

// SetMaxAttemptsForTests lowers the retry budget and returns a restore func.
func (c *Client) SetMaxAttemptsForTests(attempts int) func() {
	previous := c.maxAttempts
	if attempts > 0 {
		c.maxAttempts = attempts
	}
	return func() { c.maxAttempts = previous }
}
