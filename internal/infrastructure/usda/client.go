package usda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kmfahey/nutritracker/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	maxAttempts      = 3
	maxResponseBytes = 10 << 20
	maxErrorBytes    = 512
	searchPageSize   = 50
	searchDataTypes  = domain.DataTypeBranded + "," + domain.DataTypeSRLegacy
)

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// Option customizes a Client
type Option func(*Client)

// WithLogger sets the logger the client reports through
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRateLimit replaces the default limiter. The FDC quota is expressed per
// hour; rate.Limit is per second.
func WithRateLimit(requestsPerHour float64, burst int) Option {
	return func(c *Client) {
		if requestsPerHour > 0 && burst > 0 {
			c.rateLimiter = rate.NewLimiter(rate.Limit(requestsPerHour/3600), burst)
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new FDC API client
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
		// 1000 requests per hour, burst of 10
		rateLimiter: rate.NewLimiter(rate.Limit(1000.0/3600), 10),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		c.logger.Sugar().Infof(format, args...)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// getJSON performs a rate-limited GET against path and decodes the body into
// out. Transport errors, 429 and 5xx are retried with exponential backoff;
// 404 maps to ErrFoodNotFound and other statuses fail immediately.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, exponentialBackoff(attempt-1)); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrFDCAPIFailure, err)
			}
		}
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "nutritracker/1.0")
		req.Header.Set("Accept", "application/json")

		c.debugLog("GET %s (attempt %d)", path, attempt)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", domain.ErrFDCAPIFailure, ctx.Err())
			}
			c.logger.Warn("request failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
			lastErr = fmt.Errorf("%w: %v", domain.ErrFDCAPIFailure, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBytes)
			resp.Body.Close()
			c.logger.Warn("api error",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", body),
			)
			if resp.StatusCode == http.StatusNotFound {
				return domain.ErrFoodNotFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFDCAPIFailure, resp.StatusCode)
			if retryable(resp.StatusCode) {
				continue
			}
			return lastErr
		}

		body, err := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrFDCAPIFailure, err)
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			c.logger.Error("decode failed", zap.String("path", path), zap.Error(err))
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	c.logger.Error("all retries failed", zap.String("path", path), zap.Error(lastErr))
	return lastErr
}

// SearchFoods searches the Branded and SR Legacy data types. An empty result
// set is not an error.
func (c *Client) SearchFoods(ctx context.Context, query string) (*domain.FDCSearchResponse, error) {
	c.debugLog("SearchFoods called with query: %q", query)

	params := url.Values{}
	params.Set("query", query)
	params.Set("dataType", searchDataTypes)
	params.Set("pageSize", strconv.Itoa(searchPageSize))

	var searchResp domain.FDCSearchResponse
	if err := c.getJSON(ctx, "/v1/foods/search", params, &searchResp); err != nil {
		return nil, err
	}

	c.logger.Debug("search complete", zap.String("query", query), zap.Int("hits", len(searchResp.Foods)))
	return &searchResp, nil
}

// GetFoodDetails retrieves the full detail payload for one FDC id
func (c *Client) GetFoodDetails(ctx context.Context, fdcID int) (*domain.FDCFood, error) {
	if fdcID <= 0 {
		return nil, fmt.Errorf("%w: fdc id %d", domain.ErrInvalidRequest, fdcID)
	}

	var food domain.FDCFood
	err := c.getJSON(ctx, fmt.Sprintf("/v1/food/%d", fdcID), url.Values{}, &food)
	if errors.Is(err, domain.ErrFoodNotFound) {
		return nil, fmt.Errorf("%w: fdc id %d", domain.ErrFoodNotFound, fdcID)
	}
	if err != nil {
		return nil, err
	}

	c.debugLog("fetched fdc %d (%s)", fdcID, food.DataType)
	return &food, nil
}
