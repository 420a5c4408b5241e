package power

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/couchcryptid/climatology-service/internal/domain"
	"github.com/couchcryptid/climatology-service/internal/observability"
)

// DefaultBaseURL is the NASA POWER daily point endpoint.
const DefaultBaseURL = "https://power.larc.nasa.gov/api/temporal/daily/point"

const providerName = "power"

// Client implements domain.SeriesProvider using the NASA POWER API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxElapsed time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger

	// initialInterval overrides the first retry delay when positive.
	initialInterval time.Duration
}

// NewClient creates a NASA POWER client. Transient failures are retried with
// exponential backoff for at most maxElapsed.
func NewClient(baseURL string, timeout, maxElapsed time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		maxElapsed: maxElapsed,
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchSeries downloads the daily history of loc for the inclusive year range.
func (c *Client) FetchSeries(ctx context.Context, loc domain.Location, startYear, endYear int) (domain.RawSeries, error) {
	if endYear < startYear {
		return domain.RawSeries{}, fmt.Errorf("power: end year %d before start year %d", endYear, startYear)
	}
	u := c.requestURL(loc, startYear, endYear)

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		start := time.Now()
		b, err := c.get(ctx, u)
		c.metrics.ProviderAPIDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())
		if err != nil {
			var perm *backoff.PermanentError
			if !errors.As(err, &perm) {
				c.logger.Warn("power request failed, retrying", "attempt", attempt, "error", err)
			}
			return err
		}
		body = b
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	if c.initialInterval > 0 {
		bo.InitialInterval = c.initialInterval
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return domain.RawSeries{}, &domain.ProviderError{Provider: providerName, Err: err}
	}

	series, err := DecodeSeries(bytes.NewReader(body), loc)
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerName, "error").Inc()
		return domain.RawSeries{}, &domain.ProviderError{Provider: providerName, Err: err}
	}
	c.metrics.ProviderRequests.WithLabelValues(providerName, "success").Inc()
	c.logger.Debug("power series fetched",
		"location", loc.String(),
		"start_year", startYear,
		"end_year", endYear,
		"records", len(series.Records),
	)
	return series, nil
}

func (c *Client) requestURL(loc domain.Location, startYear, endYear int) string {
	params := make([]string, len(domain.Variables))
	for i, v := range domain.Variables {
		params[i] = string(v)
	}
	q := url.Values{
		"parameters": {strings.Join(params, ",")},
		"community":  {"AG"},
		"latitude":   {strconv.FormatFloat(loc.Latitude, 'f', 4, 64)},
		"longitude":  {strconv.FormatFloat(loc.Longitude, 'f', 4, 64)},
		"start":      {fmt.Sprintf("%04d0101", startYear)},
		"end":        {fmt.Sprintf("%04d1231", endYear)},
		"format":     {"JSON"},
	}
	return c.baseURL + "?" + q.Encode()
}

// get performs one request. Rate limiting and server errors are retryable;
// every other failure is permanent.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(fmt.Errorf("fetch series: %w", err))
		}
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("fetch series: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, backoff.Permanent(fmt.Errorf("fetch series: status %d: %s", resp.StatusCode, b))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}
