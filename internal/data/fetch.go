package data

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fuel-rl/internal/logger"
	"fuel-rl/internal/model"

	"github.com/rs/zerolog"
)

// maxBodyBytes bounds a downloaded dataset. The full weekly series since
// 2003 is well under 100 KB.
const maxBodyBytes = 32 << 20

// Fetcher downloads fuel price tables over HTTP.
type Fetcher struct {
	Client *http.Client
	Cache  *ResponseCache
	log    zerolog.Logger
}

// NewFetcher uses a 30s timeout when timeout is zero and the process
// cache from GetCache.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
		Cache:  GetCache(),
		log:    logger.For("fetch"),
	}
}

// FetchError is a non-2xx answer from the dataset host.
type FetchError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
}

func (e *FetchError) Error() string { return e.Message }

// Fetch returns the raw body at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url is required")
	}
	key := CacheKey(url)
	if body, ok := f.Cache.Get(key); ok {
		f.log.Debug().Str("url", url).Int("bytes", len(body)).Msg("cache hit")
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, application/json;q=0.9, */*;q=0.1")

	start := time.Now()
	resp, err := f.Client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Dur("duration", elapsed).Msg("request failed")
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	f.log.Info().Str("url", url).Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("response")

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, &FetchError{StatusCode: resp.StatusCode, Code: "NOT_FOUND", Message: fmt.Sprintf("dataset not found at %s", url)}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &FetchError{StatusCode: resp.StatusCode, Code: "UNAUTHORIZED", Message: "access to the dataset was denied"}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Code:       "SOURCE_ERROR",
			Message:    fmt.Sprintf("source returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response larger than %d bytes", maxBodyBytes)
	}
	f.Cache.Set(key, body)
	return body, nil
}

// FetchDataset downloads and parses a fuel price CSV.
func (f *Fetcher) FetchDataset(ctx context.Context, url string) (*model.Dataset, []byte, error) {
	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	ds, err := ParseFuelCSV(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", url, err)
	}
	f.log.Info().Str("url", url).Int("rows", ds.Len()).Msg("fetched fuel prices")
	return ds, body, nil
}
