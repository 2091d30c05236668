package taf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/skyops/tafboard/internal/upstream"
	"github.com/skyops/tafboard/pkg/logger"
)

// Client fetches TAF data in batches from the aviation weather API.
// One request covers an entire airport set regardless of its size.
type Client struct {
	baseURL    string
	maxRetries int
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new batch TAF client.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.Named("taf-client"),
	}
}

// FetchTAF fetches TAF reports for the given airport set with a single
// batched request. Every requested code maps to exactly one result:
// a populated record, an explicit no-data marker, or - when the batch
// itself fails - a uniform error marker. It never returns partial data
// reconstructed from a failed response.
func (c *Client) FetchTAF(ctx context.Context, codes []string) map[string]FetchResult {
	unique := dedupeCodes(codes)
	results := make(map[string]FetchResult, len(unique))
	if len(unique) == 0 {
		return results
	}

	reqURL := fmt.Sprintf("%s/taf?ids=%s&format=raw", c.baseURL, url.QueryEscape(strings.Join(unique, ",")))

	body, fetchErr := c.fetchWithRetry(ctx, reqURL)
	if fetchErr != nil {
		c.logger.Error("Batch TAF fetch failed",
			logger.Int("airports", len(unique)),
			logger.String("kind", string(fetchErr.Kind)),
			logger.Error(fetchErr))
		for _, code := range unique {
			results[code] = FetchResult{Status: upstream.StatusError, Err: fetchErr}
		}
		return results
	}

	reports := SplitReports(body)
	now := time.Now().UTC()
	var missing int
	for _, code := range unique {
		text, ok := reports[code]
		if !ok {
			missing++
			results[code] = FetchResult{Status: upstream.StatusNoData}
			continue
		}
		results[code] = FetchResult{
			Status: upstream.StatusOK,
			Record: &RawRecord{AirportCode: code, Text: text, FetchedAt: now},
		}
	}

	c.logger.Debug("Batch TAF fetch completed",
		logger.Int("requested", len(unique)),
		logger.Int("received", len(unique)-missing),
		logger.Int("no_data", missing))
	return results
}

// fetchWithRetry performs the HTTP request with exponential backoff
// between attempts, classifying the terminal failure by kind.
func (c *Client) fetchWithRetry(ctx context.Context, reqURL string) (string, *upstream.Error) {
	var lastErr *upstream.Error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
			c.logger.Info("Retrying TAF fetch",
				logger.Int("attempt", attempt),
				logger.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return "", upstream.NewError(upstream.KindTimeout, ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return "", upstream.NewError(upstream.KindBadResponse, err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = upstream.NewError(classifyTransportError(err), err)
			c.logger.Warn("TAF request failed, may retry",
				logger.Error(err),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.maxRetries+1))
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = upstream.NewError(upstream.KindBadResponse, err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = upstream.NewError(upstream.KindBadResponse, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
			c.logger.Warn("TAF API returned non-OK status, may retry",
				logger.Int("status_code", resp.StatusCode),
				logger.Int("attempt", attempt+1),
				logger.Int("max_attempts", c.maxRetries+1))
			continue
		}

		return string(body), nil
	}

	return "", lastErr
}

func classifyTransportError(err error) upstream.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return upstream.KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return upstream.KindTimeout
	}
	return upstream.KindNetwork
}

// dedupeCodes uppercases, deduplicates and sorts the requested airport
// codes so one batch never issues duplicate codes and builds stable URLs.
func dedupeCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	unique := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}
	sort.Strings(unique)
	return unique
}
