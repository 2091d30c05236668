package notam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skyops/tafboard/internal/upstream"
	"github.com/skyops/tafboard/pkg/logger"
)

// Environment fallbacks for the client credential pair when no
// credentials file is configured. Credentials are supplied externally
// and never embedded in responses or config files checked into VCS.
const (
	envClientID     = "FAA_CLIENT_ID"
	envClientSecret = "FAA_CLIENT_SECRET"
)

// tokenRefreshMargin renews the cached token slightly before it expires
// so an in-flight request never carries a stale one.
const tokenRefreshMargin = 60 * time.Second

// Client fetches NOTAMs in batches from the FAA NOTAM API using OAuth2
// client-credentials authentication with token caching.
type Client struct {
	baseURL         string
	credentialsPath string
	httpClient      *http.Client
	logger          *logger.Logger

	// Cached bearer token (to reduce repeated token requests)
	token       string
	tokenExpiry time.Time
	tokenMu     sync.Mutex
}

// credentials is the on-disk JSON credential layout.
type credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// apiResponse mirrors the FAA batch NOTAM response envelope.
type apiResponse struct {
	Status string `json:"status"`
	Data   struct {
		GeoJSON []apiFeature `json:"geojson"`
	} `json:"data"`
}

type apiFeature struct {
	Properties struct {
		CoreNOTAMData struct {
			Notam            notamPayload `json:"notam"`
			NotamTranslation []struct {
				FormattedText string `json:"formattedText"`
			} `json:"notamTranslation"`
		} `json:"coreNOTAMData"`
	} `json:"properties"`
}

// NewClient creates a new FAA NOTAM client.
func NewClient(baseURL, credentialsPath string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		credentialsPath: credentialsPath,
		httpClient:      &http.Client{Timeout: timeout},
		logger:          log.Named("notam-client"),
	}
}

// FetchNOTAMs fetches active NOTAMs for the given airport set with a
// single batched request and groups them per airport. Cancellation
// NOTAMs (NOTAMC) are discarded before they reach any consumer, and
// runway notices are ranked first within their airport group. A batch
// failure yields a uniform error marker for every requested code.
func (c *Client) FetchNOTAMs(ctx context.Context, codes []string) map[string]Result {
	unique := dedupeCodes(codes)
	results := make(map[string]Result, len(unique))
	if len(unique) == 0 {
		return results
	}

	features, fetchErr := c.fetchBatch(ctx, unique)
	if fetchErr != nil {
		c.logger.Error("Batch NOTAM fetch failed",
			logger.Int("airports", len(unique)),
			logger.String("kind", string(fetchErr.Kind)),
			logger.Error(fetchErr))
		for _, code := range unique {
			results[code] = Result{Status: upstream.StatusError, Err: fetchErr}
		}
		return results
	}

	grouped := make(map[string][]StructuredNotam)
	var cancelled int
	for _, feature := range features {
		core := feature.Properties.CoreNOTAMData
		if strings.TrimSpace(core.Notam.Type) == typeCodeCancel {
			cancelled++
			continue
		}

		var formatted string
		if len(core.NotamTranslation) > 0 {
			formatted = core.NotamTranslation[0].FormattedText
		}
		n := structure(core.Notam, formatted)
		if n.Location == "" {
			// Without a location the record cannot be grouped; dropping
			// one malformed NOTAM must not affect the rest of the batch.
			c.logger.Warn("Skipping NOTAM without location", logger.String("id", n.ID))
			continue
		}
		grouped[n.Location] = append(grouped[n.Location], n)
	}

	for _, code := range unique {
		notams := grouped[code]
		SortRunwayFirst(notams)
		results[code] = Result{Status: upstream.StatusOK, Notams: notams}
	}

	c.logger.Debug("Batch NOTAM fetch completed",
		logger.Int("requested", len(unique)),
		logger.Int("notams", len(features)),
		logger.Int("cancelled_dropped", cancelled))
	return results
}

func (c *Client) fetchBatch(ctx context.Context, codes []string) ([]apiFeature, *upstream.Error) {
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	c.tokenMu.Lock()
	token := c.token
	c.tokenMu.Unlock()

	reqURL := fmt.Sprintf("%s/nmsapi/v1/notams?location=%s", c.baseURL, url.QueryEscape(strings.Join(codes, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, upstream.NewError(upstream.KindBadResponse, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("nmsResponseFormat", "GEOJSON")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.NewError(classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstream.NewError(upstream.KindBadResponse, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, upstream.NewError(upstream.KindBadResponse, fmt.Errorf("failed to decode NOTAM response: %w", err))
	}
	if parsed.Status != "Success" {
		return nil, upstream.NewError(upstream.KindBadResponse, fmt.Errorf("upstream reported status %q", parsed.Status))
	}

	return parsed.Data.GeoJSON, nil
}

// authenticate obtains a bearer token via the OAuth2 client-credentials
// flow, reusing the cached token until shortly before it expires.
func (c *Client) authenticate(ctx context.Context) *upstream.Error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return nil
	}

	creds, err := c.loadCredentials()
	if err != nil {
		return upstream.NewError(upstream.KindBadResponse, err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	tokenURL := c.baseURL + "/v1/auth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return upstream.NewError(upstream.KindBadResponse, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.ClientID, creds.ClientSecret)

	c.logger.Debug("Requesting FAA OAuth2 token", logger.String("token_url", tokenURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream.NewError(classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return upstream.NewError(upstream.KindBadResponse, fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return upstream.NewError(upstream.KindBadResponse, fmt.Errorf("failed to decode token response: %w", err))
	}
	if tok.AccessToken == "" {
		return upstream.NewError(upstream.KindBadResponse, errors.New("token response did not contain access_token"))
	}

	expiresIn := tok.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 1799
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return nil
}

// loadCredentials reads the client credential pair from the configured
// JSON file, falling back to environment variables when no file exists.
func (c *Client) loadCredentials() (*credentials, error) {
	if c.credentialsPath != "" {
		if _, err := os.Stat(c.credentialsPath); err == nil {
			b, err := os.ReadFile(c.credentialsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read FAA credentials: %w", err)
			}
			var creds credentials
			if err := json.Unmarshal(b, &creds); err != nil {
				return nil, fmt.Errorf("invalid FAA credentials JSON: %w", err)
			}
			if creds.ClientID == "" || creds.ClientSecret == "" {
				return nil, errors.New("FAA credentials must contain client_id and client_secret")
			}
			return &creds, nil
		}
		c.logger.Warn("FAA credentials file not found, falling back to environment",
			logger.String("path", c.credentialsPath))
	}

	creds := &credentials{
		ClientID:     os.Getenv(envClientID),
		ClientSecret: os.Getenv(envClientSecret),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("no FAA credentials available (set %s/%s or configure credentials_path)", envClientID, envClientSecret)
	}
	return creds, nil
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
