// Package amadeus implements the offer client against the Amadeus
// self-service flight-offers API.
package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/farewatch/farewatch/internal/cache"
	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/infrastructure/logger"
	"github.com/farewatch/farewatch/internal/infrastructure/ratelimit"
	"github.com/farewatch/farewatch/internal/infrastructure/retry"
	"github.com/farewatch/farewatch/internal/infrastructure/timeutil"
)

const (
	// DefaultBaseURL points at the provider's test environment. Production
	// credentials require the production host instead.
	DefaultBaseURL = "https://test.api.amadeus.com"

	tokenPath  = "/v1/security/oauth2/token"
	offersPath = "/v2/shopping/flight-offers"

	// tokenSafetyMargin is subtracted from the advertised token lifetime so
	// a token is never used right at its expiry edge.
	tokenSafetyMargin = 5 * time.Minute

	defaultHTTPTimeout = 30 * time.Second
)

// errStaleToken marks a request rejected for an expired access token. It
// never escapes the client: the query layer refreshes and retries once.
var errStaleToken = errors.New("access token rejected")

// Config holds the client configuration options.
type Config struct {
	// BaseURL is the provider API host (defaults to the test environment)
	BaseURL string

	// ClientID and ClientSecret are the OAuth2 client credentials
	ClientID     string
	ClientSecret string

	// HTTPClient overrides the underlying HTTP client
	HTTPClient *http.Client

	// Pacer spaces outbound calls; shared across workers
	Pacer *ratelimit.Pacer

	// Cache deduplicates identical candidate queries between runs
	Cache cache.OfferCache

	// Retry overrides the retry policy for offer queries
	Retry *retry.Config

	// Clock overrides the time source (tests)
	Clock timeutil.Clock

	// Logger overrides the log destination (tests)
	Logger *logger.Logger
}

// Client queries the provider for priced offers. Safe for concurrent use:
// token refresh is single-flight, so a burst of expired-token queries
// produces exactly one refresh request.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	pacer        *ratelimit.Pacer
	cache        cache.OfferCache
	retryCfg     retry.Config
	clock        timeutil.Clock
	log          *logger.Logger

	refresh     singleflight.Group
	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a provider client. Zero-value config fields fall back
// to defaults; a nil cache disables caching.
func NewClient(cfg Config) *Client {
	c := &Client{
		httpClient:   cfg.HTTPClient,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		pacer:        cfg.Pacer,
		cache:        cfg.Cache,
		retryCfg:     retry.ProviderConfig,
		clock:        cfg.Clock,
		log:          cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.pacer == nil {
		c.pacer = ratelimit.NewPacer(ratelimit.DefaultInterval)
	}
	if c.cache == nil {
		c.cache = cache.NewNoOpCache()
	}
	if cfg.Retry != nil {
		c.retryCfg = *cfg.Retry
	}
	if c.clock == nil {
		c.clock = timeutil.NewRealClock()
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c
}

// Search implements domain.OfferClient.
//
// Transient provider trouble (throttling, server errors, network failures)
// is retried with backoff and reported as domain.ErrProviderUnavailable once
// exhausted. A rejected query (bad parameters) is never retried and comes
// back wrapping domain.ErrInvalidQuery.
func (c *Client) Search(ctx context.Context, candidate domain.DateCandidate, plan domain.SearchPlan) ([]domain.Offer, error) {
	key := cache.KeyForCandidate(candidate, plan)
	if offers, ok := c.cache.Get(ctx, key); ok {
		c.log.Debug().Str("candidate", candidate.String()).Msg("Offer cache hit")
		return offers, nil
	}

	offers, err := retry.DoWithResult(ctx, func() ([]domain.Offer, error) {
		return c.query(ctx, candidate, plan)
	}, c.retryCfg)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}

	if err := c.cache.Set(ctx, key, offers); err != nil {
		c.log.Warn().Err(err).Msg("Failed to cache offers")
	}
	return offers, nil
}

// query performs one paced attempt: acquire a token, fetch offers, and on a
// stale token refresh exactly once and repeat the fetch.
func (c *Client) query(ctx context.Context, candidate domain.DateCandidate, plan domain.SearchPlan) ([]domain.Offer, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	offers, err := c.fetchOffers(ctx, token, candidate, plan)
	if errors.Is(err, errStaleToken) {
		c.invalidateToken(token)
		if token, err = c.token(ctx); err != nil {
			return nil, err
		}
		offers, err = c.fetchOffers(ctx, token, candidate, plan)
		if errors.Is(err, errStaleToken) {
			err = fmt.Errorf("%w: token rejected after refresh", domain.ErrAuthentication)
		}
	}
	return offers, err
}

// fetchOffers executes one flight-offers request and classifies the outcome.
func (c *Client) fetchOffers(ctx context.Context, token string, candidate domain.DateCandidate, plan domain.SearchPlan) ([]domain.Offer, error) {
	q := url.Values{}
	q.Set("originLocationCode", plan.Origin)
	q.Set("destinationLocationCode", plan.Destination)
	q.Set("departureDate", candidate.Departure)
	if candidate.Return != "" {
		q.Set("returnDate", candidate.Return)
	}
	q.Set("adults", strconv.Itoa(plan.Adults))
	q.Set("max", strconv.Itoa(plan.MaxResults))
	q.Set("currencyCode", plan.Currency)
	// The provider only accepts whole currency units here.
	q.Set("maxPrice", strconv.Itoa(int(plan.MaxPrice)))
	if plan.NonstopOnly {
		q.Set("nonStop", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+offersPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("offers request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read offers response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var parsed offersResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode offers response: %w", err)
		}
		return normalize(parsed), nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errStaleToken

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return nil, retry.NewPermanent(fmt.Errorf("%w: %s", domain.ErrInvalidQuery, errorDetail(body, resp.StatusCode)))

	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("provider throttled the request: %s", errorDetail(body, resp.StatusCode))

	default:
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
}

// token returns a valid access token, refreshing it when missing or past
// its safety margin. Concurrent callers share one refresh request.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, expiry := c.accessToken, c.tokenExpiry
	c.mu.RUnlock()
	if token != "" && c.clock.Now().Before(expiry) {
		return token, nil
	}

	v, err, _ := c.refresh.Do("token", func() (any, error) {
		// The flight winner may have refreshed while we queued.
		c.mu.RLock()
		token, expiry := c.accessToken, c.tokenExpiry
		c.mu.RUnlock()
		if token != "" && c.clock.Now().Before(expiry) {
			return token, nil
		}
		return c.requestToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// requestToken performs the OAuth2 client-credentials exchange and stores
// the token with its safety-adjusted expiry.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: token endpoint returned status %d: %s",
			domain.ErrAuthentication, resp.StatusCode, errorDetail(body, resp.StatusCode))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", domain.ErrAuthentication, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned an empty token", domain.ErrAuthentication)
	}

	lifetime := time.Duration(tok.ExpiresIn)*time.Second - tokenSafetyMargin
	if lifetime < 0 {
		lifetime = 0
	}

	c.mu.Lock()
	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.clock.Now().Add(lifetime)
	c.mu.Unlock()

	c.log.Debug().Int("expires_in", tok.ExpiresIn).Msg("Provider access token refreshed")
	return tok.AccessToken, nil
}

// invalidateToken clears the stored token if it is still the stale one.
func (c *Client) invalidateToken(stale string) {
	c.mu.Lock()
	if c.accessToken == stale {
		c.accessToken = ""
	}
	c.mu.Unlock()
}

// Ensure Client implements domain.OfferClient at compile time.
var _ domain.OfferClient = (*Client)(nil)

// errorDetail extracts a human-readable message from an error body.
func errorDetail(body []byte, status int) string {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil {
		if detail := parsed.detail(); detail != "" {
			return detail
		}
	}
	return fmt.Sprintf("status %d", status)
}
