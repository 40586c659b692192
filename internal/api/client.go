// Package api talks to the Altered card catalog REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/arcanaland/altered-scribe/internal/card"
)

const (
	DefaultBaseURL      = "https://api.altered.gg/cards"
	DefaultItemsPerPage = 36
	DefaultAttempts     = 5
	DefaultMaxRestarts  = 10
)

// Factions partition the catalog: the full listing truncates, so every
// language is fetched faction by faction.
var Factions = []string{"AX", "BR", "LY", "MU", "OR", "YZ", "NE"}

var (
	// ErrTokenExpired is returned when the catalog rejects the bearer token.
	ErrTokenExpired = errors.New("collection token expired")
	// ErrCountMismatch is returned when a finished pagination does not add up
	// to the announced total.
	ErrCountMismatch = errors.New("card count does not match announced total")
	// ErrCatalogUnstable is returned when the total keeps changing.
	ErrCatalogUnstable = errors.New("catalog total kept changing during pagination")
)

// StatusError is a non-success HTTP response from the catalog.
type StatusError struct {
	StatusCode int
	URL        string
	// Auth is set when the request carried a bearer token.
	Auth bool
}

func (e *StatusError) Error() string {
	if e.Is(ErrTokenExpired) {
		return fmt.Sprintf("api: %s returned %d: %v", e.URL, e.StatusCode, ErrTokenExpired)
	}
	return fmt.Sprintf("api: %s returned %d", e.URL, e.StatusCode)
}

// Is reports an expired token for authenticated 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrTokenExpired && e.Auth && e.StatusCode == http.StatusUnauthorized
}

// Page is one page of the catalog listing.
type Page struct {
	Cards      []card.RawCard `json:"hydra:member"`
	TotalItems int            `json:"hydra:totalItems"`
}

// Query selects one page of the catalog.
type Query struct {
	Language     card.Language
	Faction      string // empty selects every faction
	Page         int
	ItemsPerPage int
	Rarities     []string
	Token        string
}

// Client fetches catalog pages.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	log          *slog.Logger
	itemsPerPage int
	attempts     int
	retryDelay   time.Duration
	maxRestarts  int
	rarities     []string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another catalog (used by tests).
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithItemsPerPage sets the page size.
func WithItemsPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.itemsPerPage = n
		}
	}
}

// WithRetry sets the number of attempts per page and the pause between them.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.retryDelay = delay
		}
	}
}

// WithMaxRestarts bounds how often a faction restarts after the total changed.
func WithMaxRestarts(n int) Option { return func(c *Client) { c.maxRestarts = n } }

// WithRarities sets the rarity subset requested from the catalog.
func WithRarities(r []string) Option { return func(c *Client) { c.rarities = r } }

// NewClient creates a catalog client.
func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		log:          logger.With("component", "api"),
		itemsPerPage: DefaultItemsPerPage,
		attempts:     DefaultAttempts,
		retryDelay:   time.Second,
		maxRestarts:  DefaultMaxRestarts,
		rarities:     []string{card.RarityCommon, card.RarityRare},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// acceptLanguage maps a language code to the header value the catalog expects.
func acceptLanguage(lang card.Language) string {
	return fmt.Sprintf("%s-%s", lang, lang)
}

func (c *Client) pageURL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("api: parse base url: %w", err)
	}
	params := u.Query()
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("itemsPerPage", strconv.Itoa(q.ItemsPerPage))
	for _, r := range q.Rarities {
		params.Add("rarity[]", r)
	}
	if q.Faction != "" {
		params.Set("factions[]", q.Faction)
	}
	if q.Token != "" {
		params.Set("collection", "true")
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// FetchPage performs a single page request. Transport failures are retried
// up to the configured number of attempts; a non-success status is not.
func (c *Client) FetchPage(ctx context.Context, q Query) (*Page, error) {
	if q.ItemsPerPage == 0 {
		q.ItemsPerPage = c.itemsPerPage
	}
	if q.Rarities == nil {
		q.Rarities = c.rarities
	}

	reqURL, err := c.pageURL(q)
	if err != nil {
		return nil, err
	}

	var body []byte
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(c.attempts-1), retry.NewConstant(c.retryDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("api: create request: %w", err)
		}
		req.Header.Set("Accept", "application/ld+json")
		req.Header.Set("Accept-Language", acceptLanguage(q.Language))
		if q.Token != "" {
			req.Header.Set("Authorization", "Bearer "+q.Token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.WarnContext(ctx, "catalog request failed",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", c.attempts),
				slog.String("error", err.Error()),
			)
			return retry.RetryableError(fmt.Errorf("api: request %s: %w", reqURL, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, URL: reqURL, Auth: q.Token != ""}
			c.log.ErrorContext(ctx, "catalog returned an error status",
				slog.Int("status", resp.StatusCode),
				slog.String("url", reqURL),
				slog.Bool("token_expired", errors.Is(statusErr, ErrTokenExpired)),
			)
			return statusErr
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("api: read body: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("api: decode page %d: %w", q.Page, err)
	}

	c.log.DebugContext(ctx, "catalog page",
		slog.String("language", string(q.Language)),
		slog.String("faction", q.Faction),
		slog.Int("page", q.Page),
		slog.Int("cards", len(page.Cards)),
		slog.Int("total", page.TotalItems),
	)
	return &page, nil
}
