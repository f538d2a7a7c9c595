// gw2/client.go - Guild Wars 2 v2 API client
//
// Read-only client for the official GW2 API. Account endpoints take the
// user's API key and pass it through verbatim as a bearer token; the key is
// never stored or inspected here. Transient upstream failures (rate limits,
// 5xx) retry with exponential backoff.
package gw2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tyriatrack/engine"
)

const (
	// DefaultBaseURL is the official API root.
	DefaultBaseURL = "https://api.guildwars2.com"

	// maxIDsPerRequest is the upstream limit on ids-batch endpoints.
	maxIDsPerRequest = 200

	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 5
	retryBaseDelay    = 500 * time.Millisecond
)

// APIError is a non-transient upstream failure.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gw2 api: %s returned %d: %s", e.Path, e.Status, e.Body)
}

// Client talks to the GW2 v2 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	retryBase  time.Duration
}

// Config tunes a Client. The zero value selects the official endpoint with
// default timeouts.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	RetryBase  time.Duration
}

// NewClient creates a GW2 API client.
func NewClient(cfg Config) *Client {
	c := &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		retryBase:  cfg.RetryBase,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.retryBase <= 0 {
		c.retryBase = retryBaseDelay
	}
	return c
}

// Group mirrors /v2/achievements/groups entries. Group ids are GUID strings.
type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Categories  []int  `json:"categories"`
}

// Category mirrors /v2/achievements/categories entries.
type Category struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
	Icon         string `json:"icon"`
	Achievements []int  `json:"achievements"`
}

// Item mirrors the subset of /v2/items the scorer needs.
type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Rarity      string `json:"rarity"`
	VendorValue int    `json:"vendor_value"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Details     struct {
		Type string `json:"type"`
		Size int    `json:"size"`
	} `json:"details"`
}

// Title mirrors /v2/titles entries.
type Title struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Account mirrors the fields of /v2/account this service uses.
type Account struct {
	Name   string   `json:"name"`
	Access []string `json:"access"`
}

// Groups fetches every achievement group.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var out []Group
	err := c.get(ctx, "/v2/achievements/groups", url.Values{"ids": {"all"}}, "", &out)
	return out, err
}

// Categories fetches every achievement category.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.get(ctx, "/v2/achievements/categories", url.Values{"ids": {"all"}}, "", &out)
	return out, err
}

// AchievementIDs fetches the full id list of the achievement catalog.
func (c *Client) AchievementIDs(ctx context.Context) ([]int, error) {
	var out []int
	err := c.get(ctx, "/v2/achievements", nil, "", &out)
	return out, err
}

// Achievements fetches catalog entries by id, chunked to the upstream batch
// limit. The payload decodes directly into the engine's achievement type.
func (c *Client) Achievements(ctx context.Context, ids []int) ([]engine.Achievement, error) {
	out := make([]engine.Achievement, 0, len(ids))
	for _, chunk := range chunkIDs(ids, maxIDsPerRequest) {
		var batch []engine.Achievement
		if err := c.get(ctx, "/v2/achievements", idsQuery(chunk), "", &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Items fetches item records by id.
func (c *Client) Items(ctx context.Context, ids []int) ([]Item, error) {
	out := make([]Item, 0, len(ids))
	for _, chunk := range chunkIDs(ids, maxIDsPerRequest) {
		var batch []Item
		if err := c.get(ctx, "/v2/items", idsQuery(chunk), "", &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// Titles fetches title records by id.
func (c *Client) Titles(ctx context.Context, ids []int) ([]Title, error) {
	out := make([]Title, 0, len(ids))
	for _, chunk := range chunkIDs(ids, maxIDsPerRequest) {
		var batch []Title
		if err := c.get(ctx, "/v2/titles", idsQuery(chunk), "", &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

// AccountAchievements fetches the user's progress, replaced wholesale on
// every call.
func (c *Client) AccountAchievements(ctx context.Context, apiKey string) (engine.ProgressMap, error) {
	var entries []engine.Progress
	if err := c.get(ctx, "/v2/account/achievements", nil, apiKey, &entries); err != nil {
		return nil, err
	}
	progress := make(engine.ProgressMap, len(entries))
	for _, p := range entries {
		progress[p.ID] = p
	}
	return progress, nil
}

// AccountAccess fetches the account's expansion access tokens.
func (c *Client) AccountAccess(ctx context.Context, apiKey string) (engine.AccessSet, error) {
	var account Account
	if err := c.get(ctx, "/v2/account", nil, apiKey, &account); err != nil {
		return nil, err
	}
	return engine.NewAccessSet(account.Access), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, apiKey string, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryBase * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.Unmarshal(body, out)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &APIError{Status: resp.StatusCode, Path: path, Body: truncate(body)}
			continue
		default:
			return &APIError{Status: resp.StatusCode, Path: path, Body: truncate(body)}
		}
	}
	return fmt.Errorf("gw2 api: retries exhausted for %s: %w", path, lastErr)
}

func idsQuery(ids []int) url.Values {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return url.Values{"ids": {strings.Join(parts, ",")}}
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
