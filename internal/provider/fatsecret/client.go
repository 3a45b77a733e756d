package fatsecret

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
)

const (
	defaultTokenURL = "https://oauth.fatsecret.com/connect/token"
	defaultBaseURL  = "https://platform.fatsecret.com"
	DefaultScope    = "premier"

	searchPath   = "/rest/foods/search/v2"
	maxResults   = 20
	expiryMargin = 60 * time.Second
	// Lifetimes beyond this are clamped; FatSecret issues day-long tokens.
	maxTokenLifetime = 7 * 24 * time.Hour
)

var (
	ErrEmptyQuery         = errors.New("search query is required")
	ErrMissingCredentials = errors.New("missing FatSecret client id or secret")
)

// Client talks to the FatSecret platform API. The zero value of every field
// falls back to production defaults; Now and HTTPClient exist so tests can
// drive token expiry. A Client must not be copied after first use.
type Client struct {
	ClientID     string
	ClientSecret string
	Scope        string
	TokenURL     string
	BaseURL      string
	HTTPClient   *http.Client
	Now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// SearchFoods runs foods.search v2 and returns foods in the service's ranking order.
func (c *Client) SearchFoods(ctx context.Context, query string) ([]Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search_expression", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("format", "json")
	endpoint := c.baseURL() + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create FatSecret search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "search")
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &DecodeError{Endpoint: "search", Err: err}
	}
	if parsed.Error != nil {
		return nil, &ExternalServiceError{Endpoint: "search", StatusCode: http.StatusOK, Code: parsed.Error.Code, Message: parsed.Error.Message}
	}
	if parsed.FoodsSearch == nil || parsed.FoodsSearch.Results == nil {
		return nil, &DecodeError{Endpoint: "search", Err: errors.New("missing foods_search.results")}
	}

	foods := make([]Food, 0, len(parsed.FoodsSearch.Results.Food))
	for _, f := range parsed.FoodsSearch.Results.Food {
		foods = append(foods, f.toFood())
	}
	return foods, nil
}

// accessToken returns the cached token unless it expires within the margin.
// The lock covers token state only; concurrent refreshes are allowed and the
// cache keeps whichever token lives longest.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.Unlock()
	if token != "" && expiresAt.Sub(c.now()) > expiryMargin {
		return token, nil
	}

	fresh, freshExpiry, err := c.fetchToken(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.token != "" && !c.now().Before(c.expiresAt) {
			c.token, c.expiresAt = "", time.Time{}
		}
		return "", err
	}
	if c.token == "" || freshExpiry.After(c.expiresAt) {
		c.token, c.expiresAt = fresh, freshExpiry
	}
	return fresh, nil
}

func (c *Client) fetchToken(ctx context.Context) (string, time.Time, error) {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return "", time.Time{}, ErrMissingCredentials
	}
	scope := strings.TrimSpace(c.Scope)
	if scope == "" {
		scope = DefaultScope
	}
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create FatSecret token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.ClientID, c.ClientSecret)

	body, err := c.do(req, "token")
	if err != nil {
		return "", time.Time{}, err
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, &DecodeError{Endpoint: "token", Err: err}
	}
	if strings.TrimSpace(parsed.AccessToken) == "" || !parsed.ExpiresIn.ok {
		return "", time.Time{}, &DecodeError{Endpoint: "token", Err: errors.New("missing access_token or expires_in")}
	}
	lifetime := maxTokenLifetime
	if secs := parsed.ExpiresIn.value; secs < maxTokenLifetime.Seconds() {
		lifetime = time.Duration(secs * float64(time.Second))
	}
	return parsed.AccessToken, c.now().Add(lifetime), nil
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute FatSecret %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read FatSecret %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ExternalServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: snippet(body)}
	}
	return body, nil
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) tokenURL() string {
	u := strings.TrimSpace(c.TokenURL)
	if u == "" {
		return defaultTokenURL
	}
	return u
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 12 * time.Second}
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
