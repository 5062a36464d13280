// Package reddit is a minimal client for the Reddit search API, covering
// exactly what the listening pipeline needs: authenticated relevance-ranked
// search across all of Reddit within a recency window.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Recency windows accepted by the search API's t parameter.
const (
	WindowHour  = "hour"
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowYear  = "year"
	WindowAll   = "all"
)

const (
	defaultTokenURL  = "https://www.reddit.com/api/v1/access_token"
	defaultSearchURL = "https://oauth.reddit.com/r/all/search"

	// Reddit returns at most 100 children per listing request; larger
	// fetches page through with the listing's after cursor.
	pageSize = 100
)

// Submission is a raw search hit as the API returns it, before the search
// engine normalizes it into a models.Post.
type Submission struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	IsSelf     bool    `json:"is_self"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	Author     string  `json:"author"`
}

// Client talks to the Reddit API with application-only OAuth. It caches the
// bearer token until shortly before expiry. Safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	userAgent    string

	tokenURL  string
	searchURL string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type Option func(*Client)

// WithBaseURLs overrides the token and search endpoints, used by tests to
// point the client at a local server.
func WithBaseURLs(tokenURL, searchURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.searchURL = searchURL
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func NewClient(clientID, clientSecret, userAgent string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		tokenURL:     defaultTokenURL,
		searchURL:    defaultSearchURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a relevance-sorted search for term within the given recency
// window and returns up to limit submissions, paging through the listing as
// needed. Results arrive in the API's relevance order.
func (c *Client) Search(ctx context.Context, term string, limit int, window string) ([]Submission, error) {
	if limit <= 0 {
		return nil, nil
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	var (
		submissions []Submission
		after       string
	)
	for len(submissions) < limit {
		batch := limit - len(submissions)
		if batch > pageSize {
			batch = pageSize
		}

		page, next, err := c.searchPage(ctx, token, term, window, batch, after)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, page...)

		if next == "" || len(page) == 0 {
			break
		}
		after = next
	}

	if len(submissions) > limit {
		submissions = submissions[:limit]
	}
	return submissions, nil
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data Submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *Client) searchPage(ctx context.Context, token, term, window string, limit int, after string) ([]Submission, string, error) {
	q := url.Values{}
	q.Set("q", term)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("t", window)
	q.Set("sort", "relevance")
	q.Set("restrict_sr", "false")
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("reddit search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("reddit search: unexpected status %d", resp.StatusCode)
	}

	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, "", fmt.Errorf("reddit search: decoding listing: %w", err)
	}

	subs := make([]Submission, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		subs = append(subs, child.Data)
	}
	return subs, l.Data.After, nil
}

// accessToken returns a cached application-only token, refreshing it when
// within a minute of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}

	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	log.Debugf("refreshed reddit token, expires in %ds", tok.ExpiresIn)
	return c.token, nil
}
