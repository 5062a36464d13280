package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReddit serves the token endpoint and a paged search listing.
type fakeReddit struct {
	tokenRequests  int
	searchRequests []*http.Request
	submissions    []Submission
}

func (f *fakeReddit) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenRequests++
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/r/all/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchRequests = append(f.searchRequests, r.Clone(context.Background()))
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := 0
		if after := r.URL.Query().Get("after"); after != "" {
			start, _ = strconv.Atoi(after)
		}
		end := start + limit
		if end > len(f.submissions) {
			end = len(f.submissions)
		}

		children := make([]map[string]interface{}, 0, end-start)
		for _, sub := range f.submissions[start:end] {
			children = append(children, map[string]interface{}{"data": sub})
		}
		next := ""
		if end < len(f.submissions) {
			next = strconv.Itoa(end)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"after": next, "children": children},
		})
	})
	return mux
}

func newTestClient(t *testing.T, fake *fakeReddit) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewClient("id", "secret", "test-agent",
		WithBaseURLs(srv.URL+"/api/v1/access_token", srv.URL+"/r/all/search"),
		WithHTTPClient(srv.Client()),
	)
	return client, srv
}

func makeSubmissions(n int) []Submission {
	subs := make([]Submission, n)
	for i := range subs {
		subs[i] = Submission{
			ID:        fmt.Sprintf("s%d", i),
			Title:     fmt.Sprintf("title %d", i),
			Selftext:  "body",
			IsSelf:    true,
			Permalink: fmt.Sprintf("/r/all/comments/s%d", i),
			Author:    "someone",
		}
	}
	return subs
}

func TestSearch_SinglePage(t *testing.T) {
	fake := &fakeReddit{submissions: makeSubmissions(5)}
	client, _ := newTestClient(t, fake)

	subs, err := client.Search(context.Background(), "measles", 5, WindowAll)
	require.NoError(t, err)
	require.Len(t, subs, 5)
	assert.Equal(t, "s0", subs[0].ID)
	assert.Equal(t, "title 0", subs[0].Title)

	require.Len(t, fake.searchRequests, 1)
	q := fake.searchRequests[0].URL.Query()
	assert.Equal(t, "measles", q.Get("q"))
	assert.Equal(t, "all", q.Get("t"))
	assert.Equal(t, "relevance", q.Get("sort"))
	assert.Equal(t, "5", q.Get("limit"))
}

func TestSearch_PagesThroughListing(t *testing.T) {
	fake := &fakeReddit{submissions: makeSubmissions(250)}
	client, _ := newTestClient(t, fake)

	subs, err := client.Search(context.Background(), "measles", 250, WindowWeek)
	require.NoError(t, err)
	assert.Len(t, subs, 250)

	// 100-per-page cap forces three requests; the cursor advances each time.
	require.Len(t, fake.searchRequests, 3)
	assert.Equal(t, "", fake.searchRequests[0].URL.Query().Get("after"))
	assert.Equal(t, "100", fake.searchRequests[1].URL.Query().Get("after"))
	assert.Equal(t, "200", fake.searchRequests[2].URL.Query().Get("after"))
}

func TestSearch_TokenIsCached(t *testing.T) {
	fake := &fakeReddit{submissions: makeSubmissions(3)}
	client, _ := newTestClient(t, fake)

	_, err := client.Search(context.Background(), "a", 3, WindowAll)
	require.NoError(t, err)
	_, err = client.Search(context.Background(), "b", 3, WindowAll)
	require.NoError(t, err)

	assert.Equal(t, 1, fake.tokenRequests)
}

func TestSearch_NonPositiveLimit(t *testing.T) {
	fake := &fakeReddit{}
	client, _ := newTestClient(t, fake)

	subs, err := client.Search(context.Background(), "a", 0, WindowAll)
	require.NoError(t, err)
	assert.Empty(t, subs)
	assert.Empty(t, fake.searchRequests)
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/access_token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "tok-123", "expires_in": 3600})
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient("id", "secret", "test-agent",
		WithBaseURLs(srv.URL+"/api/v1/access_token", srv.URL+"/r/all/search"),
		WithHTTPClient(srv.Client()),
	)

	_, err := client.Search(context.Background(), "a", 5, WindowAll)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status")
}
