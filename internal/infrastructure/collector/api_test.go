package collector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

func jsonServer(t *testing.T, body string, inspect func(*http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGitHubCollect(t *testing.T) {
	var got *http.Request
	server := jsonServer(t, `{"items":[
	  {"full_name":"golang/sync","description":"Extra concurrency primitives","html_url":"https://github.com/golang/sync","topics":["concurrency"],"language":"Go","stargazers_count":3000,"open_issues_count":12},
	  {"full_name":"acme/empty","description":"","html_url":"https://github.com/acme/empty","topics":[],"language":"","stargazers_count":1,"open_issues_count":0}
	]}`, func(r *http.Request) { got = r })

	gh := NewGitHub(server.Client(), "secret")
	gh.baseURL = server.URL

	records, err := gh.Collect(context.Background(), scanner.Request{FocusHint: "errgroup", Limit: 10})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "/search/repositories", got.URL.Path)
	assert.Equal(t, "errgroup", got.URL.Query().Get("q"))
	assert.Equal(t, "10", got.URL.Query().Get("per_page"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))

	assert.Equal(t, "golang/sync: Extra concurrency primitives", records[0].RawText)
	assert.Equal(t, []string{"concurrency", "Go"}, records[0].Tags)
	assert.Equal(t, domain.PriorityHigh, records[0].Priority)
	assert.Equal(t, "acme/empty", records[1].RawText)
	assert.Equal(t, domain.PriorityLow, records[1].Priority)
}

func TestGitHubCollect_DefaultQueryWithoutToken(t *testing.T) {
	var got *http.Request
	server := jsonServer(t, `{"items":[]}`, func(r *http.Request) { got = r })

	gh := NewGitHub(server.Client(), "")
	gh.baseURL = server.URL

	records, err := gh.Collect(context.Background(), scanner.Request{})
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "language:go", got.URL.Query().Get("q"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestRedditCollect_Search(t *testing.T) {
	var got *http.Request
	server := jsonServer(t, `{"data":{"children":[
	  {"data":{"title":"Weekly thread","selftext":"","permalink":"/r/golang/comments/0/","score":5,"num_comments":1,"stickied":true}},
	  {"data":{"title":"Best ORM for Postgres?","selftext":"Looking at sqlc vs gorm.","permalink":"/r/golang/comments/1/","score":140,"num_comments":90,"link_flair_text":"discussion"}}
	]}}`, func(r *http.Request) { got = r })

	rd := NewReddit(server.Client())
	rd.baseURL = server.URL

	records, err := rd.Collect(context.Background(), scanner.Request{FocusHint: "orm", Options: map[string]string{"subreddit": "golang"}})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "/r/golang/search.json", got.URL.Path)
	assert.Equal(t, "orm", got.URL.Query().Get("q"))
	assert.Equal(t, "1", got.URL.Query().Get("restrict_sr"))
	assert.NotEmpty(t, got.Header.Get("User-Agent"))

	r := records[0]
	assert.Equal(t, "Best ORM for Postgres?\n\nLooking at sqlc vs gorm.", r.RawText)
	assert.Equal(t, server.URL+"/r/golang/comments/1/", r.URL)
	assert.Equal(t, "discussion", r.Tags[0])
	assert.Contains(t, r.Tags, "postgres")
	assert.Equal(t, domain.IntentCommercial, r.IntentClass)
	assert.Equal(t, domain.PriorityMedium, r.Priority)
}

func TestRedditCollect_HotWithoutFocus(t *testing.T) {
	var got *http.Request
	server := jsonServer(t, `{"data":{"children":[]}}`, func(r *http.Request) { got = r })

	rd := NewReddit(server.Client())
	rd.baseURL = server.URL

	_, err := rd.Collect(context.Background(), scanner.Request{})
	require.NoError(t, err)
	assert.Equal(t, "/r/golang/hot.json", got.URL.Path)
	assert.Equal(t, "25", got.URL.Query().Get("limit"))
}

func TestRedditCollect_LongSelfTextKeepsRunes(t *testing.T) {
	selfText := strings.Repeat("a", maxSelfTextBytes-1) + "é and the rest"
	listing, err := json.Marshal(map[string]any{
		"data": map[string]any{"children": []any{
			map[string]any{"data": map[string]any{
				"title":     "Long post",
				"selftext":  selfText,
				"permalink": "/r/golang/comments/2/",
			}},
		}},
	})
	require.NoError(t, err)
	server := jsonServer(t, string(listing), nil)

	rd := NewReddit(server.Client())
	rd.baseURL = server.URL

	records, err := rd.Collect(context.Background(), scanner.Request{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, utf8.ValidString(records[0].RawText))
	assert.Equal(t, "Long post\n\n"+strings.Repeat("a", maxSelfTextBytes-1), records[0].RawText)
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc"},
		{"abé", 3, "ab"},
		{"abé", 4, "abé"},
		{"日本", 2, ""},
		{"日本", 3, "日"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateUTF8(tt.in, tt.limit), "%q[:%d]", tt.in, tt.limit)
	}
}

func TestStackExchangeCollect(t *testing.T) {
	var got *http.Request
	server := jsonServer(t, `{"items":[
	  {"title":"How do I cancel a &quot;context&quot; in Go?","link":"https://stackoverflow.com/q/1","tags":["go","context"],"score":60,"answer_count":4,"view_count":12000}
	]}`, func(r *http.Request) { got = r })

	se := NewStackExchange(server.Client(), "")
	se.baseURL = server.URL

	records, err := se.Collect(context.Background(), scanner.Request{FocusHint: "context", Options: map[string]string{"tagged": "go"}})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "/2.3/search/advanced", got.URL.Path)
	assert.Equal(t, "stackoverflow", got.URL.Query().Get("site"))
	assert.Equal(t, "go", got.URL.Query().Get("tagged"))

	assert.Equal(t, `How do I cancel a "context" in Go?`, records[0].RawText)
	assert.Equal(t, []string{"go", "context"}, records[0].Tags)
	assert.Equal(t, domain.PriorityHigh, records[0].Priority)
}

func TestStackExchangeCollect_APIError(t *testing.T) {
	server := jsonServer(t, `{"items":[],"error_message":"throttle violation"}`, nil)

	se := NewStackExchange(server.Client(), "")
	se.baseURL = server.URL

	_, err := se.Collect(context.Background(), scanner.Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "throttle violation")
}
