package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

const (
	redditBaseURL    = "https://www.reddit.com"
	maxSelfTextBytes = 2000
)

// Reddit reads a subreddit listing through the public JSON endpoints.
type Reddit struct {
	client  *http.Client
	baseURL string
}

// NewReddit wires an HTTP client; nil means a default one.
func NewReddit(client *http.Client) *Reddit {
	return &Reddit{client: defaultClient(client), baseURL: redditBaseURL}
}

// Name identifies the collector inside the registry.
func (r *Reddit) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				SelfText    string `json:"selftext"`
				Permalink   string `json:"permalink"`
				Score       int    `json:"score"`
				NumComments int    `json:"num_comments"`
				Flair       string `json:"link_flair_text"`
				Stickied    bool   `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Collect searches the "subreddit" option (default golang) for the focus
// hint, or reads its hot listing when no hint is given.
func (r *Reddit) Collect(ctx context.Context, req scanner.Request) ([]domain.SignalRecord, error) {
	sub := option(req.Options, "subreddit", "golang")
	base := strings.TrimRight(r.baseURL, "/")

	params := url.Values{}
	params.Set("limit", strconv.Itoa(req.MaxRecords()))
	var endpoint string
	if focus := strings.TrimSpace(req.FocusHint); focus != "" {
		params.Set("q", focus)
		params.Set("restrict_sr", "1")
		params.Set("sort", "relevance")
		endpoint = fmt.Sprintf("%s/r/%s/search.json?%s", base, url.PathEscape(sub), params.Encode())
	} else {
		endpoint = fmt.Sprintf("%s/r/%s/hot.json?%s", base, url.PathEscape(sub), params.Encode())
	}

	var listing redditListing
	if err := getJSON(ctx, r.client, r.Name(), endpoint, nil, &listing); err != nil {
		return nil, err
	}

	var records []domain.SignalRecord
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || strings.TrimSpace(post.Title) == "" {
			continue
		}

		text := post.Title
		if body := strings.TrimSpace(post.SelfText); body != "" {
			text += "\n\n" + truncateUTF8(body, maxSelfTextBytes)
		}

		var tags []string
		if post.Flair != "" {
			tags = append(tags, post.Flair)
		}
		tags = append(tags, Keywords(post.Title)...)

		records = append(records, domain.SignalRecord{
			RawText:     text,
			URL:         base + post.Permalink,
			Tags:        tags,
			IntentClass: ClassifyIntent(post.Title),
			Priority:    ClassifyPriority(post.Score + post.NumComments),
		})
		if len(records) == req.MaxRecords() {
			break
		}
	}
	return records, nil
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
