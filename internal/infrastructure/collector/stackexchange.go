package collector

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

const stackExchangeBaseURL = "https://api.stackexchange.com"

// StackExchange searches questions on a Stack Exchange site.
type StackExchange struct {
	client  *http.Client
	baseURL string
	key     string
}

// NewStackExchange wires an HTTP client and an optional app key.
func NewStackExchange(client *http.Client, key string) *StackExchange {
	return &StackExchange{client: defaultClient(client), baseURL: stackExchangeBaseURL, key: key}
}

// Name identifies the collector inside the registry.
func (s *StackExchange) Name() string {
	return "stackexchange"
}

type stackExchangeSearch struct {
	Items []struct {
		Title       string   `json:"title"`
		Link        string   `json:"link"`
		Tags        []string `json:"tags"`
		Score       int      `json:"score"`
		AnswerCount int      `json:"answer_count"`
		ViewCount   int      `json:"view_count"`
	} `json:"items"`
	ErrorMessage string `json:"error_message"`
}

// Collect runs an advanced search on the "site" option (default
// stackoverflow), optionally restricted by the "tagged" option.
func (s *StackExchange) Collect(ctx context.Context, req scanner.Request) ([]domain.SignalRecord, error) {
	params := url.Values{}
	params.Set("order", "desc")
	params.Set("sort", option(req.Options, "sort", "votes"))
	params.Set("site", option(req.Options, "site", "stackoverflow"))
	params.Set("pagesize", strconv.Itoa(req.MaxRecords()))
	if q := strings.TrimSpace(req.FocusHint); q != "" {
		params.Set("q", q)
	}
	if tagged := option(req.Options, "tagged", ""); tagged != "" {
		params.Set("tagged", tagged)
	}
	if s.key != "" {
		params.Set("key", s.key)
	}

	var resp stackExchangeSearch
	endpoint := fmt.Sprintf("%s/2.3/search/advanced?%s", strings.TrimRight(s.baseURL, "/"), params.Encode())
	if err := getJSON(ctx, s.client, s.Name(), endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrSourceUnavailable, s.Name(), resp.ErrorMessage)
	}

	records := make([]domain.SignalRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		title := html.UnescapeString(item.Title)
		records = append(records, domain.SignalRecord{
			RawText:     title,
			URL:         item.Link,
			Tags:        item.Tags,
			IntentClass: ClassifyIntent(title),
			Priority:    ClassifyPriority(item.Score*5 + item.AnswerCount*10 + item.ViewCount/100),
		})
		if len(records) == req.MaxRecords() {
			break
		}
	}
	return records, nil
}
