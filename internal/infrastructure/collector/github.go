package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

const githubBaseURL = "https://api.github.com"

// GitHub searches repositories matching the focus hint.
type GitHub struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGitHub wires an HTTP client and an optional API token.
func NewGitHub(client *http.Client, token string) *GitHub {
	return &GitHub{client: defaultClient(client), baseURL: githubBaseURL, token: token}
}

// Name identifies the collector inside the registry.
func (g *GitHub) Name() string {
	return "github"
}

type githubSearch struct {
	Items []struct {
		FullName    string   `json:"full_name"`
		Description string   `json:"description"`
		HTMLURL     string   `json:"html_url"`
		Topics      []string `json:"topics"`
		Language    string   `json:"language"`
		Stars       int      `json:"stargazers_count"`
		OpenIssues  int      `json:"open_issues_count"`
	} `json:"items"`
}

// Collect returns the most starred repositories for the query. Options:
// "query" overrides the focus hint, "sort" defaults to stars.
func (g *GitHub) Collect(ctx context.Context, req scanner.Request) ([]domain.SignalRecord, error) {
	query := option(req.Options, "query", req.FocusHint)
	if strings.TrimSpace(query) == "" {
		query = "language:go"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", option(req.Options, "sort", "stars"))
	params.Set("order", "desc")
	params.Set("per_page", strconv.Itoa(req.MaxRecords()))

	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if g.token != "" {
		headers["Authorization"] = "Bearer " + g.token
	}

	var resp githubSearch
	endpoint := fmt.Sprintf("%s/search/repositories?%s", strings.TrimRight(g.baseURL, "/"), params.Encode())
	if err := getJSON(ctx, g.client, g.Name(), endpoint, headers, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.SignalRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		text := item.FullName
		if item.Description != "" {
			text += ": " + item.Description
		}
		tags := append([]string{}, item.Topics...)
		if item.Language != "" {
			tags = append(tags, item.Language)
		}
		records = append(records, domain.SignalRecord{
			RawText:     text,
			URL:         item.HTMLURL,
			Tags:        tags,
			IntentClass: ClassifyIntent(text),
			Priority:    ClassifyPriority(item.Stars/10 + item.OpenIssues),
		})
		if len(records) == req.MaxRecords() {
			break
		}
	}
	return records, nil
}
