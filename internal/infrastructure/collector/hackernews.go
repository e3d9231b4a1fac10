package collector

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentMachine/internal/domain"
	"ContentMachine/internal/scanner"
)

const hackerNewsBaseURL = "https://news.ycombinator.com"

var countExpr = regexp.MustCompile(`\d+`)

// HackerNews scrapes a Hacker News listing page.
type HackerNews struct {
	client  *http.Client
	baseURL string
}

// NewHackerNews wires an HTTP client; nil means a default one.
func NewHackerNews(client *http.Client) *HackerNews {
	return &HackerNews{client: defaultClient(client), baseURL: hackerNewsBaseURL}
}

// Name identifies the collector inside the registry.
func (h *HackerNews) Name() string {
	return "hackernews"
}

// Collect reads the listing named by the "listing" option (news, newest, ask,
// show; default news) and keeps stories whose title mentions the focus hint.
func (h *HackerNews) Collect(ctx context.Context, req scanner.Request) ([]domain.SignalRecord, error) {
	listing := option(req.Options, "listing", "news")
	pageURL := fmt.Sprintf("%s/%s", strings.TrimRight(h.baseURL, "/"), strings.TrimLeft(listing, "/"))

	doc, err := h.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var records []domain.SignalRecord
	doc.Find("tr.athing").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		record, ok := parseStory(row, h.baseURL)
		if !ok || !matchesFocus(record.RawText, req.FocusHint) {
			return true
		}
		records = append(records, record)
		return len(records) < req.MaxRecords()
	})
	return records, nil
}

func (h *HackerNews) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, err := fetch(ctx, h.client, h.Name(), pageURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse document: %w", domain.ErrSourceUnavailable, h.Name(), err)
	}
	return doc, nil
}

// parseStory reads a story row and the subtext row that follows it.
func parseStory(row *goquery.Selection, baseURL string) (domain.SignalRecord, bool) {
	link := row.Find("span.titleline > a").First()
	title := strings.TrimSpace(link.Text())
	if title == "" {
		return domain.SignalRecord{}, false
	}

	href, _ := link.Attr("href")
	if href != "" && !strings.HasPrefix(href, "http") {
		href = strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}

	subtext := row.Next().Find(".subtext")
	points := firstNumber(subtext.Find("span.score").Text())
	comments := 0
	subtext.Find("a").Each(func(_ int, a *goquery.Selection) {
		if text := a.Text(); strings.Contains(text, "comment") {
			comments = firstNumber(text)
		}
	})

	return domain.SignalRecord{
		RawText:     title,
		URL:         href,
		Tags:        Keywords(title),
		IntentClass: ClassifyIntent(title),
		Priority:    ClassifyPriority(points + comments),
	}, true
}

func firstNumber(text string) int {
	n, err := strconv.Atoi(countExpr.FindString(text))
	if err != nil {
		return 0
	}
	return n
}
