package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ContentMachine/internal/domain"
)

const userAgent = "ContentMachine/1.0 (+https://github.com/contentmachine)"

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

// fetch performs a GET and returns the response when it is 200 OK. Every
// failure wraps domain.ErrSourceUnavailable.
func fetch(ctx context.Context, client *http.Client, source, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: build request: %w", domain.ErrSourceUnavailable, source, err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, source, err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s: %s", domain.ErrSourceUnavailable, source, resp.Status, snippet)
	}
	return resp, nil
}

func getJSON(ctx context.Context, client *http.Client, source, url string, headers map[string]string, out any) error {
	resp, err := fetch(ctx, client, source, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", domain.ErrSourceUnavailable, source, err)
	}
	return nil
}

func option(opts map[string]string, key, fallback string) string {
	if v, ok := opts[key]; ok && v != "" {
		return v
	}
	return fallback
}
