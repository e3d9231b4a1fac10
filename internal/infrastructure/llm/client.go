package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"ContentMachine/internal/ports"
)

const (
	defaultTimeout      = 120 * time.Second
	defaultSystemPrompt = "You are a senior technical writer and content strategist for developer audiences."
	streamDone          = "[DONE]"
	finishLength        = "length"
)

// Config describes how to reach an OpenAI-compatible chat completions API.
type Config struct {
	Endpoint     string
	Model        string
	APIKey       string
	SystemPrompt string
	Timeout      time.Duration
}

// APIError is a non-2xx response from the completions endpoint.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm error %s", e.Status)
	}
	return fmt.Sprintf("llm error %s: %s", e.Status, e.Body)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client implements ports.TextGenerator against an OpenAI-compatible API.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	timeout      time.Duration
	httpClient   *http.Client
}

var _ ports.TextGenerator = (*Client)(nil)

// NewClient builds a client from configuration. The timeout bounds Complete;
// streams are bounded by the caller's context only.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		timeout:      timeoutOrDefault(cfg.Timeout),
		httpClient:   &http.Client{},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		Delta        message `json:"delta"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Complete sends one prompt and returns the whole answer. A non-empty
// schemaHint asks the model for a JSON object response.
func (c *Client) Complete(ctx context.Context, prompt, schemaHint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := c.request(prompt, false)
	if schemaHint != "" {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion has no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Stream sends one prompt with streaming enabled and yields content deltas
// parsed from the server-sent events until the [DONE] marker. A stream that
// ends without the marker, or stops at the token limit, yields an error
// wrapping io.ErrUnexpectedEOF.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resp, err := c.post(ctx, c.request(prompt, true))
		if err != nil {
			yield("", err)
			return
		}
		defer resp.Body.Close()

		for data, err := range readEvents(resp.Body) {
			if err != nil {
				yield("", fmt.Errorf("read stream: %w", err))
				return
			}
			if data == streamDone {
				return
			}

			var chunk chatResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield("", fmt.Errorf("decode stream chunk: %w", err))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			choice := chunk.Choices[0]
			if choice.Delta.Content != "" && !yield(choice.Delta.Content, nil) {
				return
			}
			if choice.FinishReason == finishLength {
				yield("", fmt.Errorf("read stream: cut at token limit: %w", io.ErrUnexpectedEOF))
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}
		yield("", fmt.Errorf("read stream: %w", io.ErrUnexpectedEOF))
	}
}

func (c *Client) request(prompt string, stream bool) chatRequest {
	return chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: prompt},
		},
		Stream: stream,
	}
}

func (c *Client) post(ctx context.Context, payload chatRequest) (*http.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("llm client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return nil, fmt.Errorf("llm client misconfigured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal llm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send completion: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(raw))}
	}

	return resp, nil
}

// readEvents yields the data payload of each server-sent event. Multiple
// data lines in one event are joined with newlines; comments are skipped.
func readEvents(body io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var data []string
		flush := func() bool {
			if len(data) == 0 {
				return true
			}
			payload := strings.Join(data, "\n")
			data = data[:0]
			return yield(payload, nil)
		}

		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if !flush() {
					return
				}
			case strings.HasPrefix(line, ":"):
			case strings.HasPrefix(line, "data:"):
				data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
			return
		}
		flush()
	}
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return defaultSystemPrompt
	}
	return prompt
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}
