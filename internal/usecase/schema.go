package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"ContentMachine/internal/domain"
)

// SchemaError reports generative output that does not match the shape a
// stage expects. It unwraps to domain.ErrMalformedOutput.
type SchemaError struct {
	Stage  domain.Stage
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed model output: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed model output: %s", e.Stage, e.Reason)
}

func (e *SchemaError) Unwrap() []error {
	if e.Err != nil {
		return []error{domain.ErrMalformedOutput, e.Err}
	}
	return []error{domain.ErrMalformedOutput}
}

func schemaErr(stage domain.Stage, reason string, err error) *SchemaError {
	return &SchemaError{Stage: stage, Reason: reason, Err: err}
}

// decodeStrict parses raw model output into T. A single surrounding markdown
// code fence is tolerated; unknown fields and trailing data are not.
func decodeStrict[T any](stage domain.Stage, raw string) (T, error) {
	var out T

	body := stripFence(raw)
	if body == "" {
		return out, schemaErr(stage, "empty response", nil)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, schemaErr(stage, "decode json", err)
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return out, schemaErr(stage, "trailing data after json document", err)
	}
	return out, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// mustJSON renders v for prompt embedding.
func mustJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
