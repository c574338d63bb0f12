package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// StripFences removes a surrounding markdown code fence, if any
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseJSON decodes a model response into v. Code fences and prose around
// the outermost JSON object or array are tolerated; anything else wraps ErrMalformed.
func ParseJSON(text string, v any) error {
	cleaned := StripFences(text)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", ErrMalformed)
	}

	err := json.Unmarshal([]byte(cleaned), v)
	if err == nil {
		return nil
	}

	if candidate, ok := salvageJSON(cleaned); ok {
		if err2 := json.Unmarshal([]byte(candidate), v); err2 == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %v (response: %q)", ErrMalformed, err, truncate(text, 200))
}

// salvageJSON cuts from the first opening bracket to the last matching closer
func salvageJSON(text string) (string, bool) {
	obj := strings.Index(text, "{")
	arr := strings.Index(text, "[")

	open, closer := obj, "}"
	if arr >= 0 && (obj < 0 || arr < obj) {
		open, closer = arr, "]"
	}
	if open < 0 {
		return "", false
	}

	end := strings.LastIndex(text, closer)
	if end <= open {
		return "", false
	}
	return text[open : end+1], true
}

// CompleteJSON runs one completion and decodes the response into v.
// The raw text is returned even when decoding fails.
func CompleteJSON(ctx context.Context, p Provider, req CompletionRequest, v any) (string, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if err := ParseJSON(resp.Text, v); err != nil {
		return resp.Text, err
	}
	return resp.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
