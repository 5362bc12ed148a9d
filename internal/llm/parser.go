// ABOUTME: Lenient extraction of structured JSON from free-form model output
// ABOUTME: Callers depend on the Parser interface so stricter parsing can replace it
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoObject means the text contained no decodable JSON object
var ErrNoObject = errors.New("no JSON object found in response")

// Parser decodes the structured object embedded in a model response into v
type Parser interface {
	ParseObject(text string, v any) error
}

var flatObject = regexp.MustCompile(`(?s)\{[^{}]*\}`)

// LenientParser strips markdown fences and decodes the first well-formed object.
// With Flat set, only brace-free objects are considered, which suits small replies
// like {"type": ..., "confidence": ...}. Otherwise nested objects are matched by
// balancing braces outside of string literals.
type LenientParser struct {
	Flat bool
}

// ParseObject implements Parser
func (p LenientParser) ParseObject(text string, v any) error {
	clean := StripFences(text)

	var candidates []string
	if p.Flat {
		if m := flatObject.FindString(clean); m != "" {
			candidates = append(candidates, m)
		}
	} else {
		candidates = balancedObjects(clean)
	}

	var lastErr error
	for _, c := range candidates {
		if err := json.Unmarshal([]byte(c), v); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrNoObject, lastErr)
	}
	return ErrNoObject
}

// StripFences removes ```json and ``` markers
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// balancedObjects returns every top-level {...} span, in order of appearance
func balancedObjects(text string) []string {
	var out []string
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				out = append(out, text[start:i+1])
				start = -1
			}
		}
	}

	return out
}
