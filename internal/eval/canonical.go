package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencePattern      = regexp.MustCompile("(?s)```(?:json)?\\s*|\\s*```")
	jsonDelimPattern  = regexp.MustCompile(`[{}\[\]",:]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripFences removes markdown code fences that extraction models tend to
// wrap their JSON output in.
func StripFences(text string) string {
	return fencePattern.ReplaceAllString(strings.TrimSpace(text), "")
}

// CanonicalJSON re-emits JSON text with object keys sorted and insignificant
// whitespace removed, so key ordering never inflates the edit distance.
func CanonicalJSON(text string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("parsing JSON for canonicalization: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("re-encoding canonical JSON: %w", err)
	}
	// Encoder appends a trailing newline.
	return strings.TrimRight(buf.String(), "\n"), nil
}

// PlainText renders JSON-like text as de-structured plain text: JSON
// delimiters become spaces and runs of whitespace collapse to one space.
// This is the input the reference-free quality metrics operate on.
func PlainText(jsonText string) string {
	text := jsonDelimPattern.ReplaceAllString(jsonText, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
