// internal/generation/response-extractor/extractor.go
package responseextractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// PreviewLimit bounds the raw-text prefix carried by a ParseFailure.
const PreviewLimit = 200

var (
	ErrEmptyResponse = errors.New("EMPTY_RESPONSE")
	ErrNoObjectSpan  = errors.New("NO_OBJECT_SPAN")
	ErrInvalidJSON   = errors.New("INVALID_JSON")
)

// ParseFailure reports the step at which excavation stopped.
type ParseFailure struct {
	Stage   string
	Preview string
	Err     error
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("extract failed at %s: %v", f.Stage, f.Err)
}

func (f *ParseFailure) Unwrap() error {
	return f.Err
}

// Step narrows the candidate string or rejects it.
type Step struct {
	Name  string
	Apply func(candidate string) (string, error)
}

// Steps is the ordered chain run before decoding.
var Steps = []Step{
	{Name: "trim", Apply: TrimSpace},
	{Name: "strip-fence", Apply: StripCodeFence},
	{Name: "slice-object", Apply: SliceObjectSpan},
}

const decodeStage = "decode"

var (
	openingFence = regexp.MustCompile("^```(?:json|JSON)?[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```$")
)

func TrimSpace(candidate string) (string, error) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", ErrEmptyResponse
	}
	return trimmed, nil
}

// StripCodeFence removes a leading ``` or ```json fence and the matching
// trailing fence. Text without a leading fence is returned unchanged.
func StripCodeFence(candidate string) (string, error) {
	if !strings.HasPrefix(candidate, "```") {
		return candidate, nil
	}
	stripped := openingFence.ReplaceAllString(candidate, "")
	stripped = closingFence.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped), nil
}

// SliceObjectSpan keeps the text between the first '{' and the last '}'.
func SliceObjectSpan(candidate string) (string, error) {
	start := strings.IndexByte(candidate, '{')
	end := strings.LastIndexByte(candidate, '}')
	if start < 0 || end <= start {
		return "", ErrNoObjectSpan
	}
	return candidate[start : end+1], nil
}

// DecodeObject parses candidate strictly as one JSON object.
func DecodeObject(candidate string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: null is not an object", ErrInvalidJSON)
	}
	return obj, nil
}

// Extract recovers a single JSON object from free-form model output. Broken
// JSON inside the recovered span is not repaired.
func Extract(raw string) (map[string]interface{}, error) {
	candidate := raw
	for _, step := range Steps {
		next, err := step.Apply(candidate)
		if err != nil {
			return nil, &ParseFailure{Stage: step.Name, Preview: Preview(raw), Err: err}
		}
		candidate = next
	}

	obj, err := DecodeObject(candidate)
	if err != nil {
		return nil, &ParseFailure{Stage: decodeStage, Preview: Preview(raw), Err: err}
	}
	return obj, nil
}

// Preview returns at most PreviewLimit characters of the trimmed raw text.
// Whitespace-only text is kept as is so the preview is empty only when raw is.
func Preview(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" {
		raw = trimmed
	}
	if utf8.RuneCountInString(raw) <= PreviewLimit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:PreviewLimit])
}
