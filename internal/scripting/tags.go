package scripting

import (
	"regexp"
	"strings"
	"unicode"

	"promptreel/internal/services"
	"promptreel/internal/services/llm"
)

// MaxTags bounds the parsed tag list.
const MaxTags = 5

// ErrNoTags is returned when neither parsing strategy yields a tag.
var ErrNoTags = services.Wrap(services.ErrEmptyResult, "metadata", "parse tags", "no usable tags in response", nil)

var (
	numberedMarker = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)
	bulletMarker   = regexp.MustCompile(`^\s*[-*•]\s+`)
	leadingPhrase  = regexp.MustCompile(`(?i)^\s*(here (are|is)\b[^:\n]*:|(suggested |video )?tags?\s*:)\s*`)
	tagSeparators  = regexp.MustCompile(`[,\n-]`)
)

// ParseTags extracts up to MaxTags single-word tags from a model response.
// A JSON array is accepted only when every element is a single-word string;
// otherwise markdown list markers, bold markers and leading phrases are
// stripped and the text is split on commas, newlines and hyphens.
func ParseTags(raw string) ([]string, error) {
	if tags, ok := parseJSONTags(raw); ok {
		return tags, nil
	}
	tags := parseListTags(raw)
	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	return tags, nil
}

func parseJSONTags(raw string) ([]string, bool) {
	var entries []any
	if err := llm.DecodeLLMJSON(raw, &entries); err != nil || len(entries) == 0 {
		return nil, false
	}
	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		value, ok := entry.(string)
		if !ok {
			return nil, false
		}
		value = strings.TrimSpace(value)
		if !isSingleWord(value) {
			return nil, false
		}
		tags = append(tags, value)
	}
	return truncate(tags), true
}

func parseListTags(raw string) []string {
	text := strings.ReplaceAll(llm.StripCodeFence(raw), "**", "")
	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		line = leadingPhrase.ReplaceAllString(line, "")
		line = numberedMarker.ReplaceAllString(line, "")
		line = bulletMarker.ReplaceAllString(line, "")
		cleaned = append(cleaned, line)
	}
	var tags []string
	for _, part := range tagSeparators.Split(strings.Join(cleaned, "\n"), -1) {
		part = strings.TrimFunc(part, func(r rune) bool {
			return unicode.IsSpace(r) || strings.ContainsRune(`"'#[].`, r)
		})
		if !isSingleWord(part) {
			continue
		}
		tags = append(tags, part)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

func isSingleWord(value string) bool {
	return value != "" && !strings.ContainsFunc(value, unicode.IsSpace)
}

func truncate(tags []string) []string {
	if len(tags) > MaxTags {
		return tags[:MaxTags]
	}
	return tags
}
