package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// words maps the English names users tend to type in config to tags.
var words = map[string]language.Tag{
	"english":    language.English,
	"spanish":    language.Spanish,
	"french":     language.French,
	"german":     language.German,
	"italian":    language.Italian,
	"portuguese": language.Portuguese,
	"japanese":   language.Japanese,
	"korean":     language.Korean,
	"chinese":    language.Chinese,
	"russian":    language.Russian,
	"arabic":     language.Arabic,
	"hindi":      language.Hindi,
	"dutch":      language.Dutch,
	"polish":     language.Polish,
	"swedish":    language.Swedish,
}

// Parse resolves a BCP 47 tag, ISO 639 code or English language name.
func Parse(value string) (language.Tag, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return language.Und, false
	}
	if tag, ok := words[value]; ok {
		return tag, true
	}
	tag, err := language.Parse(value)
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

// ToISO2 converts any recognized language code or word to ISO 639-1.
// Returns empty string for unrecognized input or languages without a
// two-letter code.
func ToISO2(value string) string {
	tag, ok := Parse(value)
	if !ok {
		return ""
	}
	base, _ := tag.Base()
	code := base.String()
	if len(code) != 2 {
		return ""
	}
	return code
}

// Canonical returns the canonical BCP 47 form ("en", "pt-BR"), or "" when
// value is not a language.
func Canonical(value string) string {
	tag, ok := Parse(value)
	if !ok {
		return ""
	}
	return tag.String()
}

// DisplayName returns the English name for value.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	tag, ok := Parse(value)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(value))
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return tag.String()
}
