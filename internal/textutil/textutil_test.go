package textutil

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 5, "hello"},
		{"hello world", 6, "hello"},
		{"café au lait", 4, "café"},
		{"café", 4, "café"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	long := strings.Repeat("a", 60)
	got := TruncateWithEllipsis(long, 50)
	if RuneLen(got) != 50 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := TruncateWithEllipsis("short title", 50); got != "short title" {
		t.Fatalf("short text changed: %q", got)
	}
}

func TestStripQuotes(t *testing.T) {
	for in, want := range map[string]string{
		`"Deep Sea Wonders"`: "Deep Sea Wonders",
		" 'owls at night' ":  "owls at night",
		"“curly”":            "curly",
		`"unbalanced`:        `"unbalanced`,
		"plain":              "plain",
	} {
		if got := StripQuotes(in); got != want {
			t.Errorf("StripQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLimitTags(t *testing.T) {
	tags := []string{"owls", "", "night", "birds"}
	if got := LimitTags(tags, 10); strings.Join(got, ",") != "owls,night" {
		t.Fatalf("unexpected tags %v", got)
	}
	if got := LimitTags(tags, 16); strings.Join(got, ",") != "owls,night,birds" {
		t.Fatalf("unexpected tags %v", got)
	}
	if got := LimitTags([]string{strings.Repeat("x", 501)}, 500); len(got) != 0 {
		t.Fatalf("expected oversize tag dropped, got %v", got)
	}
}
