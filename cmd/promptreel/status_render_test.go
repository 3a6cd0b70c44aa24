package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Database", statusError, "Not reachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Database:", "[ERROR] Not reachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("API", statusOK, "ok", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestColorizeStatus(t *testing.T) {
	if got := colorizeStatus("failed", false); got != "failed" {
		t.Fatalf("expected plain status, got %q", got)
	}
	if got := colorizeStatus("failed", true); got != ansiRed+"failed"+ansiReset {
		t.Fatalf("expected red status, got %q", got)
	}
	if jobStatusKind("pending") != statusInfo {
		t.Fatal("expected pending to render as info")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]string{"": "table", "JSON": "json", " yaml ": "yaml"} {
		got, err := parseFormat(input)
		if err != nil || got != want {
			t.Fatalf("parseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := parseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
}
