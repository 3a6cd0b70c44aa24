package stage

import (
	"errors"
	"strings"
	"testing"

	"promptreel/internal/services"
)

func TestRequireInputsAllPresent(t *testing.T) {
	if err := RequireInputs("metadata", Input{"prompt", "owls"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireInputsNamesMissing(t *testing.T) {
	err := RequireInputs("composition",
		Input{"audio", "a1"},
		Input{"subtitles", " "},
		Input{"thumbnail", ""},
	)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "subtitles, thumbnail") {
		t.Fatalf("expected missing names in error, got %q", err.Error())
	}
}

func TestRequireList(t *testing.T) {
	if err := RequireList("composition", "video clips", []string{"", "c1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RequireList("composition", "video clips", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
