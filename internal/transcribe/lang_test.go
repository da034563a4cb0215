package transcribe_test

import (
	"testing"

	"github.com/parleyhq/parley/internal/transcribe"
)

func TestLanguageLabel(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"es", "Spanish"},
		{"ES", "Spanish"},
		{"fr", "French"},
		{"hi", "Hindi"},
		{"gu", "Gujarati"},
		{"unknown", "unknown"},
		{"", "unknown"},
		{"tlh", "tlh"}, // unmapped codes pass through raw
	}
	for _, c := range cases {
		if got := transcribe.LanguageLabel(c.code); got != c.want {
			t.Errorf("LanguageLabel(%q) = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestDetectorResolvesObviousText(t *testing.T) {
	det := transcribe.NewDetector()

	cases := []struct {
		text string
		want string
	}{
		{"Bonjour, comment allez-vous aujourd'hui ?", "fr"},
		{"Hello, how are you doing today?", "en"},
		{"¿Cómo estás? Espero que todo vaya bien.", "es"},
	}
	for _, c := range cases {
		if got := det.DetectCode(c.text); got != c.want {
			t.Errorf("DetectCode(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}

func TestDetectorRejectsShortText(t *testing.T) {
	det := transcribe.NewDetector()
	if got := det.DetectCode("  hi  "); got != "" {
		t.Fatalf("expected inconclusive for short text, got %q", got)
	}
	if got := det.DetectCode(""); got != "" {
		t.Fatalf("expected inconclusive for empty text, got %q", got)
	}
}
