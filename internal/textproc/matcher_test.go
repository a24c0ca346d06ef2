package textproc

import "testing"

func TestCountOccurrencesExact(t *testing.T) {
	tokens := Tokenize("yacht license courses for everyone")

	if got := CountOccurrences("yacht license", tokens); got != 1 {
		t.Errorf("expected 1 occurrence, got %d", got)
	}
}

func TestCountOccurrencesStopWordGaps(t *testing.T) {
	// Stop-words between phrase words are tolerated.
	tokens := Tokenize("yacht for the license")

	if got := CountOccurrences("yacht license", tokens); got != 1 {
		t.Errorf("expected 1 occurrence across stop-word gap, got %d", got)
	}
}

func TestCountOccurrencesOrderMatters(t *testing.T) {
	tokens := Tokenize("license yacht")

	if got := CountOccurrences("yacht license", tokens); got != 0 {
		t.Errorf("expected 0 occurrences for reversed word order, got %d", got)
	}
}

func TestCountOccurrencesContentWordBreaks(t *testing.T) {
	// A non-stop-word between phrase words breaks the match.
	tokens := Tokenize("yacht racing license")

	if got := CountOccurrences("yacht license", tokens); got != 0 {
		t.Errorf("expected 0 occurrences with intervening content word, got %d", got)
	}
}

func TestCountOccurrencesSkipBound(t *testing.T) {
	// Three consecutive stop-words still match, four do not.
	three := Tokenize("yacht of the and license")
	if got := CountOccurrences("yacht license", three); got != 1 {
		t.Errorf("expected 1 occurrence across three stop-words, got %d", got)
	}

	four := Tokenize("yacht of the and by license")
	if got := CountOccurrences("yacht license", four); got != 0 {
		t.Errorf("expected 0 occurrences across four stop-words, got %d", got)
	}
}

func TestCountOccurrencesNonOverlapping(t *testing.T) {
	tokens := Tokenize("yacht yacht yacht")

	if got := CountOccurrences("yacht yacht", tokens); got != 1 {
		t.Errorf("expected 1 non-overlapping occurrence, got %d", got)
	}
}

func TestCountOccurrencesMultiple(t *testing.T) {
	tokens := Tokenize("yacht license today, yacht license tomorrow, and a yacht for the license")

	if got := CountOccurrences("yacht license", tokens); got != 3 {
		t.Errorf("expected 3 occurrences, got %d", got)
	}
}

func TestCountOccurrencesInflections(t *testing.T) {
	// Inflected forms stem to the same values.
	tokens := Tokenize("yachts licences")

	if got := CountOccurrences("yacht license", tokens); got != 1 {
		t.Errorf("expected 1 occurrence across inflections, got %d", got)
	}
}

func TestCountOccurrencesEmpty(t *testing.T) {
	if got := CountOccurrences("", Tokenize("some text")); got != 0 {
		t.Errorf("expected 0 for empty phrase, got %d", got)
	}
	if got := CountOccurrences("of the", Tokenize("some text")); got != 0 {
		t.Errorf("expected 0 for stop-word-only phrase, got %d", got)
	}
	if got := CountOccurrences("yacht", nil); got != 0 {
		t.Errorf("expected 0 for empty token stream, got %d", got)
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		phrase   string
		target   string
		expected bool
	}{
		{"yacht license", "Premium Yacht Licence Courses", true},
		{"yacht license", "license for a yacht", false},
		{"yacht", "Yachts and more", true},
		{"yacht license", "", false},
		{"", "anything", false},
	}

	for _, tt := range tests {
		if got := ContainsPhrase(tt.phrase, tt.target); got != tt.expected {
			t.Errorf("ContainsPhrase(%q, %q) = %v, expected %v", tt.phrase, tt.target, got, tt.expected)
		}
	}
}
