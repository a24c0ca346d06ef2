package textproc

import (
	"strings"

	"github.com/tsumibito/seoscan/internal/models"
)

// maxStopWordSkips bounds how many consecutive stop-word tokens may sit
// between two content tokens of a matched phrase.
const maxStopWordSkips = 3

// phraseContentTokens tokenizes a phrase and drops its stop-word tokens,
// leaving the ordered content tokens a match must walk through.
func phraseContentTokens(phrase string) []string {
	tokens := Tokenize(phrase)
	content := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !t.IsStopWord {
			content = append(content, t.Value)
		}
	}
	return content
}

// CountOccurrences counts non-overlapping occurrences of a phrase inside a
// token stream. Stop-words interleaved between phrase content tokens are
// tolerated up to maxStopWordSkips in a row; any other token breaks the
// attempt. Content-word order and identity are strict post-stemming.
func CountOccurrences(phrase string, tokens []models.NormalizedToken) int {
	content := phraseContentTokens(phrase)
	if len(content) == 0 || len(tokens) == 0 {
		return 0
	}

	count := 0
	for i := 0; i < len(tokens); i++ {
		if tokens[i].Value != content[0] {
			continue
		}

		matched, end := tryMatch(content, tokens, i)
		if matched {
			count++
			i = end // resume past the matched span
		}
	}
	return count
}

// tryMatch attempts to extend a phrase match starting at position start.
// Returns whether the full phrase matched and the index of its last token.
func tryMatch(content []string, tokens []models.NormalizedToken, start int) (bool, int) {
	phraseIdx := 1
	skips := 0
	pos := start

	for phraseIdx < len(content) {
		pos++
		if pos >= len(tokens) {
			return false, start
		}
		switch {
		case tokens[pos].Value == content[phraseIdx]:
			phraseIdx++
			skips = 0
		case tokens[pos].IsStopWord && skips < maxStopWordSkips:
			skips++
		default:
			return false, start
		}
	}
	return true, pos
}

// ContainsPhrase reports whether the phrase's stemmed form appears as a
// substring of the target's stemmed form. Used for name/title presence
// checks, which deliberately do not use the fuzzy skip-matching above.
func ContainsPhrase(phrase, target string) bool {
	phraseValues := tokenValues(Tokenize(phrase))
	if len(phraseValues) == 0 {
		return false
	}
	targetValues := tokenValues(Tokenize(target))
	return strings.Contains(
		" "+strings.Join(targetValues, " ")+" ",
		" "+strings.Join(phraseValues, " ")+" ",
	)
}

func tokenValues(tokens []models.NormalizedToken) []string {
	values := make([]string, len(tokens))
	for i, t := range tokens {
		values[i] = t.Value
	}
	return values
}
