package textproc

import (
	"strings"
	"unicode"

	"github.com/tsumibito/seoscan/internal/models"
)

// Tokenize normalizes raw text and splits it into stemmed tokens. Tokens
// are maximal runs of Unicode letters and digits; everything else is a
// separator. Tokens that stem to an empty string are dropped.
func Tokenize(raw string) []models.NormalizedToken {
	words := strings.FieldsFunc(Normalize(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]models.NormalizedToken, 0, len(words))
	for _, word := range words {
		stemmed := Stem(word)
		if stemmed == "" {
			continue
		}
		tokens = append(tokens, models.NormalizedToken{
			Value:      stemmed,
			IsStopWord: IsStopWord(stemmed),
		})
	}
	return tokens
}

// CountTokens returns the number of tokens, optionally excluding
// stop-words. The excluding form is the denominator for density
// percentages.
func CountTokens(tokens []models.NormalizedToken, skipStopWords bool) int {
	if !skipStopWords {
		return len(tokens)
	}
	count := 0
	for _, t := range tokens {
		if !t.IsStopWord {
			count++
		}
	}
	return count
}
