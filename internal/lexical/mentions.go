package lexical

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tsumibito/seoscan/internal/models"
)

// FindAnchorMentions scans text for case-insensitive, exact-substring
// occurrences of anchor. Matches never overlap: after each hit the cursor
// advances past the matched span. This is deliberately simpler than the
// stemmed phrase matcher used for density scoring; potential-link counting
// depends on its stricter tolerance.
//
// Positions and matched spans always index the original text. Lowercasing
// can change a rune's byte length, so the comparison folds rune by rune
// instead of searching a lowered copy.
func FindAnchorMentions(text, anchor string) []models.MentionMatch {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" || text == "" {
		return nil
	}

	anchorRunes := []rune(anchor)
	for i, r := range anchorRunes {
		anchorRunes[i] = unicode.ToLower(r)
	}

	var mentions []models.MentionMatch
	for pos := 0; pos < len(text); {
		end, ok := foldMatchAt(text, pos, anchorRunes)
		if ok {
			mentions = append(mentions, models.MentionMatch{
				Text:     text[pos:end],
				Position: pos,
			})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return mentions
}

// foldMatchAt reports whether the lowered anchor runes match text at byte
// offset pos under simple case folding, returning the end offset of the
// matched span in text.
func foldMatchAt(text string, pos int, anchor []rune) (int, bool) {
	i := pos
	for _, want := range anchor {
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 || unicode.ToLower(r) != want {
			return 0, false
		}
		i += size
	}
	return i, true
}
