package textproc

import "unicode/utf8"

// suffixes is the ordered list the stemmer tries against a token's ending.
// Longest and most specific endings come first; the first suffix that
// matches and leaves a stem of at least minStemLen runes is stripped once.
// The list covers English plus Russian/Ukrainian inflections (Ukrainian
// endings appear in their normalized form, see Normalize).
//
// There is deliberately no "es" entry: plurals of e-final words strip only
// the final "s", so "licenses" and "license" share the stem "license".
var suffixes = []string{
	// English derivational endings
	"ization", "isation", "fulness", "ousness",
	"iveness", "ational", "ements", "ations",
	"ility", "ation", "ement", "ments",
	"ingly", "ness", "able", "ible",
	"ance", "ence", "ment",
	// Cyrillic endings, longest first
	"иями", "ями", "ами",
	"ости", "исть", "ння", "ових", "ову",
	"иях", "ием", "ией", "иям",
	"ого", "его", "ому", "ему",
	"ыми", "ими", "ует", "уют",
	"ешь", "ете", "ишь", "ите",
	"ала", "яла", "или", "ыла",
	"ать", "ять", "оть", "уть", "ить", "еть",
	// English inflectional endings
	"ing", "ies", "est",
	"ия", "ие", "ий", "ый", "ой", "ая", "яя",
	"ое", "ее", "ые", "ов", "ев", "еи", "ей",
	"ам", "ям", "ах", "ях", "ом", "ем",
	"ут", "ют", "ат", "ят", "ою", "ею",
	"ed", "ly",
	"ы", "и", "а", "я", "о", "е", "у", "ю", "ь",
	"s",
}

// minStemLen is the minimum number of runes that must remain beyond a
// stripped suffix.
const minStemLen = 3

// Stem strips the first matching suffix from a normalized token. Stripping
// happens at most once; stemming a stemmed token is a no-op unless another
// suffix from the list happens to match the new ending, which the suffix
// order is chosen to avoid for regular inflections.
func Stem(token string) string {
	tokenLen := utf8.RuneCountInString(token)
	for _, suffix := range suffixes {
		suffixLen := utf8.RuneCountInString(suffix)
		if tokenLen-suffixLen < minStemLen {
			continue
		}
		if hasSuffix(token, suffix) {
			return token[:len(token)-len(suffix)]
		}
	}
	return token
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
