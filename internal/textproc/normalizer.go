package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// spellingRules rewrites regional spelling variants to a canonical
// (American) form. Rules apply to substrings in order; later rules see
// already-rewritten text. Keep entries specific enough not to clip
// unrelated words ("organis" would also hit "organism").
var spellingRules = [][2]string{
	{"organisation", "organization"},
	{"organising", "organizing"},
	{"organised", "organized"},
	{"organise", "organize"},
	{"recognise", "recognize"},
	{"specialise", "specialize"},
	{"licencing", "licensing"},
	{"licence", "license"},
	{"defence", "defense"},
	{"offence", "offense"},
	{"practise", "practice"},
	{"catalogue", "catalog"},
	{"programme", "program"},
	{"travelling", "traveling"},
	{"travelled", "traveled"},
	{"favourite", "favorite"},
	{"colour", "color"},
	{"harbour", "harbor"},
	{"honour", "honor"},
	{"behaviour", "behavior"},
	{"neighbour", "neighbor"},
	{"analyse", "analyze"},
	{"centre", "center"},
	{"metre", "meter"},
	{"litre", "liter"},
	{"theatre", "theater"},
}

// charMap collapses alternate-alphabet variants to a canonical character.
// Ukrainian letters are folded onto their closest Russian counterpart so
// that mixed-language content tokenizes into one vocabulary.
var charMap = map[rune]rune{
	'ё': 'е',
	'й': 'и',
	'і': 'и',
	'ї': 'и',
	'є': 'е',
	'ґ': 'г',
	'ъ': 'ь',
}

// foldDiacritics strips combining marks: NFD decomposition, drop
// nonspacing marks, recompose. "café" becomes "cafe".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, folds character variants to a canonical form
// and rewrites regional spelling variants. Folding runs before the spelling
// rules so an accented variant ("colóur") rewrites like its plain form.
// Pure function; empty in, empty out.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(text)

	if folded, _, err := transform.String(foldDiacritics, text); err == nil {
		text = folded
	}

	text = strings.Map(func(r rune) rune {
		if mapped, ok := charMap[r]; ok {
			return mapped
		}
		return r
	}, text)

	for _, rule := range spellingRules {
		text = strings.ReplaceAll(text, rule[0], rule[1])
	}

	return text
}
