// Package seostats computes the focus-keyphrase metric snapshot for a
// single document and assembles keyword usage counts for link keywords.
package seostats

import (
	"math"
	"strings"
	"time"

	"github.com/tsumibito/seoscan/internal/lexical"
	"github.com/tsumibito/seoscan/internal/models"
	"github.com/tsumibito/seoscan/internal/textproc"
)

// BuildContext derives the analyzable view of a document: plain text and
// headings from its rich-text fields (in field-name order as stored),
// token streams, and the concatenated FAQ text.
func BuildContext(doc models.Document, fieldOrder []string, keywords []string) models.SeoContentContext {
	ctx := models.SeoContentContext{
		Name:            doc.Name,
		SeoTitle:        doc.SeoTitle,
		MetaDescription: doc.MetaDescription,
		Summary:         doc.Summary,
		Keywords:        keywords,
	}

	var contentParts []string
	for _, field := range fieldOrder {
		raw, ok := doc.Fields[field]
		if !ok {
			continue
		}
		text, headings := lexical.ExtractText(lexical.Parse(raw))
		if text != "" {
			contentParts = append(contentParts, text)
		}
		ctx.HeadingsText = append(ctx.HeadingsText, headings...)
	}
	ctx.ContentText = strings.Join(contentParts, " ")
	ctx.ContentTokens = textproc.Tokenize(ctx.ContentText)

	ctx.HeadingsTokens = make([][]models.NormalizedToken, len(ctx.HeadingsText))
	for i, h := range ctx.HeadingsText {
		ctx.HeadingsTokens[i] = textproc.Tokenize(h)
	}

	var faqParts []string
	for _, item := range doc.FAQ {
		if item.Question != "" {
			faqParts = append(faqParts, item.Question)
		}
		if answer, _ := lexical.ExtractText(lexical.Parse(item.Answer)); answer != "" {
			faqParts = append(faqParts, answer)
		}
	}
	ctx.FaqText = strings.Join(faqParts, " ")

	return ctx
}

// ComputeStats computes the metric snapshot for one focus phrase. A blank
// phrase performs no computation and returns previous (or a zeroed record).
// When the freshly computed stats equal previous field by field, previous
// is returned unchanged so UpdatedAt does not churn.
func ComputeStats(focusPhrase string, ctx models.SeoContentContext, previous *models.FocusKeyphraseStats) *models.FocusKeyphraseStats {
	if strings.TrimSpace(focusPhrase) == "" {
		if previous != nil {
			return previous
		}
		return &models.FocusKeyphraseStats{}
	}

	stats := &models.FocusKeyphraseStats{
		InName:            textproc.ContainsPhrase(focusPhrase, ctx.Name),
		InSeoTitle:        textproc.ContainsPhrase(focusPhrase, ctx.SeoTitle),
		InMetaDescription: countIn(focusPhrase, ctx.MetaDescription),
		InSummary:         countIn(focusPhrase, ctx.Summary),
		InFaq:             countIn(focusPhrase, ctx.FaqText),
		InContent:         textproc.CountOccurrences(focusPhrase, ctx.ContentTokens),
		ContentSignature:  ContentSignature(focusPhrase, ctx),
	}

	for _, headingTokens := range ctx.HeadingsTokens {
		stats.InHeadings += textproc.CountOccurrences(focusPhrase, headingTokens)
	}

	denominator := textproc.CountTokens(ctx.ContentTokens, true)
	if denominator < 1 {
		denominator = 1
	}
	stats.ContentPercentage = round2(float64(stats.InContent) / float64(denominator) * 100)

	if previous != nil && equal(stats, previous) {
		return previous
	}

	stats.UpdatedAt = time.Now()
	return stats
}

func countIn(phrase, text string) int {
	if text == "" {
		return 0
	}
	return textproc.CountOccurrences(phrase, textproc.Tokenize(text))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// equal compares every metric field plus the content signature; UpdatedAt
// is deliberately excluded.
func equal(a, b *models.FocusKeyphraseStats) bool {
	return a.InName == b.InName &&
		a.InSeoTitle == b.InSeoTitle &&
		a.InMetaDescription == b.InMetaDescription &&
		a.InSummary == b.InSummary &&
		a.InContent == b.InContent &&
		round2(a.ContentPercentage) == round2(b.ContentPercentage) &&
		a.InHeadings == b.InHeadings &&
		a.InFaq == b.InFaq &&
		a.ContentSignature == b.ContentSignature
}

// KeywordUsage counts how often a link keyword occurs in the document body
// and its headings. Used to refresh the cached totals on keyword entries.
func KeywordUsage(keyword string, ctx models.SeoContentContext) (body, headings int) {
	body = textproc.CountOccurrences(keyword, ctx.ContentTokens)
	for _, headingTokens := range ctx.HeadingsTokens {
		headings += textproc.CountOccurrences(keyword, headingTokens)
	}
	return body, headings
}
