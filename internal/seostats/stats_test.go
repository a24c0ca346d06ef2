package seostats

import (
	"encoding/json"
	"testing"

	"github.com/tsumibito/seoscan/internal/models"
)

func richText(paragraphs ...string) json.RawMessage {
	type textNode struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type blockNode struct {
		Type     string     `json:"type"`
		Children []textNode `json:"children"`
	}
	type rootNode struct {
		Type     string      `json:"type"`
		Children []blockNode `json:"children"`
	}

	root := rootNode{Type: "root"}
	for _, p := range paragraphs {
		root.Children = append(root.Children, blockNode{
			Type:     "paragraph",
			Children: []textNode{{Type: "text", Text: p}},
		})
	}
	raw, _ := json.Marshal(map[string]rootNode{"root": root})
	return raw
}

func headingText(text string) json.RawMessage {
	raw, _ := json.Marshal(map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{
					"type": "heading",
					"tag":  "h2",
					"children": []any{
						map[string]any{"type": "text", "text": text},
					},
				},
			},
		},
	})
	return raw
}

func testDocument() models.Document {
	return models.Document{
		ID:              "doc-1",
		Collection:      "posts",
		Name:            "Yacht License Course",
		Slug:            "yacht-license-course",
		SeoTitle:        "Get Your Yacht License",
		MetaDescription: "Everything about the yacht license process.",
		Summary:         "Learn sailing basics.",
		FocusPhrase:     "yacht license",
		Fields: map[string]json.RawMessage{
			"content": richText(
				"A yacht license lets you charter boats worldwide.",
				"Renewing your yacht licence is straightforward.",
			),
		},
	}
}

func TestBuildContext(t *testing.T) {
	doc := testDocument()
	doc.Fields["bio"] = headingText("Course Overview")
	doc.FAQ = []models.FAQItem{
		{Question: "Do I need a yacht license?", Answer: richText("Yes, in most countries.")},
	}

	ctx := BuildContext(doc, []string{"content", "bio"}, []string{"sailing"})

	if ctx.Name != doc.Name || ctx.SeoTitle != doc.SeoTitle {
		t.Errorf("context did not carry document metadata: %+v", ctx)
	}
	if len(ctx.HeadingsText) != 1 || ctx.HeadingsText[0] != "Course Overview" {
		t.Errorf("headings = %v, expected [Course Overview]", ctx.HeadingsText)
	}
	if len(ctx.ContentTokens) == 0 {
		t.Error("expected content tokens")
	}
	if ctx.FaqText != "Do I need a yacht license? Yes, in most countries." {
		t.Errorf("faq text = %q", ctx.FaqText)
	}
	if len(ctx.Keywords) != 1 || ctx.Keywords[0] != "sailing" {
		t.Errorf("keywords = %v", ctx.Keywords)
	}
}

func TestBuildContextSkipsMissingFields(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content", "nonexistent"}, nil)

	if ctx.ContentText == "" {
		t.Error("expected content text from the present field")
	}
}

func TestComputeStats(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, nil)

	stats := ComputeStats(doc.FocusPhrase, ctx, nil)

	if !stats.InName {
		t.Error("expected phrase found in name")
	}
	if !stats.InSeoTitle {
		t.Error("expected phrase found in seo title")
	}
	if stats.InMetaDescription != 1 {
		t.Errorf("inMetaDescription = %d, expected 1", stats.InMetaDescription)
	}
	if stats.InSummary != 0 {
		t.Errorf("inSummary = %d, expected 0", stats.InSummary)
	}
	// Both spelling variants stem to the same phrase.
	if stats.InContent != 2 {
		t.Errorf("inContent = %d, expected 2", stats.InContent)
	}
	if stats.InHeadings != 0 {
		t.Errorf("inHeadings = %d, expected 0", stats.InHeadings)
	}
	if stats.ContentSignature == "" {
		t.Error("expected a content signature")
	}
	if stats.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestComputeStatsBodyOccurrences(t *testing.T) {
	doc := models.Document{
		Name: "Guide",
		Fields: map[string]json.RawMessage{
			"content": richText("Learn yacht training basics. Yacht training for beginners."),
		},
	}
	ctx := BuildContext(doc, []string{"content"}, nil)
	stats := ComputeStats("yacht training", ctx, nil)

	if stats.InContent != 2 {
		t.Errorf("inContent = %d, expected 2", stats.InContent)
	}
	if stats.InHeadings != 0 {
		t.Errorf("inHeadings = %d, expected 0", stats.InHeadings)
	}
}

func TestComputeStatsDensityBounds(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, nil)
	stats := ComputeStats(doc.FocusPhrase, ctx, nil)

	if stats.ContentPercentage <= 0 || stats.ContentPercentage > 100 {
		t.Errorf("content percentage %v out of bounds", stats.ContentPercentage)
	}
}

func TestComputeStatsEmptyContent(t *testing.T) {
	// An empty body must not divide by zero.
	ctx := models.SeoContentContext{Name: "Yacht License"}
	stats := ComputeStats("yacht license", ctx, nil)

	if stats.ContentPercentage != 0 {
		t.Errorf("content percentage = %v, expected 0", stats.ContentPercentage)
	}
	if stats.InContent != 0 {
		t.Errorf("inContent = %d, expected 0", stats.InContent)
	}
}

func TestComputeStatsBlankPhrase(t *testing.T) {
	ctx := models.SeoContentContext{Name: "Anything"}

	stats := ComputeStats("  ", ctx, nil)
	if stats == nil || stats.InContent != 0 || !stats.UpdatedAt.IsZero() {
		t.Errorf("expected zeroed stats for blank phrase, got %+v", stats)
	}

	previous := &models.FocusKeyphraseStats{InContent: 5}
	if got := ComputeStats("", ctx, previous); got != previous {
		t.Error("expected previous stats returned unchanged for blank phrase")
	}
}

func TestComputeStatsUnchangedKeepsPrevious(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, nil)

	first := ComputeStats(doc.FocusPhrase, ctx, nil)
	second := ComputeStats(doc.FocusPhrase, ctx, first)

	if second != first {
		t.Error("expected the same stats pointer when nothing changed")
	}
}

func TestComputeStatsDetectsContentChange(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, nil)
	first := ComputeStats(doc.FocusPhrase, ctx, nil)

	doc.Fields["content"] = richText("Completely different text without the phrase.")
	changed := BuildContext(doc, []string{"content"}, nil)
	second := ComputeStats(doc.FocusPhrase, changed, first)

	if second == first {
		t.Error("expected new stats after content change")
	}
	if second.InContent != 0 {
		t.Errorf("inContent = %d, expected 0", second.InContent)
	}
	if second.ContentPercentage != 0 {
		t.Errorf("content percentage = %v, expected 0", second.ContentPercentage)
	}
	if second.ContentSignature == first.ContentSignature {
		t.Error("expected a different content signature")
	}
}

func TestContentSignatureDeterministic(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, []string{"sailing"})

	a := ContentSignature(doc.FocusPhrase, ctx)
	b := ContentSignature(doc.FocusPhrase, ctx)
	if a != b {
		t.Errorf("signature not deterministic: %q vs %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32-char hex signature, got %q", a)
	}
}

func TestContentSignatureSensitivity(t *testing.T) {
	doc := testDocument()
	ctx := BuildContext(doc, []string{"content"}, nil)
	base := ContentSignature(doc.FocusPhrase, ctx)

	if got := ContentSignature("other phrase", ctx); got == base {
		t.Error("expected phrase change to alter the signature")
	}

	withKeywords := ctx
	withKeywords.Keywords = []string{"sailing"}
	if got := ContentSignature(doc.FocusPhrase, withKeywords); got == base {
		t.Error("expected keyword change to alter the signature")
	}
}

func TestKeywordUsage(t *testing.T) {
	doc := testDocument()
	doc.Fields["bio"] = headingText("Sailing Basics")
	ctx := BuildContext(doc, []string{"content", "bio"}, nil)

	// Heading text is part of the body text as well.
	body, headings := KeywordUsage("sailing", ctx)
	if body != 1 {
		t.Errorf("body usage = %d, expected 1", body)
	}
	if headings != 1 {
		t.Errorf("headings usage = %d, expected 1", headings)
	}

	body, _ = KeywordUsage("yacht", ctx)
	if body != 2 {
		t.Errorf("body usage for yacht = %d, expected 2", body)
	}
}
