package linkscan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsumibito/seoscan/internal/models"
)

// fakeSource serves fixed documents per collection and records fetch
// options for assertions.
type fakeSource struct {
	docs       map[string][]models.Document
	failing    map[string]error
	fetchCalls []fetchCall
}

type fetchCall struct {
	collection string
	opts       FetchOptions
}

func (f *fakeSource) FetchDocuments(ctx context.Context, collection string, opts FetchOptions) ([]models.Document, error) {
	f.fetchCalls = append(f.fetchCalls, fetchCall{collection: collection, opts: opts})
	if err, ok := f.failing[collection]; ok {
		return nil, err
	}
	var out []models.Document
	for _, doc := range f.docs[collection] {
		if opts.ExcludeID != "" && doc.ID == opts.ExcludeID {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func linkedDoc(id, collection, text, anchor, url string) models.Document {
	raw, _ := json.Marshal(map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{
					"type": "paragraph",
					"children": []any{
						map[string]any{"type": "text", "text": text},
						map[string]any{
							"type":   "link",
							"fields": map[string]any{"url": url},
							"children": []any{
								map[string]any{"type": "text", "text": anchor},
							},
						},
					},
				},
			},
		},
	})
	return models.Document{
		ID:         id,
		Collection: collection,
		Name:       "Doc " + id,
		Fields:     map[string]json.RawMessage{fieldFor(collection): raw},
	}
}

func doubleLinkedDoc(id, collection, anchor, url string) models.Document {
	link := map[string]any{
		"type":   "link",
		"fields": map[string]any{"url": url},
		"children": []any{
			map[string]any{"type": "text", "text": anchor},
		},
	}
	raw, _ := json.Marshal(map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{"type": "paragraph", "children": []any{link, link}},
			},
		},
	})
	return models.Document{
		ID:         id,
		Collection: collection,
		Name:       "Doc " + id,
		Fields:     map[string]json.RawMessage{fieldFor(collection): raw},
	}
}

func plainDoc(id, collection, text string) models.Document {
	raw, _ := json.Marshal(map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{
					"type": "paragraph",
					"children": []any{
						map[string]any{"type": "text", "text": text},
					},
				},
			},
		},
	})
	return models.Document{
		ID:         id,
		Collection: collection,
		Name:       "Doc " + id,
		Fields:     map[string]json.RawMessage{fieldFor(collection): raw},
	}
}

func fieldFor(collection string) string {
	for _, c := range DefaultConfig().Collections {
		if c.Slug == collection {
			return c.Fields[0]
		}
	}
	return "content"
}

func testScanner(source DocumentSource) *Scanner {
	return NewScanner(DefaultConfig(), source, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestCountInternalLinks(t *testing.T) {
	source := &fakeSource{docs: map[string][]models.Document{
		"posts": {
			linkedDoc("p1", "posts", "Read about the", "yacht license", "/posts/yacht-license-course"),
			linkedDoc("p2", "posts", "See", "yacht license", "/posts/yacht-license-course"),
		},
		"team": {
			linkedDoc("t1", "team", "Instructor holds a", "Yacht License", "/posts/yacht-license-course"),
		},
	}}

	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{
		Anchor:       "yacht license",
		CurrentDocID: "target",
		TargetSlug:   "yacht-license-course",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalLinks != 3 {
		t.Errorf("totalLinks = %d, expected 3", result.TotalLinks)
	}
	if len(result.ByCollection) != 2 {
		t.Fatalf("expected 2 collections with links, got %d", len(result.ByCollection))
	}
	if result.ByCollection[0].Collection != "posts" || result.ByCollection[0].Count != 2 {
		t.Errorf("posts count = %+v", result.ByCollection[0])
	}
}

func TestCountInternalLinksSlugFiltering(t *testing.T) {
	// A matching anchor pointing at a different target does not count.
	source := &fakeSource{docs: map[string][]models.Document{
		"posts": {
			linkedDoc("p1", "posts", "", "yacht license", "/posts/yacht-license-course"),
			linkedDoc("p2", "posts", "", "yacht license", "/posts/some-other-page"),
		},
	}}

	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{
		Anchor:     "yacht license",
		TargetSlug: "yacht-license-course",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalLinks != 1 {
		t.Errorf("totalLinks = %d, expected 1", result.TotalLinks)
	}
}

func TestCountInternalLinksFailingCollection(t *testing.T) {
	// A collection that fails to fetch contributes zero, the scan continues.
	source := &fakeSource{
		docs: map[string][]models.Document{
			"posts": {
				doubleLinkedDoc("p1", "posts", "yacht license", "/posts/yacht-license-course"),
				doubleLinkedDoc("p2", "posts", "yacht license", "/posts/yacht-license-course"),
				doubleLinkedDoc("p3", "posts", "yacht license", "/posts/yacht-license-course"),
			},
			"team": {linkedDoc("t1", "team", "", "yacht license", "/posts/yacht-license-course")},
		},
		failing: map[string]error{"team": errors.New("connection refused")},
	}

	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{
		Anchor:     "yacht license",
		TargetSlug: "yacht-license-course",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalLinks != 6 {
		t.Errorf("totalLinks = %d, expected 6", result.TotalLinks)
	}
	for _, col := range result.ByCollection {
		if col.Collection == "team" {
			t.Error("failing collection must not appear in the breakdown")
		}
	}
}

func TestCountInternalLinksExcludesCurrentDocument(t *testing.T) {
	source := &fakeSource{docs: map[string][]models.Document{
		"posts": {linkedDoc("self", "posts", "", "yacht license", "/posts/x")},
	}}

	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{
		Anchor:            "yacht license",
		CurrentDocID:      "self",
		CurrentCollection: "posts",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalLinks != 0 {
		t.Errorf("totalLinks = %d, expected 0 (self excluded)", result.TotalLinks)
	}

	// Exclusion only applies to the document's own collection.
	for _, call := range source.fetchCalls {
		if call.collection == "posts" && call.opts.ExcludeID != "self" {
			t.Error("expected ExcludeID on the current collection")
		}
		if call.collection != "posts" && call.opts.ExcludeID != "" {
			t.Errorf("unexpected ExcludeID on collection %s", call.collection)
		}
	}
}

func TestCountInternalLinksBlankAnchor(t *testing.T) {
	source := &fakeSource{}
	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{Anchor: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalLinks != 0 || len(result.ByCollection) != 0 {
		t.Errorf("expected empty result for blank anchor, got %+v", result)
	}
	if len(source.fetchCalls) != 0 {
		t.Error("blank anchor must not trigger any fetch")
	}
}

func TestCountInternalLinksIncludeDocuments(t *testing.T) {
	source := &fakeSource{docs: map[string][]models.Document{
		"posts": {linkedDoc("p1", "posts", "", "yacht license", "/posts/x")},
	}}

	result, err := testScanner(source).CountInternalLinks(context.Background(), CountOptions{
		Anchor:           "yacht license",
		IncludeDocuments: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ByCollection) != 1 || len(result.ByCollection[0].Documents) != 1 {
		t.Fatalf("expected per-document detail, got %+v", result.ByCollection)
	}
	detail := result.ByCollection[0].Documents[0]
	if detail.ID != "p1" || detail.Count != 1 {
		t.Errorf("document detail = %+v", detail)
	}
}

func TestCountPotentialLinks(t *testing.T) {
	source := &fakeSource{docs: map[string][]models.Document{
		// Two plain mentions, nothing linked.
		"posts": {plainDoc("p1", "posts", "A yacht license is required. Renew your yacht license early.")},
		// One mention already wrapped in a link with matching anchor.
		"team": {linkedDoc("t1", "team", "Ask about the", "yacht license", "/posts/other")},
	}}

	result, err := testScanner(source).CountPotentialLinks(context.Background(), CountOptions{
		Anchor:     "yacht license",
		TargetSlug: "yacht-license-course",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalPotential != 2 {
		t.Errorf("totalPotential = %d, expected 2", result.TotalPotential)
	}
	// The linked mention in team is subtracted regardless of its target.
	for _, col := range result.ByCollection {
		if col.Collection == "team" {
			t.Errorf("team should have no potential: %+v", col)
		}
	}
}

func TestCountPotentialLinksNeverNegative(t *testing.T) {
	// More links than mentions in the text must clamp at zero, not go
	// negative and eat potential from other fields.
	source := &fakeSource{docs: map[string][]models.Document{
		"posts": {linkedDoc("p1", "posts", "No mention here at all.", "yacht license", "/posts/x")},
	}}

	result, err := testScanner(source).CountPotentialLinks(context.Background(), CountOptions{
		Anchor: "sailing course",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalPotential != 0 {
		t.Errorf("totalPotential = %d, expected 0", result.TotalPotential)
	}
}

func TestCountPotentialLinksFaq(t *testing.T) {
	answer, _ := json.Marshal(map[string]any{
		"root": map[string]any{
			"type": "root",
			"children": []any{
				map[string]any{
					"type": "paragraph",
					"children": []any{
						map[string]any{"type": "text", "text": "A yacht license covers this."},
					},
				},
			},
		},
	})
	doc := models.Document{
		ID:         "f1",
		Collection: "faqs",
		Name:       "FAQ",
		FAQ: []models.FAQItem{
			{Question: "Do I need a yacht license?", Answer: answer},
		},
	}
	source := &fakeSource{docs: map[string][]models.Document{"faqs": {doc}}}

	result, err := testScanner(source).CountPotentialLinks(context.Background(), CountOptions{
		Anchor: "yacht license",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One mention in the question, one in the answer.
	if result.TotalPotential != 2 {
		t.Errorf("totalPotential = %d, expected 2", result.TotalPotential)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collections.json")
	content := `{"collections": [{"slug": "articles", "fields": ["body"]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Collections) != 1 || cfg.Collections[0].Slug != "articles" {
		t.Errorf("collections = %+v", cfg.Collections)
	}
	if cfg.PageSize != DefaultConfig().PageSize {
		t.Errorf("pageSize = %d, expected default fill", cfg.PageSize)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid json")
	}
}
