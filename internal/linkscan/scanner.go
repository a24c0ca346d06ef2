// Package linkscan sweeps configured document collections counting
// existing internal links and potential link opportunities for an anchor
// phrase.
package linkscan

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tsumibito/seoscan/internal/lexical"
	"github.com/tsumibito/seoscan/internal/models"
)

// FetchOptions narrow a collection fetch.
type FetchOptions struct {
	ExcludeID string
	Locale    string
	Limit     int
}

// DocumentSource fetches the documents of one collection. Implementations
// typically wrap a database or a CMS API client.
type DocumentSource interface {
	FetchDocuments(ctx context.Context, collection string, opts FetchOptions) ([]models.Document, error)
}

// Scanner runs corpus-wide link scans over a fixed collection config.
type Scanner struct {
	cfg    Config
	source DocumentSource
	logger *slog.Logger
}

// NewScanner creates a Scanner. A nil logger uses the default slog logger.
func NewScanner(cfg Config, source DocumentSource, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, source: source, logger: logger}
}

// CountOptions parameterize a scan for one anchor phrase.
type CountOptions struct {
	Anchor            string
	CurrentDocID      string
	CurrentCollection string
	TargetSlug        string
	Locale            string
	IncludeDocuments  bool
}

// CountInternalLinks counts rich-text links across all configured
// collections whose anchor text equals the target anchor, optionally
// restricted to links whose URL contains TargetSlug.
//
// Collections are fetched and scanned sequentially; a slow fetch blocks
// the remainder of the scan, bounded only by ctx. A failure on one
// collection is logged and that collection contributes zero.
func (s *Scanner) CountInternalLinks(ctx context.Context, opts CountOptions) (*models.LinkCountResult, error) {
	result := &models.LinkCountResult{
		Anchor:       opts.Anchor,
		ByCollection: []models.CollectionCount{},
	}
	anchor := strings.TrimSpace(opts.Anchor)
	if anchor == "" {
		return result, nil
	}

	for _, col := range s.cfg.Collections {
		docs, err := s.fetch(ctx, col.Slug, opts)
		if err != nil {
			s.logger.Warn("skipping collection in link scan",
				"collection", col.Slug,
				"anchor", anchor,
				"error", err,
			)
			continue
		}

		colCount := models.CollectionCount{Collection: col.Slug}
		for _, doc := range docs {
			docCount := 0
			for _, link := range s.documentLinks(doc, col.Fields) {
				if !anchorEqual(link.AnchorText, anchor) {
					continue
				}
				if opts.TargetSlug != "" && !strings.Contains(link.URL, opts.TargetSlug) {
					continue
				}
				docCount++
			}
			if docCount > 0 {
				colCount.Count += docCount
				if opts.IncludeDocuments {
					colCount.Documents = append(colCount.Documents, models.DocumentCount{
						ID:    doc.ID,
						Title: doc.Name,
						Count: docCount,
					})
				}
			}
		}
		if colCount.Count > 0 {
			result.TotalLinks += colCount.Count
			result.ByCollection = append(result.ByCollection, colCount)
		}
	}
	return result, nil
}

// CountPotentialLinks counts textual mentions of the anchor that are not
// already wrapped in a link with matching anchor text. Target-slug
// filtering does not apply to the existing-link subtraction here.
func (s *Scanner) CountPotentialLinks(ctx context.Context, opts CountOptions) (*models.PotentialLinkResult, error) {
	result := &models.PotentialLinkResult{
		Anchor:       opts.Anchor,
		ByCollection: []models.CollectionCount{},
	}
	anchor := strings.TrimSpace(opts.Anchor)
	if anchor == "" {
		return result, nil
	}

	for _, col := range s.cfg.Collections {
		docs, err := s.fetch(ctx, col.Slug, opts)
		if err != nil {
			s.logger.Warn("skipping collection in potential-link scan",
				"collection", col.Slug,
				"anchor", anchor,
				"error", err,
			)
			continue
		}

		colCount := models.CollectionCount{Collection: col.Slug}
		for _, doc := range docs {
			docCount := 0
			for _, raw := range s.documentFields(doc, col.Fields) {
				node := lexical.Parse(raw)
				text, _ := lexical.ExtractText(node)
				mentions := len(lexical.FindAnchorMentions(text, anchor))
				if mentions == 0 {
					continue
				}
				linked := 0
				for _, link := range lexical.ExtractLinks(node) {
					if anchorEqual(link.AnchorText, anchor) {
						linked++
					}
				}
				if potential := mentions - linked; potential > 0 {
					docCount += potential
				}
			}
			docCount += s.faqPotential(doc, anchor)
			if docCount > 0 {
				colCount.Count += docCount
				if opts.IncludeDocuments {
					colCount.Documents = append(colCount.Documents, models.DocumentCount{
						ID:    doc.ID,
						Title: doc.Name,
						Count: docCount,
					})
				}
			}
		}
		if colCount.Count > 0 {
			result.TotalPotential += colCount.Count
			result.ByCollection = append(result.ByCollection, colCount)
		}
	}
	return result, nil
}

func (s *Scanner) fetch(ctx context.Context, collection string, opts CountOptions) ([]models.Document, error) {
	fetchOpts := FetchOptions{
		Locale: opts.Locale,
		Limit:  s.cfg.PageSize,
	}
	if collection == opts.CurrentCollection {
		fetchOpts.ExcludeID = opts.CurrentDocID
	}
	return s.source.FetchDocuments(ctx, collection, fetchOpts)
}

// documentLinks extracts links from the configured fields plus every FAQ
// answer tree.
func (s *Scanner) documentLinks(doc models.Document, fields []string) []models.LinkMatch {
	var links []models.LinkMatch
	for _, raw := range s.documentFields(doc, fields) {
		links = append(links, lexical.ExtractLinks(lexical.Parse(raw))...)
	}
	for _, item := range doc.FAQ {
		if len(item.Answer) > 0 {
			links = append(links, lexical.ExtractLinks(lexical.Parse(item.Answer))...)
		}
	}
	return links
}

func (s *Scanner) documentFields(doc models.Document, fields []string) [][]byte {
	var raws [][]byte
	for _, field := range fields {
		if raw, ok := doc.Fields[field]; ok && len(raw) > 0 {
			raws = append(raws, raw)
		}
	}
	return raws
}

// faqPotential counts unlinked mentions inside FAQ question and answer
// text.
func (s *Scanner) faqPotential(doc models.Document, anchor string) int {
	total := 0
	for _, item := range doc.FAQ {
		total += len(lexical.FindAnchorMentions(item.Question, anchor))
		if len(item.Answer) == 0 {
			continue
		}
		node := lexical.Parse(item.Answer)
		text, _ := lexical.ExtractText(node)
		mentions := len(lexical.FindAnchorMentions(text, anchor))
		if mentions == 0 {
			continue
		}
		linked := 0
		for _, link := range lexical.ExtractLinks(node) {
			if anchorEqual(link.AnchorText, anchor) {
				linked++
			}
		}
		if potential := mentions - linked; potential > 0 {
			total += potential
		}
	}
	return total
}

func anchorEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
