package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tsumibito/seoscan/internal/linkscan"
	"github.com/tsumibito/seoscan/internal/models"
)

// SaveDocument inserts or replaces a document.
func (db *DB) SaveDocument(doc *models.Document) error {
	fieldsJSON, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}
	faqJSON, err := json.Marshal(doc.FAQ)
	if err != nil {
		return fmt.Errorf("failed to marshal faq: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO documents (id, collection, locale, name, slug, seo_title,
			meta_description, summary, focus_phrase, fields, faq, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			locale = excluded.locale,
			name = excluded.name,
			slug = excluded.slug,
			seo_title = excluded.seo_title,
			meta_description = excluded.meta_description,
			summary = excluded.summary,
			focus_phrase = excluded.focus_phrase,
			fields = excluded.fields,
			faq = excluded.faq,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Collection, doc.Locale, doc.Name, doc.Slug, doc.SeoTitle,
		doc.MetaDescription, doc.Summary, doc.FocusPhrase, string(fieldsJSON),
		string(faqJSON), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by id.
func (db *DB) GetDocument(id string) (*models.Document, error) {
	row := db.conn.QueryRow(`
		SELECT id, collection, locale, name, slug, seo_title, meta_description,
			summary, focus_phrase, fields, faq, created_at, updated_at
		FROM documents
		WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes a document and its dependent rows.
func (db *DB) DeleteDocument(id string) error {
	res, err := db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

// FetchDocuments implements linkscan.DocumentSource: all documents of one
// collection, excluding one id and filtering by locale when requested,
// capped at opts.Limit rows.
func (db *DB) FetchDocuments(ctx context.Context, collection string, opts linkscan.FetchOptions) ([]models.Document, error) {
	query := `
		SELECT id, collection, locale, name, slug, seo_title, meta_description,
			summary, focus_phrase, fields, faq, created_at, updated_at
		FROM documents
		WHERE collection = ?`
	args := []any{collection}

	if opts.ExcludeID != "" {
		query += ` AND id != ?`
		args = append(args, opts.ExcludeID)
	}
	if opts.Locale != "" {
		query += ` AND (locale = ? OR locale = '')`
		args = append(args, opts.Locale)
	}
	query += ` ORDER BY created_at`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc        models.Document
		fieldsJSON string
		faqJSON    string
	)
	err := row.Scan(&doc.ID, &doc.Collection, &doc.Locale, &doc.Name, &doc.Slug,
		&doc.SeoTitle, &doc.MetaDescription, &doc.Summary, &doc.FocusPhrase,
		&fieldsJSON, &faqJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &doc.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if err := json.Unmarshal([]byte(faqJSON), &doc.FAQ); err != nil {
		return nil, fmt.Errorf("failed to unmarshal faq: %w", err)
	}
	return &doc, nil
}

// SaveKeywordEntry inserts or replaces a keyword entry, keyed by
// (document, keyword).
func (db *DB) SaveKeywordEntry(entry *models.KeywordEntry) error {
	linkDetails, err := marshalNullable(entry.LinkDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal link details: %w", err)
	}
	potentialDetails, err := marshalNullable(entry.PotentialDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal potential details: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO keyword_entries (id, document_id, keyword, notes, links_count,
			potential_links_count, cached_total, cached_headings, link_details,
			potential_details, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id, keyword) DO UPDATE SET
			notes = excluded.notes,
			links_count = excluded.links_count,
			potential_links_count = excluded.potential_links_count,
			cached_total = excluded.cached_total,
			cached_headings = excluded.cached_headings,
			link_details = excluded.link_details,
			potential_details = excluded.potential_details,
			updated_at = excluded.updated_at
	`, entry.ID, entry.DocumentID, entry.Keyword, entry.Notes, entry.LinksCount,
		entry.PotentialLinksCount, entry.CachedTotal, entry.CachedHeadings,
		linkDetails, potentialDetails, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save keyword entry: %w", err)
	}
	return nil
}

// GetKeywordEntries returns every keyword entry of a document.
func (db *DB) GetKeywordEntries(documentID string) ([]models.KeywordEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, document_id, keyword, notes, links_count, potential_links_count,
			cached_total, cached_headings, link_details, potential_details, updated_at
		FROM keyword_entries
		WHERE document_id = ?
		ORDER BY keyword
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query keyword entries: %w", err)
	}
	defer rows.Close()

	var entries []models.KeywordEntry
	for rows.Next() {
		var (
			entry            models.KeywordEntry
			linkDetails      sql.NullString
			potentialDetails sql.NullString
		)
		err := rows.Scan(&entry.ID, &entry.DocumentID, &entry.Keyword, &entry.Notes,
			&entry.LinksCount, &entry.PotentialLinksCount, &entry.CachedTotal,
			&entry.CachedHeadings, &linkDetails, &potentialDetails, &entry.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan keyword entry: %w", err)
		}
		if linkDetails.Valid && linkDetails.String != "" {
			if err := json.Unmarshal([]byte(linkDetails.String), &entry.LinkDetails); err != nil {
				return nil, fmt.Errorf("failed to unmarshal link details: %w", err)
			}
		}
		if potentialDetails.Valid && potentialDetails.String != "" {
			if err := json.Unmarshal([]byte(potentialDetails.String), &entry.PotentialDetails); err != nil {
				return nil, fmt.Errorf("failed to unmarshal potential details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteKeywordEntry removes one keyword entry of a document.
func (db *DB) DeleteKeywordEntry(documentID, keyword string) error {
	res, err := db.conn.Exec(`
		DELETE FROM keyword_entries WHERE document_id = ? AND keyword = ?
	`, documentID, keyword)
	if err != nil {
		return fmt.Errorf("failed to delete keyword entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("keyword entry %s/%s: %w", documentID, keyword, ErrNotFound)
	}
	return nil
}

// SaveFocusStats persists the focus keyphrase stats of a document.
func (db *DB) SaveFocusStats(documentID, phrase string, stats *models.FocusKeyphraseStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO focus_stats (document_id, phrase, stats, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			phrase = excluded.phrase,
			stats = excluded.stats,
			updated_at = excluded.updated_at
	`, documentID, phrase, string(statsJSON), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save focus stats: %w", err)
	}
	return nil
}

// GetFocusStats returns the stored stats of a document, or nil when none
// have been computed yet.
func (db *DB) GetFocusStats(documentID string) (*models.FocusKeyphraseStats, error) {
	var statsJSON string
	err := db.conn.QueryRow(`
		SELECT stats FROM focus_stats WHERE document_id = ?
	`, documentID).Scan(&statsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get focus stats: %w", err)
	}

	var stats models.FocusKeyphraseStats
	if err := json.Unmarshal([]byte(statsJSON), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return &stats, nil
}

func marshalNullable[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
