package models

import (
	"encoding/json"
	"time"
)

// NormalizedToken is a single stemmed token produced by the tokenizer.
// Token streams are ephemeral: they are recomputed from the raw text on
// every analysis pass and never mutated independently of their source.
type NormalizedToken struct {
	Value      string `json:"value"`
	IsStopWord bool   `json:"isStopWord"`
}

// Document is one content record from a CMS collection. Rich-text fields
// are kept as raw JSON trees and only interpreted by the lexical package.
type Document struct {
	ID              string                     `json:"id"`
	Collection      string                     `json:"collection"`
	Locale          string                     `json:"locale,omitempty"`
	Name            string                     `json:"name"`
	Slug            string                     `json:"slug"`
	SeoTitle        string                     `json:"seoTitle,omitempty"`
	MetaDescription string                     `json:"metaDescription,omitempty"`
	Summary         string                     `json:"summary,omitempty"`
	FocusPhrase     string                     `json:"focusPhrase,omitempty"`
	Fields          map[string]json.RawMessage `json:"fields,omitempty"`
	FAQ             []FAQItem                  `json:"faq,omitempty"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

// FAQItem is one question/answer pair. Answers are rich-text trees.
type FAQItem struct {
	Question string          `json:"question"`
	Answer   json.RawMessage `json:"answer,omitempty"`
}

// SeoContentContext is the derived, analyzable view of one document.
// Token lists are always derivable deterministically from the raw text;
// the context is built fresh per analysis request and never persisted.
type SeoContentContext struct {
	Name            string
	SeoTitle        string
	MetaDescription string
	Summary         string
	ContentText     string
	ContentTokens   []NormalizedToken
	HeadingsText    []string
	HeadingsTokens  [][]NormalizedToken
	FaqText         string
	Keywords        []string
}

// KeywordEntry is a user-managed link keyword tracked on a document's SEO
// metadata, with cached counts updated by background recounts.
type KeywordEntry struct {
	ID                  string               `json:"id"`
	DocumentID          string               `json:"documentId"`
	Keyword             string               `json:"keyword"`
	Notes               string               `json:"notes,omitempty"`
	LinksCount          int                  `json:"linksCount"`
	PotentialLinksCount int                  `json:"potentialLinksCount"`
	CachedTotal         int                  `json:"cachedTotal"`
	CachedHeadings      int                  `json:"cachedHeadings"`
	LinkDetails         *LinkCountResult     `json:"linkDetails,omitempty"`
	PotentialDetails    *PotentialLinkResult `json:"potentialDetails,omitempty"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// FocusKeyphraseStats is the computed metric snapshot for a document's
// focus phrase. Stats are valid only while ContentSignature matches the
// recomputed signature of the same inputs.
type FocusKeyphraseStats struct {
	InName            bool      `json:"inName"`
	InSeoTitle        bool      `json:"inSeoTitle"`
	InMetaDescription int       `json:"inMetaDescription"`
	InSummary         int       `json:"inSummary"`
	InContent         int       `json:"inContent"`
	ContentPercentage float64   `json:"contentPercentage"`
	InHeadings        int       `json:"inHeadings"`
	InFaq             int       `json:"inFaq"`
	ContentSignature  string    `json:"contentSignature"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LinkMatch is one discovered rich-text link. RelationTo and DocID are set
// only for internal document references.
type LinkMatch struct {
	URL        string `json:"url"`
	AnchorText string `json:"anchorText"`
	RelationTo string `json:"relationTo,omitempty"`
	DocID      string `json:"docId,omitempty"`
}

// MentionMatch is one textual occurrence of an anchor phrase found by the
// plain substring scanner.
type MentionMatch struct {
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// DocumentCount is a per-document detail row in a scan result.
type DocumentCount struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

// CollectionCount aggregates counts for one collection. Documents is
// populated only when detail was requested.
type CollectionCount struct {
	Collection string          `json:"collection"`
	Count      int             `json:"count"`
	Documents  []DocumentCount `json:"documents,omitempty"`
}

// LinkCountResult aggregates existing internal links for one anchor.
type LinkCountResult struct {
	Anchor       string            `json:"anchor"`
	TotalLinks   int               `json:"totalLinks"`
	ByCollection []CollectionCount `json:"byCollection"`
}

// PotentialLinkResult aggregates unlinked mentions for one anchor.
type PotentialLinkResult struct {
	Anchor         string            `json:"anchor"`
	TotalPotential int               `json:"totalPotential"`
	ByCollection   []CollectionCount `json:"byCollection"`
}
