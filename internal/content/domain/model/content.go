// Package model defines the crawled-content entities stored by the
// content storage coordinator.
package model

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/searchforge/searchforge/internal/geoip"
)

// CrawledPage is the full captured artifact for one url: response headers,
// raw body, parsed text and outlinks. It is the record of truth kept in the
// document store.
type CrawledPage struct {
	ID            string
	URL           string
	Domain        string
	Title         string
	Description   string
	Keywords      []string
	TextContent   string
	RawBody       []byte
	Headers       map[string]string
	Outlinks      []string
	Language      string
	ContentHash   string
	PageRank      float64
	InboundLinks  int
	OutboundLinks int
	Category      string
	RemoteIP      string
	Geo           geoip.Data
	CrawledAt     time.Time
	LastIndexedAt time.Time
	IsActive      bool
}

// IndexedDocument is the projection of a CrawledPage retained in the search
// index: just enough to rank and render a hit.
type IndexedDocument struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Keywords    []string `json:"keywords"`
	Text        string   `json:"text"`
	PageRank    float64  `json:"pageRank"`
	Score       float64  `json:"score,omitempty"`
}

// Project computes the search projection of the page.
func (p *CrawledPage) Project() IndexedDocument {
	return IndexedDocument{
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
		Language:    p.Language,
		Keywords:    p.Keywords,
		Text:        p.TextContent,
		PageRank:    p.PageRank,
	}
}

// Validate checks the invariants a page must hold before it is stored.
func (p *CrawledPage) Validate() error {
	if strings.TrimSpace(p.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}

// ContentHash returns the deterministic digest of textContent used to detect
// re-crawls of unchanged pages.
func ContentHash(textContent string) string {
	sum := blake2b.Sum256([]byte(textContent))
	return hex.EncodeToString(sum[:])
}

// SearchOptions bounds a search request.
type SearchOptions struct {
	Limit  int
	Offset int
}

const (
	// DefaultSearchLimit applies when SearchOptions.Limit is negative.
	DefaultSearchLimit = 20
	// MaxSearchLimit is the hard cap; larger requests are clamped.
	MaxSearchLimit = 200
)

// EffectiveLimit resolves the requested limit against default and cap.
// A negative limit means "unset"; an explicit zero stays zero.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit < 0 {
		return DefaultSearchLimit
	}
	if o.Limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return o.Limit
}
