// Package model defines the site profile entity: the per-url summary the
// ranker and crawler maintain for every known page.
package model

import (
	"strings"
	"time"
)

// Profile is the indexed, searchable summary of one crawled url.
type Profile struct {
	ID            string
	URL           string
	Domain        string
	Title         string
	Description   string
	Keywords      []string
	TextContent   string
	Language      string
	ContentHash   string
	CrawledAt     time.Time
	LastIndexedAt time.Time
	PageRank      float64
	InboundLinks  int
	OutboundLinks int
	Category      string
	IsActive      bool
}

// Validate checks the profile invariants before persistence.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.URL) == "" {
		return ErrEmptyURL
	}
	return nil
}
