package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/searchforge/searchforge/internal/platform/database"
	"github.com/searchforge/searchforge/internal/site/domain/model"
)

const (
	fieldURL           = "url"
	fieldDomain        = "domain"
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldKeywords      = "keywords"
	fieldTextContent   = "text_content"
	fieldLanguage      = "language"
	fieldContentHash   = "content_hash"
	fieldCrawledAt     = "crawled_at"
	fieldLastIndexedAt = "last_indexed_at"
	fieldPageRank      = "page_rank"
	fieldInboundLinks  = "inbound_links"
	fieldOutboundLinks = "outbound_links"
	fieldCategory      = "category"
	fieldIsActive      = "is_active"
)

func toDocument(p *model.Profile) bson.M {
	doc := bson.M{
		fieldURL:           p.URL,
		fieldDomain:        p.Domain,
		fieldTitle:         p.Title,
		fieldDescription:   p.Description,
		fieldTextContent:   p.TextContent,
		fieldLanguage:      p.Language,
		fieldContentHash:   p.ContentHash,
		fieldCrawledAt:     database.Date(p.CrawledAt),
		fieldLastIndexedAt: database.Date(p.LastIndexedAt),
		fieldPageRank:      p.PageRank,
		fieldInboundLinks:  float64(p.InboundLinks),
		fieldOutboundLinks: float64(p.OutboundLinks),
		fieldCategory:      p.Category,
		fieldIsActive:      p.IsActive,
	}
	if len(p.Keywords) > 0 {
		doc[fieldKeywords] = p.Keywords
	}
	return doc
}

func fromDocument(doc bson.M) (*model.Profile, error) {
	p := &model.Profile{ID: database.ID(doc)}
	var err error

	if p.URL, err = database.Str(doc, fieldURL); err != nil {
		return nil, err
	}
	if p.Domain, err = database.StrOr(doc, fieldDomain, ""); err != nil {
		return nil, err
	}
	if p.Title, err = database.StrOr(doc, fieldTitle, ""); err != nil {
		return nil, err
	}
	if p.Description, err = database.StrOr(doc, fieldDescription, ""); err != nil {
		return nil, err
	}
	if p.Keywords, err = database.StrSlice(doc, fieldKeywords); err != nil {
		return nil, err
	}
	if p.TextContent, err = database.StrOr(doc, fieldTextContent, ""); err != nil {
		return nil, err
	}
	if p.Language, err = database.StrOr(doc, fieldLanguage, ""); err != nil {
		return nil, err
	}
	if p.ContentHash, err = database.StrOr(doc, fieldContentHash, ""); err != nil {
		return nil, err
	}
	if p.CrawledAt, err = database.Time(doc, fieldCrawledAt); err != nil {
		return nil, err
	}
	if p.LastIndexedAt, err = database.TimeOr(doc, fieldLastIndexedAt, p.CrawledAt); err != nil {
		return nil, err
	}
	if p.PageRank, err = database.DoubleOr(doc, fieldPageRank, 0); err != nil {
		return nil, err
	}
	if p.InboundLinks, err = database.IntOr(doc, fieldInboundLinks, 0); err != nil {
		return nil, err
	}
	if p.OutboundLinks, err = database.IntOr(doc, fieldOutboundLinks, 0); err != nil {
		return nil, err
	}
	if p.Category, err = database.StrOr(doc, fieldCategory, ""); err != nil {
		return nil, err
	}
	if p.IsActive, err = database.Bool(doc, fieldIsActive, true); err != nil {
		return nil, err
	}

	return p, nil
}
