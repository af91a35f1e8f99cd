package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/geoip"
	"github.com/searchforge/searchforge/internal/platform/database"
)

// Field names are the wire format; they are fixed and case-sensitive.
const (
	fieldURL           = "url"
	fieldDomain        = "domain"
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldKeywords      = "keywords"
	fieldTextContent   = "text_content"
	fieldRawBody       = "raw_body"
	fieldHeaders       = "headers"
	fieldOutlinks      = "outlinks"
	fieldLanguage      = "language"
	fieldContentHash   = "content_hash"
	fieldPageRank      = "page_rank"
	fieldInboundLinks  = "inbound_links"
	fieldOutboundLinks = "outbound_links"
	fieldCategory      = "category"
	fieldRemoteIP      = "remote_ip"
	fieldGeo           = "geo"
	fieldCrawledAt     = "crawled_at"
	fieldLastIndexedAt = "last_indexed_at"
	fieldIsActive      = "is_active"
)

func toDocument(page *model.CrawledPage) bson.M {
	doc := bson.M{
		fieldURL:           page.URL,
		fieldDomain:        page.Domain,
		fieldTitle:         page.Title,
		fieldDescription:   page.Description,
		fieldTextContent:   page.TextContent,
		fieldLanguage:      page.Language,
		fieldContentHash:   page.ContentHash,
		fieldPageRank:      page.PageRank,
		fieldInboundLinks:  float64(page.InboundLinks),
		fieldOutboundLinks: float64(page.OutboundLinks),
		fieldCategory:      page.Category,
		fieldCrawledAt:     database.Date(page.CrawledAt),
		fieldLastIndexedAt: database.Date(page.LastIndexedAt),
		fieldIsActive:      page.IsActive,
	}
	if len(page.Keywords) > 0 {
		doc[fieldKeywords] = page.Keywords
	}
	if len(page.RawBody) > 0 {
		doc[fieldRawBody] = page.RawBody
	}
	if len(page.Headers) > 0 {
		headers := make(bson.M, len(page.Headers))
		for k, v := range page.Headers {
			headers[k] = v
		}
		doc[fieldHeaders] = headers
	}
	if len(page.Outlinks) > 0 {
		doc[fieldOutlinks] = page.Outlinks
	}
	if page.RemoteIP != "" {
		doc[fieldRemoteIP] = page.RemoteIP
	}
	if page.Geo != (geoip.Data{}) {
		doc[fieldGeo] = bson.M{
			"country":  page.Geo.Country,
			"province": page.Geo.Province,
			"city":     page.Geo.City,
		}
	}
	return doc
}

func fromDocument(doc bson.M) (*model.CrawledPage, error) {
	page := &model.CrawledPage{ID: database.ID(doc)}
	var err error

	if page.URL, err = database.Str(doc, fieldURL); err != nil {
		return nil, err
	}
	if page.Domain, err = database.StrOr(doc, fieldDomain, ""); err != nil {
		return nil, err
	}
	if page.Title, err = database.StrOr(doc, fieldTitle, ""); err != nil {
		return nil, err
	}
	if page.Description, err = database.StrOr(doc, fieldDescription, ""); err != nil {
		return nil, err
	}
	if page.Keywords, err = database.StrSlice(doc, fieldKeywords); err != nil {
		return nil, err
	}
	if page.TextContent, err = database.StrOr(doc, fieldTextContent, ""); err != nil {
		return nil, err
	}
	if page.RawBody, err = database.Bytes(doc, fieldRawBody); err != nil {
		return nil, err
	}
	if headers, err := database.Doc(doc, fieldHeaders); err != nil {
		return nil, err
	} else if headers != nil {
		page.Headers = make(map[string]string, len(headers))
		for k, v := range headers {
			if s, ok := v.(string); ok {
				page.Headers[k] = s
			}
		}
	}
	if page.Outlinks, err = database.StrSlice(doc, fieldOutlinks); err != nil {
		return nil, err
	}
	if page.Language, err = database.StrOr(doc, fieldLanguage, ""); err != nil {
		return nil, err
	}
	if page.ContentHash, err = database.StrOr(doc, fieldContentHash, ""); err != nil {
		return nil, err
	}
	if page.PageRank, err = database.DoubleOr(doc, fieldPageRank, 0); err != nil {
		return nil, err
	}
	if page.InboundLinks, err = database.IntOr(doc, fieldInboundLinks, 0); err != nil {
		return nil, err
	}
	if page.OutboundLinks, err = database.IntOr(doc, fieldOutboundLinks, 0); err != nil {
		return nil, err
	}
	if page.Category, err = database.StrOr(doc, fieldCategory, ""); err != nil {
		return nil, err
	}
	if page.RemoteIP, err = database.StrOr(doc, fieldRemoteIP, ""); err != nil {
		return nil, err
	}
	if geo, err := database.Doc(doc, fieldGeo); err != nil {
		return nil, err
	} else if geo != nil {
		page.Geo.Country, _ = database.StrOr(geo, "country", "Unknown")
		page.Geo.Province, _ = database.StrOr(geo, "province", "Unknown")
		page.Geo.City, _ = database.StrOr(geo, "city", "Unknown")
	}
	if page.CrawledAt, err = database.Time(doc, fieldCrawledAt); err != nil {
		return nil, err
	}
	if page.LastIndexedAt, err = database.TimeOr(doc, fieldLastIndexedAt, page.CrawledAt); err != nil {
		return nil, err
	}
	if page.IsActive, err = database.Bool(doc, fieldIsActive, true); err != nil {
		return nil, err
	}

	return page, nil
}
