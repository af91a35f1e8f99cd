package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/geoip"
	"github.com/searchforge/searchforge/internal/platform/database"
)

// wireDocument builds a record shaped the way the driver returns it:
// arrays as primitive.A, dates as primitive.DateTime, subdocuments as bson.D.
func wireDocument() bson.M {
	return bson.M{
		"_id":             primitive.NewObjectID(),
		fieldURL:          "https://example.com/page",
		fieldDomain:       "example.com",
		fieldTitle:        "Example",
		fieldDescription:  "A page",
		fieldKeywords:     primitive.A{"go", "search"},
		fieldTextContent:  "quick brown fox",
		fieldRawBody:      primitive.Binary{Data: []byte("<html></html>")},
		fieldHeaders:      bson.D{{Key: "Content-Type", Value: "text/html"}},
		fieldOutlinks:     primitive.A{"https://example.com/other"},
		fieldLanguage:     "en",
		fieldContentHash:  model.ContentHash("quick brown fox"),
		fieldPageRank:     0.37,
		fieldInboundLinks: int32(12),
		fieldOutboundLinks: int64(3),
		fieldCategory:     "news",
		fieldRemoteIP:     "203.0.113.9",
		fieldGeo:          bson.D{{Key: "country", Value: "Canada"}, {Key: "province", Value: "Ontario"}, {Key: "city", Value: "Toronto"}},
		fieldCrawledAt:    database.Date(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
		fieldLastIndexedAt: database.Date(time.Date(2026, 5, 1, 12, 5, 0, 0, time.UTC)),
		fieldIsActive:     true,
	}
}

func TestFromDocument(t *testing.T) {
	page, err := fromDocument(wireDocument())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/page", page.URL)
	assert.Equal(t, "example.com", page.Domain)
	assert.Equal(t, []string{"go", "search"}, page.Keywords)
	assert.Equal(t, []byte("<html></html>"), page.RawBody)
	assert.Equal(t, map[string]string{"Content-Type": "text/html"}, page.Headers)
	assert.Equal(t, []string{"https://example.com/other"}, page.Outlinks)
	assert.Equal(t, 0.37, page.PageRank)
	assert.Equal(t, 12, page.InboundLinks)
	assert.Equal(t, 3, page.OutboundLinks)
	assert.Equal(t, "203.0.113.9", page.RemoteIP)
	assert.Equal(t, geoip.Data{Country: "Canada", Province: "Ontario", City: "Toronto"}, page.Geo)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), page.CrawledAt)
	assert.True(t, page.IsActive)
	assert.NotEmpty(t, page.ID)
}

func TestFromDocumentMinimalRecord(t *testing.T) {
	// Only url is required; everything else has a defined default.
	page, err := fromDocument(bson.M{
		fieldURL:       "https://example.com/bare",
		fieldCrawledAt: database.Date(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/bare", page.URL)
	assert.Empty(t, page.Keywords)
	assert.Empty(t, page.RemoteIP)
	assert.Zero(t, page.Geo)
	assert.True(t, page.IsActive, "records predating the active flag are live")
	assert.Equal(t, page.CrawledAt, page.LastIndexedAt, "last indexed falls back to crawl time")
}

func TestFromDocumentMissingURL(t *testing.T) {
	_, err := fromDocument(bson.M{fieldTitle: "no url"})

	var fieldErr *database.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, fieldURL, fieldErr.Field)
}

func TestFromDocumentWrongTypeNamesField(t *testing.T) {
	doc := wireDocument()
	doc[fieldPageRank] = "very high"

	_, err := fromDocument(doc)

	var fieldErr *database.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, fieldPageRank, fieldErr.Field)
}

func TestToDocumentOmitsEmptyOptionals(t *testing.T) {
	doc := toDocument(&model.CrawledPage{
		URL:       "https://example.com/a",
		CrawledAt: time.Now(),
	})

	assert.NotContains(t, doc, fieldKeywords)
	assert.NotContains(t, doc, fieldRawBody)
	assert.NotContains(t, doc, fieldHeaders)
	assert.NotContains(t, doc, fieldOutlinks)
	assert.NotContains(t, doc, fieldRemoteIP)
	assert.NotContains(t, doc, fieldGeo)
	assert.Contains(t, doc, fieldURL)
	assert.Contains(t, doc, fieldIsActive)
}

func TestToDocumentCarriesGeo(t *testing.T) {
	doc := toDocument(&model.CrawledPage{
		URL:      "https://example.com/a",
		RemoteIP: "203.0.113.9",
		Geo:      geoip.Data{Country: "Canada", Province: "Ontario", City: "Toronto"},
	})

	assert.Equal(t, "203.0.113.9", doc[fieldRemoteIP])
	geo, ok := doc[fieldGeo].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Canada", geo["country"])
}
