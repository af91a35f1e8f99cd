package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"unset uses default", -1, DefaultSearchLimit},
		{"explicit zero stays zero", 0, 0},
		{"in range passes through", 50, 50},
		{"at cap passes through", MaxSearchLimit, MaxSearchLimit},
		{"above cap is clamped", MaxSearchLimit + 1, MaxSearchLimit},
		{"far above cap is clamped", 100000, MaxSearchLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := SearchOptions{Limit: tt.limit}
			assert.Equal(t, tt.want, opts.EffectiveLimit())
		})
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("the quick brown fox")
	b := ContentHash("the quick brown fox")
	c := ContentHash("the quick brown fox.")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestContentHashEmptyInput(t *testing.T) {
	assert.Len(t, ContentHash(""), 64)
}

func TestProject(t *testing.T) {
	page := &CrawledPage{
		URL:         "https://example.com/a",
		Title:       "Example",
		Description: "An example page",
		Keywords:    []string{"example", "test"},
		TextContent: "body text",
		RawBody:     []byte("<html>body text</html>"),
		Language:    "en",
		PageRank:    0.42,
	}

	doc := page.Project()

	assert.Equal(t, page.URL, doc.URL)
	assert.Equal(t, page.Title, doc.Title)
	assert.Equal(t, page.Description, doc.Description)
	assert.Equal(t, page.Keywords, doc.Keywords)
	assert.Equal(t, page.TextContent, doc.Text)
	assert.Equal(t, page.PageRank, doc.PageRank)
	assert.Zero(t, doc.Score)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, (&CrawledPage{URL: "https://example.com"}).Validate())
	assert.ErrorIs(t, (&CrawledPage{}).Validate(), ErrEmptyURL)
	assert.ErrorIs(t, (&CrawledPage{URL: "   "}).Validate(), ErrEmptyURL)
}
