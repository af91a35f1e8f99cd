// Package redisearch implements the search index on Redis with the
// RediSearch module: one full-text index over hash records keyed by url,
// plus a sorted-set suggestion store.
package redisearch

import (
	"context"
	"errors"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/content/domain/repository"
	"github.com/searchforge/searchforge/internal/shared/result"
)

const (
	indexName     = "content_idx"
	docPrefix     = "doc:"
	suggestionKey = "suggestions"
)

// Config holds the search index connection settings.
type Config struct {
	URI      string
	Deadline time.Duration
}

// Index is the RediSearch-backed implementation of the search port.
type Index struct {
	client   *redis.Client
	deadline time.Duration
}

var _ repository.SearchIndex = (*Index)(nil)

// NewIndex connects to Redis and creates the content index when missing.
func NewIndex(ctx context.Context, cfg Config) (*Index, error) {
	opts, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}

	idx := &Index{client: redis.NewClient(opts), deadline: deadline}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := idx.client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	if err := idx.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureIndex(ctx context.Context) error {
	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	err := i.client.FTCreate(ctx, indexName,
		&redis.FTCreateOptions{OnHash: true, Prefix: []interface{}{docPrefix}},
		&redis.FieldSchema{FieldName: "url", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "title", FieldType: redis.SearchFieldTypeText, Weight: 5},
		&redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText, Weight: 2},
		&redis.FieldSchema{FieldName: "text", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{FieldName: "language", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "keywords", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "page_rank", FieldType: redis.SearchFieldTypeNumeric, Sortable: true},
	).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return err
	}
	return nil
}

// UpsertDoc atomically replaces the record for the document's url.
func (i *Index) UpsertDoc(ctx context.Context, doc model.IndexedDocument) result.Result[bool] {
	if strings.TrimSpace(doc.URL) == "" {
		return result.Failure[bool]("document url must not be empty", result.KindValidation)
	}

	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	fields := map[string]interface{}{
		"url":         doc.URL,
		"title":       normalize(doc.Title),
		"description": normalize(doc.Description),
		"text":        normalize(doc.Text),
		"language":    normalize(doc.Language),
		"keywords":    normalize(strings.Join(doc.Keywords, ",")),
		"page_rank":   doc.PageRank,
	}

	// Del then HSet in one pipeline so stale fields never survive a replace.
	pipe := i.client.TxPipeline()
	pipe.Del(ctx, docPrefix+doc.URL)
	pipe.HSet(ctx, docPrefix+doc.URL, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return failure[bool]("upsert", err)
	}
	return result.Success(true, "")
}

// DeleteDoc removes the record for url. Deleting an absent url succeeds
// with false.
func (i *Index) DeleteDoc(ctx context.Context, url string) result.Result[bool] {
	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	n, err := i.client.Del(ctx, docPrefix+url).Result()
	if err != nil {
		return failure[bool]("delete", err)
	}
	return result.Success(n > 0, "")
}

// SearchText runs a relevance-ranked full-text query.
func (i *Index) SearchText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument] {
	return i.search(ctx, escapeQuery(normalize(query)), limit)
}

// SearchPrefix matches terms starting with term.
func (i *Index) SearchPrefix(ctx context.Context, term string, limit int) result.Result[[]model.IndexedDocument] {
	return i.search(ctx, escapeQuery(normalize(term))+"*", limit)
}

// SearchByField restricts the match to one indexed field.
func (i *Index) SearchByField(ctx context.Context, field, value string, limit int) result.Result[[]model.IndexedDocument] {
	v := escapeQuery(normalize(value))
	var query string
	switch field {
	case "url", "language", "keywords":
		query = "@" + field + ":{" + v + "}"
	case "title", "description", "text":
		query = "@" + field + ":(" + v + ")"
	default:
		return result.Failuref[[]model.IndexedDocument](result.KindValidation, "unknown search field %q", field)
	}
	return i.search(ctx, query, limit)
}

func (i *Index) search(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument] {
	if limit <= 0 {
		return result.Success([]model.IndexedDocument{}, "")
	}

	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	res, err := i.client.FTSearchWithArgs(ctx, indexName, query, &redis.FTSearchOptions{
		WithScores:  true,
		LimitOffset: 0,
		Limit:       limit,
	}).Result()
	if err != nil {
		return failure[[]model.IndexedDocument]("search", err)
	}

	docs := make([]model.IndexedDocument, 0, len(res.Docs))
	for _, hit := range res.Docs {
		doc := model.IndexedDocument{
			URL:         hit.Fields["url"],
			Title:       hit.Fields["title"],
			Description: hit.Fields["description"],
			Language:    hit.Fields["language"],
			Text:        hit.Fields["text"],
		}
		if kw := hit.Fields["keywords"]; kw != "" {
			doc.Keywords = strings.Split(kw, ",")
		}
		if pr, err := strconv.ParseFloat(hit.Fields["page_rank"], 64); err == nil {
			doc.PageRank = pr
		}
		if hit.Score != nil {
			doc.Score = *hit.Score
		}
		docs = append(docs, doc)
	}

	// Relevance first; ties broken by descending page rank, then url.
	sort.SliceStable(docs, func(a, b int) bool {
		if docs[a].Score != docs[b].Score {
			return docs[a].Score > docs[b].Score
		}
		if docs[a].PageRank != docs[b].PageRank {
			return docs[a].PageRank > docs[b].PageRank
		}
		return docs[a].URL < docs[b].URL
	})

	return result.Success(docs, "")
}

// AddSuggestion records phrase with weight in the suggestion store. Adding
// an existing phrase updates its weight.
func (i *Index) AddSuggestion(ctx context.Context, phrase string, weight float64) result.Result[bool] {
	phrase = normalize(phrase)
	if phrase == "" {
		return result.Failure[bool]("suggestion phrase must not be empty", result.KindValidation)
	}

	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	if err := i.client.ZAdd(ctx, suggestionKey, redis.Z{Score: weight, Member: phrase}).Err(); err != nil {
		return failure[bool]("add suggestion", err)
	}
	return result.Success(true, "")
}

// Suggest returns up to limit phrases starting with prefix, heaviest first.
func (i *Index) Suggest(ctx context.Context, prefix string, limit int) result.Result[[]string] {
	prefix = normalize(prefix)
	if prefix == "" {
		return result.Failure[[]string]("suggestion prefix must not be empty", result.KindValidation)
	}
	if limit <= 0 {
		return result.Success([]string{}, "")
	}

	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	var phrases []string
	var cursor uint64
	pattern := strings.ReplaceAll(prefix, "*", `\*`) + "*"
	for {
		keys, next, err := i.client.ZScan(ctx, suggestionKey, cursor, pattern, 256).Result()
		if err != nil {
			return failure[[]string]("suggest", err)
		}
		// ZScan interleaves member and score.
		for k := 0; k+1 < len(keys); k += 2 {
			phrases = append(phrases, keys[k])
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	if len(phrases) == 0 {
		return result.Success([]string{}, "")
	}

	scores, err := i.client.ZMScore(ctx, suggestionKey, phrases...).Result()
	if err != nil {
		return failure[[]string]("suggest", err)
	}

	type weighted struct {
		phrase string
		weight float64
	}
	ranked := make([]weighted, len(phrases))
	for k, p := range phrases {
		ranked[k] = weighted{phrase: p, weight: scores[k]}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].weight != ranked[b].weight {
			return ranked[a].weight > ranked[b].weight
		}
		return ranked[a].phrase < ranked[b].phrase
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]string, len(ranked))
	for k, w := range ranked {
		out[k] = w.phrase
	}
	return result.Success(out, "")
}

// Ping verifies connectivity.
func (i *Index) Ping(ctx context.Context) result.Result[bool] {
	ctx, cancel := i.opCtx(ctx)
	defer cancel()

	if err := i.client.Ping(ctx).Err(); err != nil {
		return failure[bool]("ping", err)
	}
	return result.Success(true, "")
}

// Close releases the client.
func (i *Index) Close() error {
	return i.client.Close()
}

func (i *Index) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, i.deadline)
}

// failure classifies a redis error: connectivity problems are Unavailable
// so the coordinator can fall back; everything else is a database error.
func failure[T any](op string, err error) result.Result[T] {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return result.Failure[T]("deadline exceeded", result.KindUnavailable)
	case errors.As(err, &netErr):
		return result.Failuref[T](result.KindUnavailable, "%s: %v", op, err)
	default:
		return result.Failuref[T](result.KindDatabase, "%s: %v", op, err)
	}
}
