package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/geoip"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/shared/result"
)

// fakeContentRepo is an in-memory ContentRepository with fault injection.
type fakeContentRepo struct {
	mu    sync.Mutex
	pages map[string]*model.CrawledPage

	failReplace result.Result[bool]
	failFind    result.Result[*model.CrawledPage]
	failDelete  result.Result[bool]
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{pages: make(map[string]*model.CrawledPage)}
}

func (f *fakeContentRepo) Insert(ctx context.Context, page *model.CrawledPage) result.Result[string] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.URL] = page
	return result.Success(page.URL, "")
}

func (f *fakeContentRepo) Replace(ctx context.Context, url string, page *model.CrawledPage) result.Result[bool] {
	if !f.failReplace.OK && f.failReplace.Kind != result.KindNone {
		return f.failReplace
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, existed := f.pages[url]
	f.pages[url] = page
	return result.Success(existed, "")
}

func (f *fakeContentRepo) FindByURL(ctx context.Context, url string) result.Result[*model.CrawledPage] {
	if !f.failFind.OK && f.failFind.Kind != result.KindNone {
		return f.failFind
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	page, ok := f.pages[url]
	if !ok {
		return result.Failure[*model.CrawledPage]("content not found", result.KindNotFound)
	}
	return result.Success(page, "")
}

func (f *fakeContentRepo) Delete(ctx context.Context, url string) result.Result[bool] {
	if !f.failDelete.OK && f.failDelete.Kind != result.KindNone {
		return f.failDelete
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, existed := f.pages[url]
	delete(f.pages, url)
	return result.Success(existed, "")
}

func (f *fakeContentRepo) ScanText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument] {
	f.mu.Lock()
	defer f.mu.Unlock()
	var docs []model.IndexedDocument
	for _, page := range f.pages {
		if strings.Contains(strings.ToLower(page.Title), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(page.TextContent), strings.ToLower(query)) {
			docs = append(docs, page.Project())
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].PageRank != docs[j].PageRank {
			return docs[i].PageRank > docs[j].PageRank
		}
		return docs[i].URL < docs[j].URL
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return result.Success(docs, "")
}

func (f *fakeContentRepo) Ping(ctx context.Context) result.Result[bool] {
	return result.Success(true, "")
}

// fakeIndex is an in-memory SearchIndex with fault injection. failUpserts
// makes the next N upserts fail with failWith.
type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]model.IndexedDocument

	failUpserts int
	failWith    result.Result[bool]
	failSearch  result.Result[[]model.IndexedDocument]
	failDelete  result.Result[bool]

	upsertCalls int
	deleteCalls int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[string]model.IndexedDocument)}
}

func (f *fakeIndex) UpsertDoc(ctx context.Context, doc model.IndexedDocument) result.Result[bool] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertCalls++
	if f.failUpserts != 0 {
		if f.failUpserts > 0 {
			f.failUpserts--
		}
		return f.failWith
	}
	f.docs[doc.URL] = doc
	return result.Success(true, "")
}

func (f *fakeIndex) DeleteDoc(ctx context.Context, url string) result.Result[bool] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if !f.failDelete.OK && f.failDelete.Kind != result.KindNone {
		return f.failDelete
	}
	_, existed := f.docs[url]
	delete(f.docs, url)
	return result.Success(existed, "")
}

func (f *fakeIndex) SearchText(ctx context.Context, query string, limit int) result.Result[[]model.IndexedDocument] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.failSearch.OK && f.failSearch.Kind != result.KindNone {
		return f.failSearch
	}
	var docs []model.IndexedDocument
	for _, doc := range f.docs {
		if strings.Contains(strings.ToLower(doc.Text), strings.ToLower(query)) ||
			strings.Contains(strings.ToLower(doc.Title), strings.ToLower(query)) {
			docs = append(docs, doc)
		}
	}
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return result.Success(docs, "")
}

func (f *fakeIndex) SearchPrefix(ctx context.Context, term string, limit int) result.Result[[]model.IndexedDocument] {
	return f.SearchText(ctx, term, limit)
}

func (f *fakeIndex) SearchByField(ctx context.Context, field, value string, limit int) result.Result[[]model.IndexedDocument] {
	return f.SearchText(ctx, value, limit)
}

func (f *fakeIndex) AddSuggestion(ctx context.Context, phrase string, weight float64) result.Result[bool] {
	return result.Success(true, "")
}

func (f *fakeIndex) Suggest(ctx context.Context, prefix string, limit int) result.Result[[]string] {
	if !f.failSearch.OK && f.failSearch.Kind != result.KindNone {
		return result.Failure[[]string](f.failSearch.Message, f.failSearch.Kind)
	}
	return result.Success([]string{prefix + " suggestion"}, "")
}

func (f *fakeIndex) Ping(ctx context.Context) result.Result[bool] {
	return result.Success(true, "")
}

func (f *fakeIndex) has(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[url]
	return ok
}

type fakePublisher struct {
	mu     sync.Mutex
	drifts []string
}

func (p *fakePublisher) PublishDrift(ctx context.Context, url string, attempts int, lastError string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drifts = append(p.drifts, url)
}

func newTestService(repo *fakeContentRepo, index *fakeIndex, opts ...Option) *ContentService {
	svc := NewContentService(repo, index, Config{
		MaxQueue:    100,
		Interval:    time.Hour, // ticks are driven manually in tests
		MaxAttempts: 3,
	}, logger.NewNop(), opts...)
	svc.retryCfg.InitialDelay = time.Millisecond
	return svc
}

func testPage(url string) *model.CrawledPage {
	return &model.CrawledPage{
		URL:         url,
		Domain:      "example.com",
		Title:       "Example Title",
		Description: "Example description",
		TextContent: "quick brown fox",
		Language:    "en",
		PageRank:    0.5,
		IsActive:    true,
	}
}

func TestStoreContentHappyPath(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	require.True(t, res.OK)
	assert.Equal(t, "https://example.com/a", res.Value)
	assert.Empty(t, res.Message)
	assert.True(t, index.has("https://example.com/a"))
	assert.Equal(t, 0, svc.QueueDepth())

	stored := repo.pages["https://example.com/a"]
	require.NotNil(t, stored)
	assert.Equal(t, model.ContentHash("quick brown fox"), stored.ContentHash)
	assert.False(t, stored.LastIndexedAt.IsZero())
	assert.False(t, stored.CrawledAt.IsZero())
}

func TestStoreContentRejectsEmptyURL(t *testing.T) {
	svc := newTestService(newFakeContentRepo(), newFakeIndex())

	res := svc.StoreContent(context.Background(), &model.CrawledPage{})

	assert.False(t, res.OK)
	assert.Equal(t, result.KindValidation, res.Kind)
}

func TestStoreContentDocFailureLeavesIndexUntouched(t *testing.T) {
	repo := newFakeContentRepo()
	repo.failReplace = result.Failure[bool]("write concern error", result.KindDatabase)
	index := newFakeIndex()
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	assert.False(t, res.OK)
	assert.Equal(t, result.KindDatabase, res.Kind)
	assert.Equal(t, 0, index.upsertCalls)
	assert.Equal(t, 0, svc.QueueDepth())
}

func TestStoreContentDegradesWhenIndexKeepsFailing(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	index.failUpserts = -1 // every upsert fails
	index.failWith = result.Failure[bool]("index write refused", result.KindDatabase)
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	require.True(t, res.OK, "document store write succeeded, result must be a degraded success")
	assert.Equal(t, DegradedMessage, res.Message)
	assert.Equal(t, 3, index.upsertCalls, "transient failures get the full retry budget")
	assert.Equal(t, 1, svc.QueueDepth())
	assert.NotNil(t, repo.pages["https://example.com/a"])
}

func TestStoreContentRecoversWithinRetryBudget(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	index.failUpserts = 2
	index.failWith = result.Failure[bool]("transient", result.KindDatabase)
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	require.True(t, res.OK)
	assert.Empty(t, res.Message)
	assert.Equal(t, 3, index.upsertCalls)
	assert.Equal(t, 0, svc.QueueDepth())
}

func TestStoreContentUnavailableIndexSkipsRetries(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	index.failUpserts = -1
	index.failWith = result.Failure[bool]("connection refused", result.KindUnavailable)
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	require.True(t, res.OK)
	assert.Equal(t, DegradedMessage, res.Message)
	assert.Equal(t, 1, index.upsertCalls, "an unreachable index is not retried inline")
	assert.Equal(t, 1, svc.QueueDepth())
}

func TestStoreContentIdempotent(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)

	first := svc.StoreContent(context.Background(), testPage("https://example.com/a"))
	second := svc.StoreContent(context.Background(), testPage("https://example.com/a"))

	assert.True(t, first.OK)
	assert.True(t, second.OK)
	assert.Len(t, repo.pages, 1)
}

func TestStoreContentGeoEnrichment(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestService(repo, newFakeIndex(),
		WithGeoResolver(staticResolver{geoip.Data{Country: "Canada", Province: "Ontario", City: "Toronto"}}))

	page := testPage("https://example.com/a")
	page.RemoteIP = "203.0.113.9"
	res := svc.StoreContent(context.Background(), page)

	require.True(t, res.OK)
	assert.Equal(t, "Canada", repo.pages["https://example.com/a"].Geo.Country)
}

type staticResolver struct{ data geoip.Data }

func (r staticResolver) Lookup(ip string) geoip.Data { return r.data }

func TestUpdateContentReportsExistence(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestService(repo, newFakeIndex())

	created := svc.UpdateContent(context.Background(), "https://example.com/a", testPage("https://example.com/a"))
	require.True(t, created.OK)
	assert.False(t, created.Value)

	updated := svc.UpdateContent(context.Background(), "https://example.com/a", testPage("https://example.com/a"))
	require.True(t, updated.OK)
	assert.True(t, updated.Value)
}

func TestRemoveContentDeletesIndexFirst(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)

	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	res := svc.RemoveContent(context.Background(), "https://example.com/a")

	require.True(t, res.OK)
	assert.True(t, res.Value)
	assert.False(t, index.has("https://example.com/a"))
	assert.Empty(t, repo.pages)
}

func TestRemoveContentAbsentURLIsNoOp(t *testing.T) {
	svc := newTestService(newFakeContentRepo(), newFakeIndex())

	res := svc.RemoveContent(context.Background(), "https://example.com/missing")

	require.True(t, res.OK)
	assert.False(t, res.Value)
}

func TestRemoveContentUnavailableIndexStillDeletesDocument(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	index.failDelete = result.Failure[bool]("connection refused", result.KindUnavailable)
	res := svc.RemoveContent(context.Background(), "https://example.com/a")

	require.True(t, res.OK)
	assert.Empty(t, repo.pages)
	assert.Equal(t, 0, svc.QueueDepth(), "an unreachable index is not queueable work for a delete")
}

func TestRemoveContentTransientIndexFailureQueuesRepair(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	index.failDelete = result.Failure[bool]("index locked", result.KindDatabase)
	res := svc.RemoveContent(context.Background(), "https://example.com/a")

	require.True(t, res.OK)
	assert.Equal(t, 1, svc.QueueDepth())
}

func TestGetContent(t *testing.T) {
	repo := newFakeContentRepo()
	svc := newTestService(repo, newFakeIndex())
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	found := svc.GetContent(context.Background(), "https://example.com/a")
	require.True(t, found.OK)
	assert.Equal(t, "https://example.com/a", found.Value.URL)

	missing := svc.GetContent(context.Background(), "https://example.com/b")
	assert.True(t, missing.IsNotFound())
}

func TestSearchEmptyQueryIsValidationError(t *testing.T) {
	svc := newTestService(newFakeContentRepo(), newFakeIndex())

	res := svc.Search(context.Background(), "   ", model.SearchOptions{Limit: -1})

	assert.False(t, res.OK)
	assert.Equal(t, result.KindValidation, res.Kind)
}

func TestSearchZeroLimitReturnsEmptySuccess(t *testing.T) {
	svc := newTestService(newFakeContentRepo(), newFakeIndex())

	res := svc.Search(context.Background(), "fox", model.SearchOptions{Limit: 0})

	require.True(t, res.OK)
	assert.Empty(t, res.Value)
}

func TestSearchUsesIndex(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	res := svc.Search(context.Background(), "fox", model.SearchOptions{Limit: -1})

	require.True(t, res.OK)
	require.Len(t, res.Value, 1)
	assert.Empty(t, res.Message)
}

func TestSearchFallsBackToScanWhenIndexUnavailable(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	index.failSearch = result.Failure[[]model.IndexedDocument]("connection refused", result.KindUnavailable)
	res := svc.Search(context.Background(), "fox", model.SearchOptions{Limit: -1})

	require.True(t, res.OK)
	require.Len(t, res.Value, 1)
	assert.Contains(t, res.Message, "degraded")
}

func TestSearchNonUnavailableFailurePropagates(t *testing.T) {
	index := newFakeIndex()
	index.failSearch = result.Failure[[]model.IndexedDocument]("syntax error", result.KindDatabase)
	svc := newTestService(newFakeContentRepo(), index)

	res := svc.Search(context.Background(), "fox", model.SearchOptions{Limit: -1})

	assert.False(t, res.OK)
	assert.Equal(t, result.KindDatabase, res.Kind)
}

func TestSuggestUnavailableIndexDegradesToEmpty(t *testing.T) {
	index := newFakeIndex()
	index.failSearch = result.Failure[[]model.IndexedDocument]("connection refused", result.KindUnavailable)
	svc := newTestService(newFakeContentRepo(), index)

	res := svc.Suggest(context.Background(), "fo", model.SearchOptions{Limit: -1})

	require.True(t, res.OK)
	assert.Empty(t, res.Value)
	assert.Contains(t, res.Message, "degraded")
}

func TestReconcilerRepairsQueuedUpsert(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	index.failUpserts = 3 // exactly the inline retry budget
	index.failWith = result.Failure[bool]("transient", result.KindDatabase)
	svc := newTestService(repo, index)

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))
	require.True(t, res.OK)
	require.Equal(t, DegradedMessage, res.Message)
	require.Equal(t, 1, svc.QueueDepth())

	svc.Reconcile()

	assert.Equal(t, 0, svc.QueueDepth())
	assert.True(t, index.has("https://example.com/a"))
}

func TestReconcilerRemovesOrphanIndexEntry(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	svc := newTestService(repo, index)
	require.True(t, svc.StoreContent(context.Background(), testPage("https://example.com/a")).OK)

	// A removal whose index delete failed leaves the entry queued.
	index.failDelete = result.Failure[bool]("index locked", result.KindDatabase)
	require.True(t, svc.RemoveContent(context.Background(), "https://example.com/a").OK)
	require.Equal(t, 1, svc.QueueDepth())

	index.failDelete = result.Result[bool]{}
	svc.Reconcile()

	assert.Equal(t, 0, svc.QueueDepth())
	assert.False(t, index.has("https://example.com/a"))
}

func TestReconcilerAbandonsAfterMaxAttempts(t *testing.T) {
	repo := newFakeContentRepo()
	index := newFakeIndex()
	index.failUpserts = -1
	index.failWith = result.Failure[bool]("broken", result.KindDatabase)
	publisher := &fakePublisher{}
	svc := newTestService(repo, index, WithDriftPublisher(publisher))

	res := svc.StoreContent(context.Background(), testPage("https://example.com/a"))
	require.True(t, res.OK)
	require.Equal(t, 1, svc.QueueDepth())

	for i := 0; i < svc.cfg.MaxAttempts; i++ {
		svc.Reconcile()
	}

	assert.Equal(t, 0, svc.QueueDepth(), "a permanently failing url does not wedge the queue")
	require.Len(t, publisher.drifts, 1)
	assert.Equal(t, "https://example.com/a", publisher.drifts[0])
}
