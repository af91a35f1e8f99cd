// Package service implements the content storage coordinator: the one
// component that decides when the document store and the search index gain
// or lose a record for a url, and keeps the pair consistent under partial
// failure.
package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/searchforge/searchforge/internal/content/domain/model"
	"github.com/searchforge/searchforge/internal/content/domain/repository"
	"github.com/searchforge/searchforge/internal/geoip"
	"github.com/searchforge/searchforge/internal/platform/logger"
	"github.com/searchforge/searchforge/internal/platform/metrics"
	"github.com/searchforge/searchforge/internal/shared/result"
)

// DegradedMessage is carried by a Success whose search index write is
// still pending.
const DegradedMessage = "content stored; index pending"

const degradedSearchMessage = "degraded: served from document store scan, search index unavailable"

// Config tunes the coordinator.
type Config struct {
	MaxQueue      int
	Interval      time.Duration
	MaxAttempts   int
	ShutdownGrace time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxQueue <= 0 {
		c.MaxQueue = 10000
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.ShutdownGrace <= 0 {
		c.ShutdownGrace = 2 * time.Second
	}
}

// DriftPublisher receives urls the reconciler abandoned.
type DriftPublisher interface {
	PublishDrift(ctx context.Context, url string, attempts int, lastError string)
}

// ContentService coordinates the dual-store content storage.
type ContentService struct {
	contentRepo repository.ContentRepository
	searchIndex repository.SearchIndex
	geo         geoip.Resolver
	queue       *reconcileQueue
	reconciler  *reconciler
	logger      logger.Logger
	throttle    *logger.Throttle
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	publisher   DriftPublisher
	retryCfg    retryConfig
	cfg         Config
}

// Option configures optional collaborators.
type Option func(*ContentService)

// WithGeoResolver enables geo enrichment of stored pages.
func WithGeoResolver(r geoip.Resolver) Option {
	return func(s *ContentService) { s.geo = r }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ContentService) { s.metrics = m }
}

// WithTracer wires operation tracing.
func WithTracer(t trace.Tracer) Option {
	return func(s *ContentService) { s.tracer = t }
}

// WithDriftPublisher wires the permanent-drift event sink.
func WithDriftPublisher(p DriftPublisher) Option {
	return func(s *ContentService) { s.publisher = p }
}

// NewContentService creates the coordinator. Call Start to run the
// background reconciler and Stop to shut it down.
func NewContentService(contentRepo repository.ContentRepository, searchIndex repository.SearchIndex, cfg Config, log logger.Logger, opts ...Option) *ContentService {
	cfg.applyDefaults()

	s := &ContentService{
		contentRepo: contentRepo,
		searchIndex: searchIndex,
		queue:       newReconcileQueue(cfg.MaxQueue),
		logger:      log,
		throttle:    logger.NewThrottle(log, time.Minute),
		tracer:      noop.NewTracerProvider().Tracer("content"),
		retryCfg:    defaultRetryConfig(),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reconciler = newReconciler(s)
	return s
}

// Start launches the background reconciler.
func (s *ContentService) Start() error {
	return s.reconciler.Start()
}

// Stop signals the reconciler, waits up to the grace period for the queue
// to drain, then force-stops.
func (s *ContentService) Stop() {
	s.reconciler.Stop()
	if !s.queue.WaitUntilEmpty(s.cfg.ShutdownGrace) {
		s.logger.Warn("shutdown with pending index repairs", "pending", s.queue.Len())
	}
	s.queue.Close()
}

// QueueDepth reports the number of urls awaiting index repair.
func (s *ContentService) QueueDepth() int { return s.queue.Len() }

// QueueDrops reports how many entries the full queue has discarded.
func (s *ContentService) QueueDrops() uint64 { return s.queue.Drops() }

// StoreContent writes the full page to the document store, then projects it
// into the search index. The returned id is the page url, the canonical key
// of the pair. A Success carrying DegradedMessage means the index write is
// queued for reconciliation.
func (s *ContentService) StoreContent(ctx context.Context, page *model.CrawledPage) result.Result[string] {
	ctx, span := s.tracer.Start(ctx, "content.store", trace.WithAttributes(attribute.String("url", page.URL)))
	defer span.End()

	if err := page.Validate(); err != nil {
		return result.Failure[string](err.Error(), result.KindValidation)
	}
	s.preparePage(page)

	docRes := s.contentRepo.Replace(ctx, page.URL, page)
	if !docRes.OK {
		// The document store write failed; the index was never touched.
		s.logFailure("store content", page.URL, docRes.Message, docRes.Kind)
		return result.Propagate[string](docRes)
	}

	if degraded := s.upsertProjection(ctx, page); degraded {
		return result.Success(page.URL, DegradedMessage)
	}
	return result.Success(page.URL, "")
}

// UpdateContent replaces the document store record for url and re-upserts
// its projection. The bool reports whether a record already existed.
func (s *ContentService) UpdateContent(ctx context.Context, url string, page *model.CrawledPage) result.Result[bool] {
	ctx, span := s.tracer.Start(ctx, "content.update", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	if err := page.Validate(); err != nil {
		return result.Failure[bool](err.Error(), result.KindValidation)
	}
	page.URL = url
	s.preparePage(page)

	docRes := s.contentRepo.Replace(ctx, url, page)
	if !docRes.OK {
		s.logFailure("update content", url, docRes.Message, docRes.Kind)
		return docRes
	}

	if degraded := s.upsertProjection(ctx, page); degraded {
		return result.Success(docRes.Value, DegradedMessage)
	}
	return result.Success(docRes.Value, "")
}

// RemoveContent deletes url from both stores. The index entry goes first: a
// search hit pointing at a missing document is a worse anomaly than a
// document the index cannot find. Removing an absent url is a no-op
// returning Success(false).
func (s *ContentService) RemoveContent(ctx context.Context, url string) result.Result[bool] {
	ctx, span := s.tracer.Start(ctx, "content.remove", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	if idxRes := s.searchIndex.DeleteDoc(ctx, url); !idxRes.OK {
		if idxRes.IsUnavailable() {
			s.warnUnavailable("index delete skipped", url, idxRes.Message)
		} else {
			// Transient delete failure: queue the url so the reconciler
			// removes the orphan entry once the document is gone.
			s.logger.Warn("index delete failed, queueing repair", "url", url, "error", idxRes.Message)
			s.enqueueRepair(url, idxRes.Message)
		}
	} else if s.metrics != nil {
		s.metrics.IndexDeletesTotal.Inc()
	}

	docRes := s.contentRepo.Delete(ctx, url)
	if !docRes.OK {
		s.logFailure("remove content", url, docRes.Message, docRes.Kind)
		return docRes
	}
	return result.Success(docRes.Value, "")
}

// GetContent reads the full page from the document store.
func (s *ContentService) GetContent(ctx context.Context, url string) result.Result[*model.CrawledPage] {
	ctx, span := s.tracer.Start(ctx, "content.get", trace.WithAttributes(attribute.String("url", url)))
	defer span.End()

	res := s.contentRepo.FindByURL(ctx, url)
	if !res.OK {
		s.logFailure("get content", url, res.Message, res.Kind)
	}
	return res
}

// Search runs a relevance-ranked query. When the index is unavailable the
// coordinator degrades to a bounded document store scan and says so in the
// result message.
func (s *ContentService) Search(ctx context.Context, query string, opts model.SearchOptions) result.Result[[]model.IndexedDocument] {
	ctx, span := s.tracer.Start(ctx, "content.search")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return result.Failure[[]model.IndexedDocument]("search query must not be empty", result.KindValidation)
	}

	limit := opts.EffectiveLimit()
	if limit == 0 {
		return result.Success([]model.IndexedDocument{}, "")
	}

	return s.searchWithFallback(ctx, query, limit, func() result.Result[[]model.IndexedDocument] {
		return s.searchIndex.SearchText(ctx, query, limit)
	})
}

// SearchPrefix matches indexed terms starting with term.
func (s *ContentService) SearchPrefix(ctx context.Context, term string, opts model.SearchOptions) result.Result[[]model.IndexedDocument] {
	ctx, span := s.tracer.Start(ctx, "content.search_prefix")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return result.Failure[[]model.IndexedDocument]("search term must not be empty", result.KindValidation)
	}

	limit := opts.EffectiveLimit()
	if limit == 0 {
		return result.Success([]model.IndexedDocument{}, "")
	}

	return s.searchWithFallback(ctx, term, limit, func() result.Result[[]model.IndexedDocument] {
		return s.searchIndex.SearchPrefix(ctx, term, limit)
	})
}

// SearchByField restricts the match to one indexed field.
func (s *ContentService) SearchByField(ctx context.Context, field, value string, opts model.SearchOptions) result.Result[[]model.IndexedDocument] {
	ctx, span := s.tracer.Start(ctx, "content.search_by_field", trace.WithAttributes(attribute.String("field", field)))
	defer span.End()

	if strings.TrimSpace(value) == "" {
		return result.Failure[[]model.IndexedDocument]("search value must not be empty", result.KindValidation)
	}

	limit := opts.EffectiveLimit()
	if limit == 0 {
		return result.Success([]model.IndexedDocument{}, "")
	}

	return s.searchWithFallback(ctx, value, limit, func() result.Result[[]model.IndexedDocument] {
		return s.searchIndex.SearchByField(ctx, field, value, limit)
	})
}

// AddSuggestion records a completion phrase with its weight.
func (s *ContentService) AddSuggestion(ctx context.Context, phrase string, weight float64) result.Result[bool] {
	return s.searchIndex.AddSuggestion(ctx, phrase, weight)
}

// Suggest returns completion phrases for prefix, heaviest first. There is
// no document store equivalent; an unavailable index yields an empty
// degraded Success rather than a failure.
func (s *ContentService) Suggest(ctx context.Context, prefix string, opts model.SearchOptions) result.Result[[]string] {
	ctx, span := s.tracer.Start(ctx, "content.suggest")
	defer span.End()

	limit := opts.EffectiveLimit()
	if limit == 0 {
		return result.Success([]string{}, "")
	}

	res := s.searchIndex.Suggest(ctx, prefix, limit)
	if res.IsUnavailable() {
		s.warnUnavailable("suggest", prefix, res.Message)
		if s.metrics != nil {
			s.metrics.DegradedSearches.Inc()
		}
		return result.Success([]string{}, degradedSearchMessage)
	}
	return res
}

// preparePage computes the derived fields every stored page carries.
func (s *ContentService) preparePage(page *model.CrawledPage) {
	now := time.Now().UTC()
	page.ContentHash = model.ContentHash(page.TextContent)
	page.LastIndexedAt = now
	if page.CrawledAt.IsZero() {
		page.CrawledAt = now
	}
	if s.geo != nil && page.RemoteIP != "" && page.Geo == (geoip.Data{}) {
		page.Geo = s.geo.Lookup(page.RemoteIP)
	}
}

// upsertProjection pushes the page's projection into the search index,
// retrying briefly before handing the url to the reconciler. It reports
// whether the caller should declare the write degraded.
func (s *ContentService) upsertProjection(ctx context.Context, page *model.CrawledPage) bool {
	doc := page.Project()

	var lastMsg string
	ok := retry(ctx, s.retryCfg, func(attempt int) (bool, bool) {
		res := s.searchIndex.UpsertDoc(ctx, doc)
		if res.OK {
			return true, false
		}
		lastMsg = res.Message
		if res.IsUnavailable() {
			// An absent index will not heal within the backoff window.
			s.warnUnavailable("index upsert", page.URL, res.Message)
			return false, false
		}
		if attempt > 1 && s.metrics != nil {
			s.metrics.IndexUpsertRetries.Inc()
		}
		return false, true
	})
	if ok {
		if s.metrics != nil {
			s.metrics.IndexUpsertsTotal.Inc()
		}
		return false
	}

	s.enqueueRepair(page.URL, lastMsg)
	return true
}

func (s *ContentService) searchWithFallback(ctx context.Context, query string, limit int, search func() result.Result[[]model.IndexedDocument]) result.Result[[]model.IndexedDocument] {
	res := search()
	if res.OK {
		if s.metrics != nil {
			s.metrics.SearchesTotal.WithLabelValues("index").Inc()
		}
		return res
	}
	if !res.IsUnavailable() {
		s.logFailure("search", query, res.Message, res.Kind)
		return res
	}

	s.warnUnavailable("search", query, res.Message)
	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues("fallback").Inc()
		s.metrics.DegradedSearches.Inc()
	}

	scan := s.contentRepo.ScanText(ctx, query, limit)
	if !scan.OK {
		return scan
	}
	return result.Success(scan.Value, degradedSearchMessage)
}

func (s *ContentService) enqueueRepair(url, lastError string) {
	dropped := s.queue.Enqueue(url, lastError)
	if s.metrics != nil {
		if dropped {
			s.metrics.ReconcileQueueDrops.Inc()
		}
		s.metrics.ReconcileQueueDepth.Set(float64(s.queue.Len()))
	}
}

// logFailure applies the severity mapping of the error taxonomy.
func (s *ContentService) logFailure(op, key, msg string, kind result.ErrorKind) {
	switch kind {
	case result.KindNotFound:
		s.logger.Debug(op+" failed", "key", key, "error", msg)
	case result.KindConflict, result.KindValidation:
		s.logger.Info(op+" failed", "key", key, "error", msg)
	case result.KindUnavailable:
		s.warnUnavailable(op, key, msg)
	default:
		s.logger.Error(op+" failed", "key", key, "error", msg)
	}
}

func (s *ContentService) warnUnavailable(op, key, msg string) {
	s.throttle.Warn("unavailable:"+op, op+": search index unavailable", "key", key, "error", msg)
}
