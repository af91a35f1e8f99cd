package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// reconciler drains the repair queue on a fixed cadence. For each queued url
// it re-reads the document store and makes the search index agree: a present
// document is re-upserted, an absent one has its index entry deleted. A url
// that keeps failing past MaxAttempts is dropped as permanent drift and
// reported through the drift publisher.
type reconciler struct {
	svc  *ContentService
	cron *cron.Cron
}

func newReconciler(svc *ContentService) *reconciler {
	return &reconciler{svc: svc, cron: cron.New()}
}

func (r *reconciler) Start() error {
	schedule := fmt.Sprintf("@every %s", r.svc.cfg.Interval)
	if _, err := r.cron.AddFunc(schedule, r.tick); err != nil {
		return fmt.Errorf("schedule reconciler: %w", err)
	}
	r.cron.Start()
	return nil
}

func (r *reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *reconciler) tick() {
	entries := r.svc.queue.Snapshot()
	if len(entries) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.svc.cfg.Interval)
	defer cancel()

	for _, entry := range entries {
		r.repair(ctx, entry)
	}
	if r.svc.metrics != nil {
		r.svc.metrics.ReconcileQueueDepth.Set(float64(r.svc.queue.Len()))
	}
}

func (r *reconciler) repair(ctx context.Context, entry reconcileEntry) {
	svc := r.svc

	docRes := svc.contentRepo.FindByURL(ctx, entry.URL)
	switch {
	case docRes.OK:
		if idxRes := svc.searchIndex.UpsertDoc(ctx, docRes.Value.Project()); !idxRes.OK {
			r.fail(ctx, entry.URL, idxRes.Message)
			return
		}
	case docRes.IsNotFound():
		// The document is gone; a lingering index entry is the drift.
		if idxRes := svc.searchIndex.DeleteDoc(ctx, entry.URL); !idxRes.OK {
			r.fail(ctx, entry.URL, idxRes.Message)
			return
		}
	default:
		r.fail(ctx, entry.URL, docRes.Message)
		return
	}

	svc.queue.Remove(entry.URL)
	if svc.metrics != nil {
		svc.metrics.ReconcileSuccesses.Inc()
	}
	svc.logger.Debug("index repaired", "url", entry.URL)
}

func (r *reconciler) fail(ctx context.Context, url, lastError string) {
	svc := r.svc
	if svc.metrics != nil {
		svc.metrics.ReconcileFailures.Inc()
	}

	attempts := svc.queue.Fail(url, lastError)
	if attempts < svc.cfg.MaxAttempts {
		return
	}

	svc.queue.Remove(url)
	svc.logger.Error("abandoning index repair, stores have drifted",
		"url", url, "attempts", attempts, "error", lastError)
	if svc.metrics != nil {
		svc.metrics.ReconcilePermanent.Inc()
	}
	if svc.publisher != nil {
		svc.publisher.PublishDrift(ctx, url, attempts, lastError)
	}
}

// tickNow runs one reconciliation pass synchronously. Exposed for tests and
// the ops force-reconcile endpoint.
func (r *reconciler) tickNow() { r.tick() }

// Reconcile runs one reconciliation pass immediately instead of waiting for
// the next scheduled tick.
func (s *ContentService) Reconcile() {
	s.reconciler.tickNow()
}
