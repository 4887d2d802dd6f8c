package openstates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
	"github.com/statepulse/statepulse-ingest/internal/logger"
	"github.com/statepulse/statepulse-ingest/internal/sources"
)

// SourceID is the bills adapter's checkpoint and report identifier.
const SourceID = "state"

// DefaultEarlyExitRatio stops a state's pagination once this share of a
// page is older than the sweep window. Results are sorted by descending
// update time, so a mostly-old page means the rest is older still.
const DefaultEarlyExitRatio = 0.75

// Ensure BillsAdapter implements the interface.
var _ driven.SourceAdapter = (*BillsAdapter)(nil)

// AdapterOptions tunes a bills sweep.
type AdapterOptions struct {
	// States lists the partitions to sweep; nil means all 50.
	States []State

	// IgnoreCheckpoint skips completed-state bookkeeping, for the
	// explicit start-from override.
	IgnoreCheckpoint bool

	// BatchSize is the per-page record concurrency.
	BatchSize int

	// EarlyExitRatio overrides DefaultEarlyExitRatio when positive.
	EarlyExitRatio float64

	// PagePause is an extra blocking delay between pages, on top of the
	// fetcher's own pacing.
	PagePause time.Duration
}

// BillsAdapter sweeps state legislation, one state at a time. For each
// state it pages through bills updated inside the sweep window, updates
// records already tracked, gates new ones through the relevance filter
// and checkpoints after every fully-written page.
type BillsAdapter struct {
	client      *Client
	store       driven.LegislationStore
	checkpoints driven.CheckpointStore
	opts        AdapterOptions
}

// NewBillsAdapter creates the state legislation adapter.
func NewBillsAdapter(client *Client, store driven.LegislationStore, checkpoints driven.CheckpointStore, opts AdapterOptions) *BillsAdapter {
	if len(opts.States) == 0 {
		opts.States = States
	}
	if opts.EarlyExitRatio <= 0 {
		opts.EarlyExitRatio = DefaultEarlyExitRatio
	}
	return &BillsAdapter{client: client, store: store, checkpoints: checkpoints, opts: opts}
}

// SourceID implements driven.SourceAdapter.
func (a *BillsAdapter) SourceID() string { return SourceID }

// pageCounts accumulates sweep totals across concurrent record tasks.
type pageCounts struct {
	mu        sync.Mutex
	processed int
	updated   int
	inserted  int
}

// Run implements driven.SourceAdapter.
func (a *BillsAdapter) Run(ctx context.Context, since time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: SourceID}

	cp := a.loadCheckpoint(ctx, since)
	counts := &pageCounts{
		processed: cp.Processed,
		updated:   cp.Updated,
		inserted:  cp.Inserted,
	}
	since = cp.Watermark

	for _, state := range a.opts.States {
		if !a.opts.IgnoreCheckpoint && cp.PartitionDone(state.Abbr) {
			logger.Debug("%s already completed this run, skipping", state.Abbr)
			continue
		}
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			break
		}

		err := a.sweepState(ctx, state, since, cp, counts, &report)
		if err != nil {
			// Sustained throttling ends the run; the checkpoint is
			// already saved and the next invocation resumes here.
			report.Errors = append(report.Errors, err)
			report.Outcome = domain.OutcomeFailed
			a.fill(&report, counts)
			return report
		}

		cp.MarkPartitionDone(state.Abbr)
		a.syncCounts(cp, counts)
		if err := a.checkpoints.Save(ctx, cp); err != nil {
			report.Errors = append(report.Errors, err)
		}
	}

	if err := a.checkpoints.Clear(ctx, SourceID); err != nil {
		report.Errors = append(report.Errors, err)
	}

	a.fill(&report, counts)
	if len(report.Errors) > 0 {
		report.Outcome = domain.OutcomeCompletedWithErrors
	} else {
		report.Outcome = domain.OutcomeCompleted
	}
	return report
}

// sweepState pages through one state's bills. A non-nil return means
// sustained throttling; every other failure is partition-local and
// recorded in the report.
func (a *BillsAdapter) sweepState(ctx context.Context, state State, since time.Time, cp *domain.RunCheckpoint, counts *pageCounts, report *domain.SourceReport) error {
	page := 1
	if cp.Partition == state.Abbr && cp.Cursor > 0 {
		page = cp.Cursor
		logger.Info("%s: resuming from page %d", state.Abbr, page)
	}

	for {
		logger.Debug("%s: fetching page %d (key #%d)", state.Abbr, page, a.client.keys.Index()+1)

		result, status, err := a.client.Bills(ctx, state.OCDID, since, page)
		if err != nil {
			if fetch.IsRateLimited(err) {
				logger.Warn("%s: sustained rate limiting, saving checkpoint and stopping", state.Abbr)
				cp.Partition = state.Abbr
				cp.Cursor = page
				a.syncCounts(cp, counts)
				if saveErr := a.checkpoints.Save(ctx, cp); saveErr != nil {
					report.Errors = append(report.Errors, saveErr)
				}
				return err
			}
			// Partition-fatal: log, record, move to the next state.
			logger.Error("%s: page %d fetch failed: %v", state.Abbr, page, err)
			report.Errors = append(report.Errors, fmt.Errorf("%s page %d: %w", state.Abbr, page, err))
			return nil
		}
		if status == http.StatusNotFound {
			return nil // no more pages
		}
		if status < 200 || status > 299 {
			report.Errors = append(report.Errors, fmt.Errorf("%s page %d: unexpected status %d", state.Abbr, page, status))
			return nil
		}
		if len(result.Results) == 0 {
			return nil
		}

		fresh, oldCount := a.splitByWindow(result.Results, since)
		pageErrs := a.processBills(ctx, state, fresh, counts)
		for _, perr := range pageErrs {
			if fetch.IsRateLimited(perr) {
				cp.Partition = state.Abbr
				cp.Cursor = page
				a.syncCounts(cp, counts)
				if saveErr := a.checkpoints.Save(ctx, cp); saveErr != nil {
					report.Errors = append(report.Errors, saveErr)
				}
				return perr
			}
		}
		failed := sources.CountErrors(pageErrs)
		for _, perr := range pageErrs {
			if perr != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s page %d: %w", state.Abbr, page, perr))
			}
		}

		counts.mu.Lock()
		counts.processed += len(result.Results)
		counts.mu.Unlock()

		if float64(oldCount) > float64(len(result.Results))*a.opts.EarlyExitRatio {
			logger.Debug("%s: %d/%d bills older than window, stopping pagination",
				state.Abbr, oldCount, len(result.Results))
			return nil
		}
		if len(fresh) == 0 {
			return nil
		}
		if !result.Pagination.HasMore() {
			return nil
		}

		page++
		// The checkpoint only advances past pages whose records were all
		// confirmed written, so a resume retries any partial page.
		if failed == 0 {
			cp.Partition = state.Abbr
			cp.Cursor = page
			a.syncCounts(cp, counts)
			if err := a.checkpoints.Save(ctx, cp); err != nil {
				report.Errors = append(report.Errors, err)
			}
		}

		if a.opts.PagePause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.opts.PagePause):
			}
		}
	}
}

// splitByWindow separates bills updated inside the sweep window from
// stale ones that only appear because of page alignment.
func (a *BillsAdapter) splitByWindow(bills []osBill, since time.Time) ([]osBill, int) {
	var fresh []osBill
	old := 0
	for _, bill := range bills {
		updated := parseTime(bill.UpdatedAt)
		if updated == nil || updated.Before(since) {
			old++
			continue
		}
		fresh = append(fresh, bill)
	}
	return fresh, old
}

// processBills fans a page's fresh bills out into concurrent batches.
func (a *BillsAdapter) processBills(ctx context.Context, state State, bills []osBill, counts *pageCounts) []error {
	return sources.ProcessBatches(ctx, bills, a.opts.BatchSize, 0, func(ctx context.Context, bill osBill) error {
		return a.processBill(ctx, state, bill, counts)
	})
}

// processBill updates a tracked bill or inserts a new relevant one.
func (a *BillsAdapter) processBill(ctx context.Context, state State, bill osBill, counts *pageCounts) error {
	id := NormaliseID(bill.ID)

	existing, err := a.store.Get(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up %s: %w", id, err)
	}

	if existing != nil {
		transformed := transformBill(bill)
		transformed.PreserveSummaryFrom(existing)
		if err := a.store.Upsert(ctx, transformed); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		logger.Debug("[UPDATE] %s: %s", state.Abbr, bill.Identifier)
		counts.mu.Lock()
		counts.updated++
		counts.mu.Unlock()
		return nil
	}

	transformed := transformBill(bill)
	if !domain.IsRelevant(transformed.Title, transformed.PrimarySummaryText(), transformed.AbstractTexts()) {
		return nil
	}
	if err := a.store.Upsert(ctx, transformed); err != nil {
		return fmt.Errorf("insert %s: %w", id, err)
	}
	logger.Info("[NEW] %s: %s", state.Abbr, bill.Identifier)
	counts.mu.Lock()
	counts.inserted++
	counts.mu.Unlock()
	return nil
}

// loadCheckpoint returns the persisted checkpoint or a fresh one bound
// to this run's window.
func (a *BillsAdapter) loadCheckpoint(ctx context.Context, since time.Time) *domain.RunCheckpoint {
	if !a.opts.IgnoreCheckpoint {
		if cp, err := a.checkpoints.Load(ctx, SourceID); err == nil {
			if len(cp.CompletedPartitions) > 0 {
				logger.Info("Resuming earlier sweep; completed: %v", cp.CompletedPartitions)
			}
			if cp.Watermark.IsZero() {
				cp.Watermark = since
			}
			return cp
		}
	}
	return &domain.RunCheckpoint{SourceID: SourceID, Watermark: since}
}

// syncCounts copies the running totals into the checkpoint.
func (a *BillsAdapter) syncCounts(cp *domain.RunCheckpoint, counts *pageCounts) {
	counts.mu.Lock()
	defer counts.mu.Unlock()
	cp.Processed = counts.processed
	cp.Updated = counts.updated
	cp.Inserted = counts.inserted
}

// fill copies the totals into the report.
func (a *BillsAdapter) fill(report *domain.SourceReport, counts *pageCounts) {
	counts.mu.Lock()
	defer counts.mu.Unlock()
	report.Processed = counts.processed
	report.Updated = counts.updated
	report.Inserted = counts.inserted
}
