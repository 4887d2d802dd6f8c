package congress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
	"github.com/statepulse/statepulse-ingest/internal/logger"
	"github.com/statepulse/statepulse-ingest/internal/sources"
)

// DailySourceID is the daily adapter's checkpoint and report identifier.
const DailySourceID = "congress"

// CurrentCongress is the session the daily sweep targets.
const CurrentCongress = 119

// DefaultDailyPageSize is the list page size for the daily sweep.
const DefaultDailyPageSize = 20

// DefaultMaxBills caps how far into the recent-updates list the daily
// sweep walks. The list is sorted newest-first, so anything past the cap
// is older than a day-scale window anyway.
const DefaultMaxBills = 500

// DefaultEarlyExitRatio stops pagination once this share of a listed
// page is older than the sweep window.
const DefaultEarlyExitRatio = 0.75

// Ensure DailyAdapter implements the interface.
var _ driven.SourceAdapter = (*DailyAdapter)(nil)

// DailyOptions tunes a daily federal sweep.
type DailyOptions struct {
	// Congress is the session to sweep; defaults to CurrentCongress.
	Congress int

	// PageSize is the list page size.
	PageSize int

	// MaxBills caps the total listed bills examined per run.
	MaxBills int

	// BatchSize is the per-page record concurrency.
	BatchSize int

	// EarlyExitRatio overrides DefaultEarlyExitRatio when positive.
	EarlyExitRatio float64

	// PagePause is an extra blocking delay between list pages.
	PagePause time.Duration
}

// DailyAdapter sweeps the current congress's recently updated bills.
// Tracked bills are refreshed with new detail and action history; bills
// not yet tracked are admitted only when they pass the relevance filter.
type DailyAdapter struct {
	client      *Client
	store       driven.LegislationStore
	checkpoints driven.CheckpointStore
	opts        DailyOptions
}

// NewDailyAdapter creates the daily federal bills adapter.
func NewDailyAdapter(client *Client, store driven.LegislationStore, checkpoints driven.CheckpointStore, opts DailyOptions) *DailyAdapter {
	if opts.Congress <= 0 {
		opts.Congress = CurrentCongress
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultDailyPageSize
	}
	if opts.MaxBills <= 0 {
		opts.MaxBills = DefaultMaxBills
	}
	if opts.EarlyExitRatio <= 0 {
		opts.EarlyExitRatio = DefaultEarlyExitRatio
	}
	return &DailyAdapter{client: client, store: store, checkpoints: checkpoints, opts: opts}
}

// SourceID implements driven.SourceAdapter.
func (a *DailyAdapter) SourceID() string { return DailySourceID }

// runCounts accumulates sweep totals across concurrent record tasks.
type runCounts struct {
	mu        sync.Mutex
	processed int
	updated   int
	inserted  int
}

func (c *runCounts) snapshotInto(cp *domain.RunCheckpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp.Processed = c.processed
	cp.Updated = c.updated
	cp.Inserted = c.inserted
}

func (c *runCounts) fill(report *domain.SourceReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	report.Processed = c.processed
	report.Updated = c.updated
	report.Inserted = c.inserted
}

// Run implements driven.SourceAdapter.
func (a *DailyAdapter) Run(ctx context.Context, since time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: DailySourceID}
	session := strconv.Itoa(a.opts.Congress)

	cp := a.loadCheckpoint(ctx, since)
	counts := &runCounts{processed: cp.Processed, updated: cp.Updated, inserted: cp.Inserted}
	since = cp.Watermark

	offset := 0
	if cp.Partition == session && cp.Cursor > 0 {
		offset = cp.Cursor
		logger.Info("congress %s: resuming from offset %d", session, offset)
	}

	for offset < a.opts.MaxBills {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			break
		}

		logger.Debug("congress %s: listing offset %d (key #%d)", session, offset, a.client.keys.Index()+1)

		list, status, err := a.client.List(ctx, a.opts.Congress, offset, a.opts.PageSize, "updateDate+desc")
		if err != nil {
			if fetch.IsRateLimited(err) {
				a.saveResume(ctx, cp, session, offset, counts, &report)
				report.Errors = append(report.Errors, err)
				report.Outcome = domain.OutcomeFailed
				counts.fill(&report)
				return report
			}
			report.Errors = append(report.Errors, fmt.Errorf("list offset %d: %w", offset, err))
			break
		}
		if status < 200 || status > 299 {
			report.Errors = append(report.Errors, fmt.Errorf("list offset %d: unexpected status %d", offset, status))
			break
		}
		if len(list.Bills) == 0 {
			break
		}

		fresh, oldCount := a.splitByWindow(list.Bills, since)
		pageErrs := a.processPage(ctx, fresh, counts)
		for _, perr := range pageErrs {
			if fetch.IsRateLimited(perr) {
				a.saveResume(ctx, cp, session, offset, counts, &report)
				report.Errors = append(report.Errors, perr)
				report.Outcome = domain.OutcomeFailed
				counts.fill(&report)
				return report
			}
		}
		failed := sources.CountErrors(pageErrs)
		for _, perr := range pageErrs {
			if perr != nil {
				report.Errors = append(report.Errors, fmt.Errorf("offset %d: %w", offset, perr))
			}
		}

		counts.mu.Lock()
		counts.processed += len(list.Bills)
		counts.mu.Unlock()

		if float64(oldCount) > float64(len(list.Bills))*a.opts.EarlyExitRatio {
			logger.Debug("congress %s: %d/%d bills older than window, stopping",
				session, oldCount, len(list.Bills))
			break
		}
		if len(fresh) == 0 || len(list.Bills) < a.opts.PageSize {
			break
		}

		offset += a.opts.PageSize
		// The checkpoint only advances past pages whose records were all
		// confirmed written, so a resume retries any partial page.
		if failed == 0 {
			a.saveResume(ctx, cp, session, offset, counts, &report)
		}

		if a.opts.PagePause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.opts.PagePause):
			}
		}
	}

	if err := a.checkpoints.Clear(ctx, DailySourceID); err != nil {
		report.Errors = append(report.Errors, err)
	}

	counts.fill(&report)
	if len(report.Errors) > 0 {
		report.Outcome = domain.OutcomeCompletedWithErrors
	} else {
		report.Outcome = domain.OutcomeCompleted
	}
	return report
}

// splitByWindow separates listed bills updated inside the sweep window
// from stale ones. The list endpoint reports date-only stamps, so the
// window is compared at day granularity.
func (a *DailyAdapter) splitByWindow(bills []listedBill, since time.Time) ([]listedBill, int) {
	var fresh []listedBill
	old := 0
	for _, bill := range bills {
		updated := parseDate(bill.UpdateDate)
		if updated == nil || updated.Before(since.Truncate(24*time.Hour)) {
			old++
			continue
		}
		fresh = append(fresh, bill)
	}
	return fresh, old
}

// processPage fans a list page's fresh bills out into concurrent batches.
func (a *DailyAdapter) processPage(ctx context.Context, bills []listedBill, counts *runCounts) []error {
	return sources.ProcessBatches(ctx, bills, a.opts.BatchSize, 0, func(ctx context.Context, bill listedBill) error {
		return a.processBill(ctx, bill, counts)
	})
}

// processBill refreshes a tracked bill or admits a new relevant one.
// New bills are pre-gated on the listed title before any detail fetch,
// so the bulk of the list costs no extra requests.
func (a *DailyAdapter) processBill(ctx context.Context, listed listedBill, counts *runCounts) error {
	id := BillID(a.opts.Congress, listed.Type, listed.Number)

	existing, err := a.store.Get(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up %s: %w", id, err)
	}

	if existing != nil {
		detail, _, err := a.client.Detail(ctx, a.opts.Congress, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("detail %s: %w", id, err)
		}
		actions, _, err := a.client.Actions(ctx, a.opts.Congress, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("actions %s: %w", id, err)
		}
		if err := a.store.UpsertSelective(ctx, selectiveUpdate(id, transformSponsors(detail), transformHistory(actions))); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		logger.Debug("[UPDATE] congress: %s %s", listed.Type, listed.Number)
		counts.mu.Lock()
		counts.updated++
		counts.mu.Unlock()
		return nil
	}

	if !domain.IsRelevant(listed.Title, "", nil) {
		return nil
	}

	detail, _, err := a.client.Detail(ctx, a.opts.Congress, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("detail %s: %w", id, err)
	}
	actions, _, err := a.client.Actions(ctx, a.opts.Congress, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("actions %s: %w", id, err)
	}
	summaries, _, err := a.client.Summaries(ctx, a.opts.Congress, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("summaries %s: %w", id, err)
	}

	record := transformBill(detail, actions, summaries, nil)
	if !domain.IsRelevant(record.Title, record.PrimarySummaryText(), record.AbstractTexts()) {
		return nil
	}
	if err := a.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", id, err)
	}
	logger.Info("[NEW] congress: %s %s", listed.Type, listed.Number)
	counts.mu.Lock()
	counts.inserted++
	counts.mu.Unlock()
	return nil
}

// loadCheckpoint returns the persisted checkpoint or a fresh one bound
// to this run's window.
func (a *DailyAdapter) loadCheckpoint(ctx context.Context, since time.Time) *domain.RunCheckpoint {
	if cp, err := a.checkpoints.Load(ctx, DailySourceID); err == nil {
		if cp.Watermark.IsZero() {
			cp.Watermark = since
		}
		return cp
	}
	return &domain.RunCheckpoint{SourceID: DailySourceID, Watermark: since}
}

// saveResume persists the position the next invocation should pick up.
func (a *DailyAdapter) saveResume(ctx context.Context, cp *domain.RunCheckpoint, session string, offset int, counts *runCounts, report *domain.SourceReport) {
	cp.Partition = session
	cp.Cursor = offset
	counts.snapshotInto(cp)
	if err := a.checkpoints.Save(ctx, cp); err != nil {
		report.Errors = append(report.Errors, err)
	}
}
