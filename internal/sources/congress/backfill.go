package congress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
	"github.com/statepulse/statepulse-ingest/internal/logger"
	"github.com/statepulse/statepulse-ingest/internal/sources"
)

// BackfillSourceID is the historical adapter's checkpoint and report
// identifier.
const BackfillSourceID = "congress-backfill"

// DefaultSessions is the backfill's session walk, newest first.
var DefaultSessions = []int{119, 118, 117, 116}

// DefaultRetryInterval is how long the backfill sleeps after sustained
// rate limiting before resuming from its checkpoint.
const DefaultRetryInterval = time.Hour

// DefaultMaxRestarts bounds how many rate-limit sleeps one invocation
// will sit through before giving up.
const DefaultMaxRestarts = 5

// DefaultSessionPause is the delay between whole sessions.
const DefaultSessionPause = 2 * time.Second

// Ensure BackfillAdapter implements the interface.
var _ driven.SourceAdapter = (*BackfillAdapter)(nil)

// BackfillOptions tunes a historical sweep.
type BackfillOptions struct {
	// Sessions lists the congresses to walk, newest first; defaults to
	// DefaultSessions.
	Sessions []int

	// PageSize is the list page size, capped at MaxPageSize.
	PageSize int

	// BatchSize is the per-page record concurrency.
	BatchSize int

	// RetryInterval is the sleep after sustained rate limiting.
	RetryInterval time.Duration

	// MaxRestarts bounds rate-limit resumes within one invocation.
	MaxRestarts int

	// PagePause is an extra blocking delay between list pages.
	PagePause time.Duration

	// SessionPause is the delay between sessions; zero means none.
	SessionPause time.Duration
}

// BackfillAdapter walks whole congressional sessions and admits every
// bill that passes the broader historical relevance filter. Bills
// already tracked get a selective refresh of sponsors, history and the
// derived action fields; new bills are stored in full, text versions
// included. The sweep ignores the run window and checkpoints by session
// and offset, so an interrupted walk resumes where it stopped.
type BackfillAdapter struct {
	client      *Client
	store       driven.LegislationStore
	checkpoints driven.CheckpointStore
	opts        BackfillOptions
}

// NewBackfillAdapter creates the historical federal bills adapter.
func NewBackfillAdapter(client *Client, store driven.LegislationStore, checkpoints driven.CheckpointStore, opts BackfillOptions) *BackfillAdapter {
	if len(opts.Sessions) == 0 {
		opts.Sessions = DefaultSessions
	}
	if opts.PageSize <= 0 || opts.PageSize > MaxPageSize {
		opts.PageSize = MaxPageSize
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = DefaultMaxRestarts
	}
	return &BackfillAdapter{client: client, store: store, checkpoints: checkpoints, opts: opts}
}

// SourceID implements driven.SourceAdapter.
func (a *BackfillAdapter) SourceID() string { return BackfillSourceID }

// Run implements driven.SourceAdapter. The since argument is ignored;
// a backfill always walks its sessions in full. Sustained rate limiting
// saves the checkpoint, sleeps and resumes, bounded by MaxRestarts.
func (a *BackfillAdapter) Run(ctx context.Context, _ time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: BackfillSourceID}

	cp := a.loadCheckpoint(ctx)
	counts := &runCounts{processed: cp.Processed, updated: cp.Updated, inserted: cp.Inserted}

	restarts := 0
	for {
		err := a.sweep(ctx, cp, counts, &report)
		if err == nil {
			break
		}
		if !fetch.IsRateLimited(err) || restarts >= a.opts.MaxRestarts {
			report.Errors = append(report.Errors, err)
			report.Outcome = domain.OutcomeFailed
			counts.fill(&report)
			return report
		}
		restarts++
		logger.Warn("backfill rate limited, sleeping %s before resume (%d/%d)",
			a.opts.RetryInterval, restarts, a.opts.MaxRestarts)
		select {
		case <-ctx.Done():
			report.Errors = append(report.Errors, ctx.Err())
			report.Outcome = domain.OutcomeFailed
			counts.fill(&report)
			return report
		case <-time.After(a.opts.RetryInterval):
		}
	}

	if err := a.checkpoints.Clear(ctx, BackfillSourceID); err != nil {
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

// sweep walks every remaining session once. A non-nil return means the
// attempt stopped early with its checkpoint saved.
func (a *BackfillAdapter) sweep(ctx context.Context, cp *domain.RunCheckpoint, counts *runCounts, report *domain.SourceReport) error {
	for _, session := range a.opts.Sessions {
		name := strconv.Itoa(session)
		if cp.PartitionDone(name) {
			logger.Debug("congress %s already backfilled, skipping", name)
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := a.sweepSession(ctx, session, cp, counts, report); err != nil {
			return err
		}

		cp.MarkPartitionDone(name)
		counts.snapshotInto(cp)
		if err := a.checkpoints.Save(ctx, cp); err != nil {
			report.Errors = append(report.Errors, err)
		}
		logger.Info("congress %s backfill complete", name)

		if a.opts.SessionPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.opts.SessionPause):
			}
		}
	}
	return nil
}

// sweepSession pages through one congress. Any list-level failure stops
// the attempt with the checkpoint pointing at the unfinished page.
func (a *BackfillAdapter) sweepSession(ctx context.Context, session int, cp *domain.RunCheckpoint, counts *runCounts, report *domain.SourceReport) error {
	name := strconv.Itoa(session)
	offset := 0
	if cp.Partition == name && cp.Cursor > 0 {
		offset = cp.Cursor
		logger.Info("congress %s: resuming from offset %d", name, offset)
	}

	for {
		if ctx.Err() != nil {
			a.saveResume(ctx, cp, name, offset, counts, report)
			return ctx.Err()
		}

		logger.Debug("congress %s: listing offset %d (key #%d)", name, offset, a.client.keys.Index()+1)

		list, status, err := a.client.List(ctx, session, offset, a.opts.PageSize, "")
		if err != nil {
			a.saveResume(ctx, cp, name, offset, counts, report)
			return fmt.Errorf("congress %s offset %d: %w", name, offset, err)
		}
		if status < 200 || status > 299 {
			a.saveResume(ctx, cp, name, offset, counts, report)
			return fmt.Errorf("congress %s offset %d: unexpected status %d", name, offset, status)
		}
		if len(list.Bills) == 0 {
			return nil
		}

		pageErrs := sources.ProcessBatches(ctx, list.Bills, a.opts.BatchSize, 0, func(ctx context.Context, bill listedBill) error {
			return a.processBill(ctx, session, bill, counts)
		})
		for _, perr := range pageErrs {
			if fetch.IsRateLimited(perr) {
				a.saveResume(ctx, cp, name, offset, counts, report)
				return perr
			}
		}
		failed := sources.CountErrors(pageErrs)
		for _, perr := range pageErrs {
			if perr != nil {
				report.Errors = append(report.Errors, fmt.Errorf("congress %s offset %d: %w", name, offset, perr))
			}
		}

		counts.mu.Lock()
		counts.processed += len(list.Bills)
		counts.mu.Unlock()

		if len(list.Bills) < a.opts.PageSize {
			return nil
		}

		offset += a.opts.PageSize
		// The checkpoint only advances past pages whose records were all
		// confirmed written, so a resume retries any partial page.
		if failed == 0 {
			a.saveResume(ctx, cp, name, offset, counts, report)
		}

		if a.opts.PagePause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.opts.PagePause):
			}
		}
	}
}

// processBill selectively refreshes a tracked bill or admits a new one
// through the backfill filter. The filter tries the listed title first
// and only pays for a summaries fetch when the title misses.
func (a *BackfillAdapter) processBill(ctx context.Context, session int, listed listedBill, counts *runCounts) error {
	id := BillID(session, listed.Type, listed.Number)

	existing, err := a.store.Get(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up %s: %w", id, err)
	}

	if existing != nil {
		detail, _, err := a.client.Detail(ctx, session, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("detail %s: %w", id, err)
		}
		actions, _, err := a.client.Actions(ctx, session, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("actions %s: %w", id, err)
		}
		if err := a.store.UpsertSelective(ctx, selectiveUpdate(id, transformSponsors(detail), transformHistory(actions))); err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}
		logger.Debug("[UPDATE] congress %d: %s %s", session, listed.Type, listed.Number)
		counts.mu.Lock()
		counts.updated++
		counts.mu.Unlock()
		return nil
	}

	var summaries []billSummary
	relevant := domain.IsBackfillRelevant(listed.Title)
	if !relevant {
		summaries, _, err = a.client.Summaries(ctx, session, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("summaries %s: %w", id, err)
		}
		texts := make([]string, 0, len(summaries))
		for _, sum := range summaries {
			texts = append(texts, sum.Text)
		}
		relevant = domain.IsBackfillRelevant(texts...)
	}
	if !relevant {
		return nil
	}

	detail, _, err := a.client.Detail(ctx, session, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("detail %s: %w", id, err)
	}
	actions, _, err := a.client.Actions(ctx, session, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("actions %s: %w", id, err)
	}
	if summaries == nil {
		summaries, _, err = a.client.Summaries(ctx, session, listed.Type, listed.Number)
		if err != nil {
			return fmt.Errorf("summaries %s: %w", id, err)
		}
	}
	versions, _, err := a.client.TextVersions(ctx, session, listed.Type, listed.Number)
	if err != nil {
		return fmt.Errorf("text versions %s: %w", id, err)
	}

	record := transformBill(detail, actions, summaries, versions)
	if err := a.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", id, err)
	}
	logger.Info("[NEW] congress %d: %s %s", session, listed.Type, listed.Number)
	counts.mu.Lock()
	counts.inserted++
	counts.mu.Unlock()
	return nil
}

// loadCheckpoint returns the persisted checkpoint or a fresh one.
func (a *BackfillAdapter) loadCheckpoint(ctx context.Context) *domain.RunCheckpoint {
	if cp, err := a.checkpoints.Load(ctx, BackfillSourceID); err == nil {
		if len(cp.CompletedPartitions) > 0 {
			logger.Info("Resuming earlier backfill; completed: %v", cp.CompletedPartitions)
		}
		return cp
	}
	return &domain.RunCheckpoint{SourceID: BackfillSourceID}
}

// saveResume persists the position the next attempt should pick up.
func (a *BackfillAdapter) saveResume(ctx context.Context, cp *domain.RunCheckpoint, partition string, offset int, counts *runCounts, report *domain.SourceReport) {
	cp.Partition = partition
	cp.Cursor = offset
	counts.snapshotInto(cp)
	if err := a.checkpoints.Save(ctx, cp); err != nil {
		report.Errors = append(report.Errors, err)
	}
}
