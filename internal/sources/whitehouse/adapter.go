package whitehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
	"github.com/statepulse/statepulse-ingest/internal/logger"
)

// SourceID is the orders adapter's report identifier.
const SourceID = "executive-orders"

// DefaultMaxPages bounds a daily sweep of the listing.
const DefaultMaxPages = 5

// BackfillMaxPages bounds a historical sweep.
const BackfillMaxPages = 100

// DefaultCutoffBuffer extends the sweep window backwards. Orders are
// sometimes published days after signing, so a daily run scans a little
// further back than its watermark.
const DefaultCutoffBuffer = 7 * 24 * time.Hour

// Ensure OrdersAdapter implements the interface.
var _ driven.SourceAdapter = (*OrdersAdapter)(nil)

// OrdersOptions tunes an executive-orders sweep.
type OrdersOptions struct {
	// MaxPages caps the listing pages examined per run.
	MaxPages int

	// CutoffBuffer extends the window behind the watermark.
	CutoffBuffer time.Duration

	// PagePause is an extra blocking delay between listing pages.
	PagePause time.Duration

	// Summariser fills in a summary for admitted orders whose listing
	// carries no excerpt. Optional; the default no-op leaves the
	// summary empty for the external collaborator.
	Summariser driven.Summariser
}

// OrdersAdapter sweeps the federal executive-order listing. The scrape
// is shallow and newest-first, so it carries no checkpoint: a daily run
// re-reads at most MaxPages pages and stops at the cutoff date.
type OrdersAdapter struct {
	client *Client
	store  driven.OrderStore
	opts   OrdersOptions
}

// NewOrdersAdapter creates the executive-orders adapter.
func NewOrdersAdapter(client *Client, store driven.OrderStore, opts OrdersOptions) *OrdersAdapter {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.CutoffBuffer <= 0 {
		opts.CutoffBuffer = DefaultCutoffBuffer
	}
	return &OrdersAdapter{client: client, store: store, opts: opts}
}

// SourceID implements driven.SourceAdapter.
func (a *OrdersAdapter) SourceID() string { return SourceID }

// Run implements driven.SourceAdapter. A zero since sweeps without a
// cutoff, bounded by MaxPages alone.
func (a *OrdersAdapter) Run(ctx context.Context, since time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: SourceID}

	var cutoff time.Time
	if !since.IsZero() {
		cutoff = since.Add(-a.opts.CutoffBuffer)
	}

	for page := 1; page <= a.opts.MaxPages; page++ {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			break
		}

		logger.Debug("executive orders: fetching page %d", page)

		acts, status, err := a.client.Actions(ctx, page)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("page %d: %w", page, err))
			if fetch.IsRateLimited(err) {
				report.Outcome = domain.OutcomeFailed
				return report
			}
			break
		}
		if status == http.StatusBadRequest {
			break // past the last page
		}
		if status < 200 || status > 299 {
			report.Errors = append(report.Errors, fmt.Errorf("page %d: unexpected status %d", page, status))
			break
		}
		if len(acts) == 0 {
			break
		}

		reachedCutoff := false
		for _, act := range acts {
			record := transformAction(act)
			report.Processed++

			// Listing is newest-first; the first record behind the
			// cutoff ends the sweep.
			if !cutoff.IsZero() && record.DateSigned != nil && record.DateSigned.Before(cutoff) {
				reachedCutoff = true
				break
			}

			if err := a.processOrder(ctx, record, &report); err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("page %d: %w", page, err))
			}
		}
		if reachedCutoff {
			break
		}

		if a.opts.PagePause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.opts.PagePause):
			}
		}
	}

	if len(report.Errors) > 0 {
		report.Outcome = domain.OutcomeCompletedWithErrors
	} else {
		report.Outcome = domain.OutcomeCompleted
	}
	return report
}

// processOrder refreshes a tracked order or admits a new relevant one.
func (a *OrdersAdapter) processOrder(ctx context.Context, record *domain.ExecutiveOrder, report *domain.SourceReport) error {
	existing, err := a.store.Get(ctx, record.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("look up %s: %w", record.ID, err)
	}

	if existing != nil {
		if existing.SummarySource == domain.SummaryGenerated {
			record.Summary = existing.Summary
			record.SummarySource = existing.SummarySource
		}
		if err := a.store.Upsert(ctx, record); err != nil {
			return fmt.Errorf("update %s: %w", record.ID, err)
		}
		logger.Debug("[UPDATE] executive order: %s", record.Title)
		report.Updated++
		return nil
	}

	if !domain.IsRelevant(record.Title, record.Summary, []string{record.FullText}) {
		return nil
	}
	if record.Summary == "" && a.opts.Summariser != nil {
		text, err := a.opts.Summariser.Summarise(ctx, record.Title, record.FullText)
		if err != nil {
			logger.Warn("summarise %s: %v", record.ID, err)
		} else if text != "" {
			record.Summary = text
			record.SummarySource = domain.SummaryGenerated
		}
	}
	if err := a.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("insert %s: %w", record.ID, err)
	}
	logger.Info("[NEW] executive order: %s", record.Title)
	report.Inserted++
	return nil
}
