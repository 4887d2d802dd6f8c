package openstates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/logger"
)

// VotesSourceID identifies the votes sweep in run reports.
const VotesSourceID = "state-votes"

// Ensure VotesAdapter implements the interface.
var _ driven.SourceAdapter = (*VotesAdapter)(nil)

// VotesAdapter sweeps vote events per state. Only votes on bills the
// pipeline already tracks are stored; everything else upstream is
// noise for us. The sweep is cheap enough that it carries no
// checkpoint: any failure just ends that state's pass and the next
// run's window covers it.
type VotesAdapter struct {
	client *Client
	votes  driven.VoteStore
	bills  driven.LegislationStore
	states []State
}

// NewVotesAdapter creates the state votes adapter.
func NewVotesAdapter(client *Client, votes driven.VoteStore, bills driven.LegislationStore, states []State) *VotesAdapter {
	if len(states) == 0 {
		states = States
	}
	return &VotesAdapter{client: client, votes: votes, bills: bills, states: states}
}

// SourceID implements driven.SourceAdapter.
func (a *VotesAdapter) SourceID() string { return VotesSourceID }

// Run implements driven.SourceAdapter.
func (a *VotesAdapter) Run(ctx context.Context, since time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: VotesSourceID}

	tracked, err := a.trackedBillSet(ctx)
	if err != nil {
		report.Outcome = domain.OutcomeFailed
		report.Errors = append(report.Errors, err)
		return report
	}

	for _, state := range a.states {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			break
		}

		for page := 1; ; page++ {
			result, status, err := a.client.Votes(ctx, state.OCDID, since, page)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s votes page %d: %w", state.Abbr, page, err))
				break
			}
			if status != http.StatusOK || len(result.Results) == 0 {
				break
			}

			for _, vote := range result.Results {
				report.Processed++
				record := transformVote(vote)
				if !tracked[record.BillID] {
					continue
				}
				if err := a.votes.Upsert(ctx, record); err != nil {
					report.Errors = append(report.Errors, fmt.Errorf("vote %s: %w", record.ID, err))
					continue
				}
				report.Updated++
			}

			if !result.Pagination.HasMore() {
				break
			}
		}
	}

	logger.Info("State votes sweep: %d stored of %d seen", report.Updated, report.Processed)
	if len(report.Errors) > 0 {
		report.Outcome = domain.OutcomeCompletedWithErrors
	} else {
		report.Outcome = domain.OutcomeCompleted
	}
	return report
}

// trackedBillSet caches the tracked bill IDs for the membership test.
func (a *VotesAdapter) trackedBillSet(ctx context.Context) (map[string]bool, error) {
	ids, err := a.bills.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tracked bills: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// LegislatorsSourceID identifies the legislators sweep in run reports.
const LegislatorsSourceID = "state-people"

// Ensure LegislatorsAdapter implements the interface.
var _ driven.SourceAdapter = (*LegislatorsAdapter)(nil)

// LegislatorsAdapter sweeps legislator profiles per state. Profiles are
// upserted unconditionally; the relevance filter does not apply to
// people.
type LegislatorsAdapter struct {
	client *Client
	store  driven.LegislatorStore
	states []State
}

// NewLegislatorsAdapter creates the state legislators adapter.
func NewLegislatorsAdapter(client *Client, store driven.LegislatorStore, states []State) *LegislatorsAdapter {
	if len(states) == 0 {
		states = States
	}
	return &LegislatorsAdapter{client: client, store: store, states: states}
}

// SourceID implements driven.SourceAdapter.
func (a *LegislatorsAdapter) SourceID() string { return LegislatorsSourceID }

// Run implements driven.SourceAdapter.
func (a *LegislatorsAdapter) Run(ctx context.Context, since time.Time) domain.SourceReport {
	report := domain.SourceReport{SourceID: LegislatorsSourceID}

	for _, state := range a.states {
		if ctx.Err() != nil {
			report.Errors = append(report.Errors, ctx.Err())
			break
		}

		for page := 1; ; page++ {
			result, status, err := a.client.People(ctx, state.OCDID, since, page)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Errorf("%s people page %d: %w", state.Abbr, page, err))
				break
			}
			if status != http.StatusOK || len(result.Results) == 0 {
				break
			}

			for _, person := range result.Results {
				report.Processed++
				record := transformPerson(person, state.Abbr)
				if err := a.store.Upsert(ctx, record); err != nil {
					if errors.Is(err, domain.ErrMissingID) {
						logger.Warn("%s: skipping legislator with no id", state.Abbr)
						continue
					}
					report.Errors = append(report.Errors, fmt.Errorf("legislator %s: %w", record.ID, err))
					continue
				}
				report.Updated++
			}

			if !result.Pagination.HasMore() {
				break
			}
		}
	}

	logger.Info("State legislators sweep: %d stored", report.Updated)
	if len(report.Errors) > 0 {
		report.Outcome = domain.OutcomeCompletedWithErrors
	} else {
		report.Outcome = domain.OutcomeCompleted
	}
	return report
}
