package congress

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	checkpointfile "github.com/statepulse/statepulse-ingest/internal/adapters/driven/checkpoint/file"
	"github.com/statepulse/statepulse-ingest/internal/adapters/driven/storage/memory"
	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
)

func backfillClient(srv *httptest.Server) *Client {
	keys := fetch.NewKeyRing([]string{"key-1"})
	fetcher := fetch.New(fetch.Options{
		MaxRetries: 1,
		Backoff:    time.Millisecond,
		Policy:     fetch.ThrottleFail,
		Keys:       keys,
	})
	return NewClient(srv.URL, fetcher, keys)
}

func TestBackfillAdapter_Scenario(t *testing.T) {
	// One session, one page of four bills: one already tracked, one
	// relevant by title, one relevant only by summary, one irrelevant.
	api := newFakeCongress()
	api.pages[0] = []listedBill{
		{Type: "HR", Number: "1", Title: "Water Infrastructure Act"},
		{Type: "HR", Number: "2", Title: "Artificial Intelligence Research Act"},
		{Type: "HR", Number: "3", Title: "Consumer Privacy Act"},
		{Type: "HR", Number: "4", Title: "Post Office Renaming Act"},
	}
	api.details["hr/1"] = billDetail{Congress: 119, Type: "HR", Number: "1", Title: "Water Infrastructure Act"}
	api.actions["hr/1"] = []billAction{{ActionDate: "2025-02-01", Text: "Passed House"}}
	api.details["hr/2"] = billDetail{Congress: 119, Type: "HR", Number: "2", Title: "Artificial Intelligence Research Act"}
	api.actions["hr/2"] = []billAction{{ActionDate: "2025-01-10", Text: "Introduced in House"}}
	api.summaries["hr/2"] = []billSummary{{Text: "Funds artificial intelligence research."}}
	api.texts["hr/2"] = []textVersion{{Type: "Introduced", Date: "2025-01-10"}}
	api.details["hr/3"] = billDetail{Congress: 119, Type: "HR", Number: "3", Title: "Consumer Privacy Act"}
	api.actions["hr/3"] = []billAction{{ActionDate: "2025-03-05", Text: "Introduced in House"}}
	api.summaries["hr/3"] = []billSummary{{Text: "Requires audits of automated decision systems."}}
	api.texts["hr/3"] = nil
	api.summaries["hr/4"] = []billSummary{{Text: "Renames a facility."}}

	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	ctx := context.Background()
	store := memory.NewLegislationStore()
	require.NoError(t, store.Upsert(ctx, &domain.Legislation{
		ID:    "congress-bill-119-hr-1",
		Title: "Water Infrastructure Act",
	}))

	checkpoints := checkpointfile.NewStore(t.TempDir())
	adapter := NewBackfillAdapter(backfillClient(srv), store, checkpoints, BackfillOptions{Sessions: []int{119}})

	report := adapter.Run(ctx, time.Time{})

	assert.Equal(t, domain.OutcomeCompleted, report.Outcome)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 3, store.Len())

	// Tracked bill: sponsors and history refreshed, title untouched.
	existing, err := store.Get(ctx, "congress-bill-119-hr-1")
	require.NoError(t, err)
	assert.Equal(t, "Water Infrastructure Act", existing.Title)
	assert.Equal(t, "Passed House", existing.StatusText)

	// Summary-relevant bill stored in full.
	inserted, err := store.Get(ctx, "congress-bill-119-hr-3")
	require.NoError(t, err)
	assert.Equal(t, "Requires audits of automated decision systems.", inserted.Summary)

	// The irrelevant bill cost a summaries check but no detail fetch.
	assert.True(t, api.hit("/bill/119/hr/4/summaries"))
	assert.False(t, api.hit("/bill/119/hr/4"))

	_, err = checkpoints.Load(ctx, BackfillSourceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBackfillAdapter_RateLimitSleepsAndResumes(t *testing.T) {
	api := newFakeCongress()
	api.pages[0] = []listedBill{
		{Type: "HR", Number: "2", Title: "Artificial Intelligence Research Act"},
	}
	api.details["hr/2"] = billDetail{Congress: 119, Type: "HR", Number: "2", Title: "Artificial Intelligence Research Act"}
	api.actions["hr/2"] = []billAction{{ActionDate: "2025-01-10", Text: "Introduced in House"}}
	api.summaries["hr/2"] = []billSummary{{Text: "Funds artificial intelligence research."}}
	api.texts["hr/2"] = nil

	// First list request is throttled; everything after succeeds.
	var listCalls atomic.Int32
	inner := api.handler(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Count(strings.Trim(r.URL.Path, "/"), "/") == 1 && listCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		inner(w, r)
	}))
	defer srv.Close()

	ctx := context.Background()
	store := memory.NewLegislationStore()
	checkpoints := checkpointfile.NewStore(t.TempDir())
	adapter := NewBackfillAdapter(backfillClient(srv), store, checkpoints, BackfillOptions{
		Sessions:      []int{119},
		RetryInterval: 5 * time.Millisecond,
		MaxRestarts:   2,
	})

	report := adapter.Run(ctx, time.Time{})

	assert.Equal(t, domain.OutcomeCompleted, report.Outcome)
	assert.Empty(t, report.Errors)
	assert.Equal(t, 1, report.Inserted)
	assert.GreaterOrEqual(t, listCalls.Load(), int32(2))

	_, err := checkpoints.Load(ctx, BackfillSourceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBackfillAdapter_GivesUpAfterMaxRestarts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx := context.Background()
	checkpoints := checkpointfile.NewStore(t.TempDir())
	adapter := NewBackfillAdapter(backfillClient(srv), memory.NewLegislationStore(), checkpoints, BackfillOptions{
		Sessions:      []int{119},
		RetryInterval: time.Millisecond,
		MaxRestarts:   2,
	})

	report := adapter.Run(ctx, time.Time{})

	assert.Equal(t, domain.OutcomeFailed, report.Outcome)
	require.NotEmpty(t, report.Errors)
	assert.True(t, fetch.IsRateLimited(report.Errors[0]))

	cp, err := checkpoints.Load(ctx, BackfillSourceID)
	require.NoError(t, err)
	assert.Equal(t, "119", cp.Partition)
	assert.Equal(t, 0, cp.Cursor)
}

func TestBackfillAdapter_SkipsCompletedSessions(t *testing.T) {
	api := newFakeCongress()
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	ctx := context.Background()
	checkpoints := checkpointfile.NewStore(t.TempDir())
	require.NoError(t, checkpoints.Save(ctx, &domain.RunCheckpoint{
		SourceID:            BackfillSourceID,
		CompletedPartitions: []string{"119"},
	}))

	adapter := NewBackfillAdapter(backfillClient(srv), memory.NewLegislationStore(), checkpoints, BackfillOptions{Sessions: []int{119}})

	report := adapter.Run(ctx, time.Time{})

	assert.Equal(t, domain.OutcomeCompleted, report.Outcome)
	assert.Empty(t, api.listOffsets())
}

func TestBackfillAdapter_ResumesFromOffset(t *testing.T) {
	api := newFakeCongress()
	api.pages[250] = nil

	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	ctx := context.Background()
	checkpoints := checkpointfile.NewStore(t.TempDir())
	require.NoError(t, checkpoints.Save(ctx, &domain.RunCheckpoint{
		SourceID:  BackfillSourceID,
		Partition: "119",
		Cursor:    250,
	}))

	adapter := NewBackfillAdapter(backfillClient(srv), memory.NewLegislationStore(), checkpoints, BackfillOptions{Sessions: []int{119}})

	report := adapter.Run(ctx, time.Time{})

	assert.Equal(t, domain.OutcomeCompleted, report.Outcome)
	assert.Equal(t, []int{250}, api.listOffsets())
}
