package congress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

func TestBillID(t *testing.T) {
	assert.Equal(t, "congress-bill-118-hr-1234", BillID(118, "HR", "1234"))
	assert.Equal(t, "congress-bill-119-sjres-12", BillID(119, "SJRES", "12"))
}

func TestParseDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2025-03-14", "2025-03-14"},
		{"2025-03-14T10:30:00Z", "2025-03-14"},
		{"2025-03-14 10:30:00", "2025-03-14"},
	}
	for _, tc := range tests {
		got := parseDate(tc.in)
		require.NotNil(t, got, tc.in)
		assert.Equal(t, tc.want, got.Format("2006-01-02"))
	}

	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("not a date"))
}

func TestTransformBill(t *testing.T) {
	detail := &billDetail{
		Congress: 118,
		Type:     "HR",
		Number:   "1234",
		Title:    "Artificial Intelligence Accountability Act",
		Sponsors: []person{{BioguideID: "A000001", FullName: "Rep. Ada Alvarez"}},
	}
	actions := []billAction{
		{ActionDate: "2024-01-10", Text: "Introduced in House", Type: "IntroReferral", ActionCode: "1000"},
		{ActionDate: "2024-06-02", Text: "Became Public Law No: 118-42.", Type: "BecameLaw",
			SourceSystem: &struct {
				Name string `json:"name"`
			}{Name: "Library of Congress"}},
	}
	summaries := []billSummary{{Text: " Establishes accountability requirements for AI systems. "}}
	versions := []textVersion{{Type: "Introduced", Date: "2024-01-10",
		Formats: []struct {
			URL string `json:"url"`
		}{{URL: "https://example.gov/hr1234.pdf"}}}}

	record := transformBill(detail, actions, summaries, versions)

	assert.Equal(t, "congress-bill-118-hr-1234", record.ID)
	assert.Equal(t, "HR 1234", record.Identifier)
	assert.Equal(t, "118", record.Session)
	assert.Equal(t, "United States Congress", record.JurisdictionName)
	assert.Equal(t, []string{"hr"}, record.Classification)
	assert.Equal(t, "https://www.congress.gov/bill/118th-congress/hr/1234", record.SourceURL)

	require.Len(t, record.Sponsors, 1)
	assert.Equal(t, "Rep. Ada Alvarez", record.Sponsors[0].Name)
	assert.Equal(t, "A000001", record.Sponsors[0].ExternalID)
	assert.True(t, record.Sponsors[0].Primary)

	require.Len(t, record.History, 2)
	assert.Equal(t, 1000, record.History[0].Order)
	assert.Equal(t, "Library of Congress", record.History[1].Actor)
	assert.Equal(t, []string{"BecameLaw"}, record.History[1].Classification)

	assert.Equal(t, "Establishes accountability requirements for AI systems.", record.Summary)
	assert.Equal(t, domain.SummaryFromUpstream, record.SummarySource)

	require.Len(t, record.Versions, 1)
	assert.Equal(t, "Introduced", record.Versions[0].Note)
	assert.Equal(t, []string{"https://example.gov/hr1234.pdf"}, record.Versions[0].Links)

	require.NotNil(t, record.FirstActionAt)
	assert.Equal(t, "2024-01-10", record.FirstActionAt.Format("2006-01-02"))
	require.NotNil(t, record.EnactedAt)
	assert.Equal(t, "2024-06-02", record.EnactedAt.Format("2006-01-02"))
	assert.Equal(t, "Became Public Law No: 118-42.", record.StatusText)
}

func TestTransformSponsors_NameFallback(t *testing.T) {
	detail := &billDetail{Sponsors: []person{{FirstName: "Ada", LastName: "Alvarez"}}}

	sponsors := transformSponsors(detail)

	require.Len(t, sponsors, 1)
	assert.Equal(t, "Ada Alvarez", sponsors[0].Name)
}

func TestTransformHistory_DropsUndatedActions(t *testing.T) {
	actions := []billAction{
		{ActionDate: "", Text: "unknown date"},
		{ActionDate: "2024-02-01", Text: "Passed House"},
	}

	history := transformHistory(actions)

	require.Len(t, history, 1)
	assert.Equal(t, "Passed House", history[0].Action)
	assert.Equal(t, "Congress", history[0].Actor)
}

func TestSelectiveUpdate(t *testing.T) {
	history := []domain.HistoryEvent{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Action: "Signed by President."},
	}

	record := selectiveUpdate("congress-bill-118-hr-1", nil, history)

	assert.Equal(t, "congress-bill-118-hr-1", record.ID)
	assert.Empty(t, record.Title)
	assert.Equal(t, "Signed by President.", record.StatusText)
	require.NotNil(t, record.EnactedAt)
	assert.Equal(t, "2024-05-01", record.EnactedAt.Format("2006-01-02"))
}
