package openstates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

func TestNormaliseID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bill with prefix", "ocd-bill/xxxx-0c9b46a2-ab12", "ocd-bill_0c9b46a2-ab12"},
		{"bill without segment", "ocd-bill/abc", "ocd-bill_abc"},
		{"person passes through", "ocd-person/123-456", "ocd-person/123-456"},
		{"congress id passes through", "congress-bill-118-hr-1", "congress-bill-118-hr-1"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormaliseID(tt.in))
		})
	}
}

func TestParseTime(t *testing.T) {
	assert.Nil(t, parseTime(""))
	assert.Nil(t, parseTime("not a date"))

	d := parseTime("2025-03-14")
	require.NotNil(t, d)
	assert.Equal(t, 14, d.Day())

	rfc := parseTime("2025-03-14T10:30:00+00:00")
	require.NotNil(t, rfc)
	assert.Equal(t, 10, rfc.Hour())

	spaced := parseTime("2025-03-14 10:30:00")
	require.NotNil(t, spaced)
	assert.Equal(t, 30, spaced.Minute())
}

func TestTransformBill(t *testing.T) {
	bill := osBill{
		ID:         "ocd-bill/2025-abc-def",
		Identifier: "SB 123",
		Title:      "Artificial Intelligence Accountability Act",
		Session:    "2025",
		Jurisdiction: &osOrg{
			ID:   "ocd-jurisdiction/country:us/state:ca/government",
			Name: "California",
		},
		Classification: []string{"bill"},
		Subject:        []string{"technology"},
		OpenstatesURL:  "https://openstates.org/ca/bills/2025/SB123/",
		Sponsorships: []osSponsor{
			{Name: "Jane Smith", Primary: true, Classification: "sponsor", Person: &osOrg{ID: "ocd-person/1"}},
			{Name: "Judiciary Committee", Classification: "cosponsor", Organization: &osOrg{ID: "ocd-organization/2"}},
		},
		Actions: []osAction{
			{Date: "2025-02-01", Description: "Introduced", Organization: &osOrg{Name: "Senate"}, Order: 1},
			{Date: "2025-04-10", Description: "Signed by Governor", Order: 2},
			{Date: "", Description: "No date, dropped"},
		},
		Versions: []osVersion{
			{Note: "Introduced", Date: "2025-02-01", Links: []struct {
				URL string `json:"url"`
			}{{URL: "https://example.com/sb123.pdf"}}},
		},
		Abstracts: []osAbstract{
			{Abstract: "Regulates automated decision systems.", Note: "summary"},
		},
	}

	record := transformBill(bill)

	assert.Equal(t, "ocd-bill_abc-def", record.ID)
	assert.Equal(t, "SB 123", record.Identifier)
	assert.Equal(t, "California", record.JurisdictionName)
	assert.Equal(t, []string{"technology"}, record.Subjects)

	require.Len(t, record.Sponsors, 2)
	assert.Equal(t, "person", record.Sponsors[0].EntityType)
	assert.True(t, record.Sponsors[0].Primary)
	assert.Equal(t, "organization", record.Sponsors[1].EntityType)

	require.Len(t, record.History, 2, "actions without a parseable date are dropped")
	assert.Equal(t, "Senate", record.History[0].Actor)

	require.Len(t, record.Versions, 1)
	assert.Equal(t, []string{"https://example.com/sb123.pdf"}, record.Versions[0].Links)

	assert.Equal(t, "Regulates automated decision systems.", record.Summary)
	assert.Equal(t, domain.SummaryFromUpstream, record.SummarySource)

	// Derived fields come from history.
	require.NotNil(t, record.FirstActionAt)
	require.NotNil(t, record.LatestActionAt)
	assert.Equal(t, "Signed by Governor", record.StatusText)
	require.NotNil(t, record.EnactedAt)
	assert.Equal(t, time.April, record.EnactedAt.Month())
}

func TestTransformBill_NoAbstracts(t *testing.T) {
	record := transformBill(osBill{ID: "ocd-bill/x-y", Title: "Test"})

	assert.Empty(t, record.Summary)
	assert.Empty(t, record.SummarySource)
	assert.Nil(t, record.EnactedAt)
}

func TestTransformVote(t *testing.T) {
	vote := osVote{
		ID:         "ocd-vote/2025-aaa",
		BillID:     "ocd-bill/2025-bbb",
		MotionText: "Third Reading",
		Result:     "pass",
		StartDate:  "2025-05-01",
		Counts: []struct {
			Option string `json:"option"`
			Value  int    `json:"value"`
		}{{Option: "yes", Value: 40}, {Option: "no", Value: 12}},
		Votes: []struct {
			Option    string `json:"option"`
			VoterName string `json:"voter_name"`
			VoterID   string `json:"voter_id"`
		}{{Option: "yes", VoterName: "Jane Smith", VoterID: "ocd-person/7"}},
	}

	record := transformVote(vote)

	assert.Equal(t, "ocd-vote/2025-aaa", record.ID)
	assert.Equal(t, "ocd-bill_bbb", record.BillID)
	assert.Equal(t, "Third Reading", record.Motion)
	require.NotNil(t, record.Date)
	require.Len(t, record.Counts, 2)
	assert.Equal(t, 40, record.Counts[0].Value)
	require.Len(t, record.Votes, 1)
	assert.Equal(t, "ocd-person/7", record.Votes[0].VoterID)
}

func TestTransformPerson(t *testing.T) {
	person := osPerson{
		ID:         "ocd-person/42",
		Name:       "Jane Smith",
		GivenName:  "Jane",
		FamilyName: "Smith",
		Image:      "https://example.com/jane.jpg",
		CurrentRole: &struct {
			Party    string `json:"party"`
			District string `json:"district"`
		}{Party: "Independent", District: "12"},
	}

	record := transformPerson(person, "VT")

	assert.Equal(t, "ocd-person/42", record.ID)
	assert.Equal(t, "VT", record.State)
	assert.Equal(t, "12", record.District)
	assert.Equal(t, "Independent", record.Party, "role party used when top level is empty")
}

func TestSelectStates(t *testing.T) {
	all := SelectStates(nil, "")
	assert.Len(t, all, 49)
	for _, state := range all {
		assert.NotEqual(t, "NY", state.Abbr, "New York stays out of the sweep list")
	}

	targeted := SelectStates([]string{"ca", "TX"}, "")
	require.Len(t, targeted, 2)
	assert.Equal(t, "CA", targeted[0].Abbr)
	assert.Equal(t, "TX", targeted[1].Abbr)

	fromTX := SelectStates(nil, "tx")
	require.NotEmpty(t, fromTX)
	assert.Equal(t, "TX", fromTX[0].Abbr)
	assert.Equal(t, "UT", fromTX[1].Abbr)

	unknown := SelectStates(nil, "ZZ")
	assert.Len(t, unknown, 49, "unknown start state falls back to full sweep")
}
