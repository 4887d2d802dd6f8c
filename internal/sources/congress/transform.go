package congress

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// BillID builds the canonical stored identifier for a federal bill,
// e.g. "congress-bill-118-hr-1234".
func BillID(congress int, billType, number string) string {
	return fmt.Sprintf("congress-bill-%d-%s-%s", congress, strings.ToLower(billType), number)
}

// parseDate parses the date-only stamps the API emits. Timestamps with
// a time component are truncated to the date, matching how the rest of
// the record treats action dates.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if idx := strings.IndexAny(s, "T "); idx != -1 {
		s = s[:idx]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// transformSponsors maps the detail's sponsor list. The API reports the
// primary sponsor(s) here; cosponsors live behind a separate endpoint
// the pipeline does not sweep.
func transformSponsors(bill *billDetail) []domain.Sponsor {
	var sponsors []domain.Sponsor
	for _, sp := range bill.Sponsors {
		name := sp.FullName
		if name == "" {
			name = strings.TrimSpace(sp.FirstName + " " + sp.LastName)
		}
		sponsors = append(sponsors, domain.Sponsor{
			Name:       name,
			ExternalID: sp.BioguideID,
			EntityType: "person",
			Primary:    true,
			Role:       "sponsor",
		})
	}
	return sponsors
}

// transformHistory maps the actions endpoint's list, dropping entries
// without a parseable date.
func transformHistory(actions []billAction) []domain.HistoryEvent {
	var history []domain.HistoryEvent
	for _, act := range actions {
		date := parseDate(act.ActionDate)
		if date == nil {
			continue
		}
		event := domain.HistoryEvent{
			Date:   *date,
			Action: act.Text,
			Actor:  "Congress",
		}
		if act.SourceSystem != nil && act.SourceSystem.Name != "" {
			event.Actor = act.SourceSystem.Name
		}
		if act.Type != "" {
			event.Classification = []string{act.Type}
		}
		if code, err := strconv.Atoi(act.ActionCode); err == nil {
			event.Order = code
		}
		history = append(history, event)
	}
	return history
}

// transformBill builds the full stored record from a bill's detail,
// actions, summaries and text versions.
func transformBill(bill *billDetail, actions []billAction, summaries []billSummary, versions []textVersion) *domain.Legislation {
	record := &domain.Legislation{
		ID:               BillID(bill.Congress, bill.Type, bill.Number),
		Identifier:       fmt.Sprintf("%s %s", strings.ToUpper(bill.Type), bill.Number),
		Title:            bill.Title,
		Session:          strconv.Itoa(bill.Congress),
		JurisdictionName: "United States Congress",
		Classification:   []string{strings.ToLower(bill.Type)},
		Sponsors:         transformSponsors(bill),
		History:          transformHistory(actions),
		SourceURL: fmt.Sprintf("https://www.congress.gov/bill/%dth-congress/%s/%s",
			bill.Congress, strings.ToLower(bill.Type), bill.Number),
	}

	for _, sum := range summaries {
		text := strings.TrimSpace(sum.Text)
		if text == "" {
			continue
		}
		record.Abstracts = append(record.Abstracts, domain.Abstract{Text: text, Note: "official summary"})
	}
	if len(record.Abstracts) > 0 {
		record.Summary = record.Abstracts[0].Text
		record.SummarySource = domain.SummaryFromUpstream
	}

	for _, ver := range versions {
		date := parseDate(ver.Date)
		if date == nil {
			continue
		}
		version := domain.Version{Note: ver.Type, Date: *date}
		for _, format := range ver.Formats {
			version.Links = append(version.Links, format.URL)
		}
		record.Versions = append(record.Versions, version)
	}

	record.ApplyDerivedFields()
	return record
}

// selectiveUpdate builds the lean record the backfill writes over an
// existing bill: sponsors, history and the derived action fields only.
func selectiveUpdate(id string, sponsors []domain.Sponsor, history []domain.HistoryEvent) *domain.Legislation {
	record := &domain.Legislation{
		ID:       id,
		Sponsors: sponsors,
		History:  history,
	}
	record.ApplyDerivedFields()
	return record
}
