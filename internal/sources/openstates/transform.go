package openstates

import (
	"strings"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// timeLayouts covers the date formats OpenStates emits across endpoints.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime parses an upstream timestamp, returning nil for empty or
// unparseable input. Malformed dates are dropped, not fatal.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NormaliseID converts an OpenStates OCD identifier into the stored
// form: "ocd-bill/xxxx-<uuid>" becomes "ocd-bill_<uuid>". Identifiers
// with other prefixes pass through unchanged.
func NormaliseID(id string) string {
	rest, ok := strings.CutPrefix(id, "ocd-bill/")
	if !ok {
		return id
	}
	if idx := strings.Index(rest, "-"); idx != -1 {
		return "ocd-bill_" + rest[idx+1:]
	}
	return "ocd-bill_" + rest
}

// transformBill maps an upstream bill to the stored record. Derived
// action fields are recomputed from history rather than trusted from
// the upstream's denormalised copies.
func transformBill(bill osBill) *domain.Legislation {
	record := &domain.Legislation{
		ID:             NormaliseID(bill.ID),
		Identifier:     bill.Identifier,
		Title:          bill.Title,
		Session:        bill.Session,
		Classification: bill.Classification,
		Subjects:       bill.Subject,
		SourceURL:      bill.OpenstatesURL,
	}
	if bill.Jurisdiction != nil {
		record.JurisdictionID = bill.Jurisdiction.ID
		record.JurisdictionName = bill.Jurisdiction.Name
	}

	for _, sp := range bill.Sponsorships {
		sponsor := domain.Sponsor{
			Name:    sp.Name,
			Primary: sp.Primary,
			Role:    sp.Classification,
		}
		switch {
		case sp.Person != nil:
			sponsor.ExternalID = sp.Person.ID
			sponsor.EntityType = "person"
		case sp.Organization != nil:
			sponsor.ExternalID = sp.Organization.ID
			sponsor.EntityType = "organization"
		}
		record.Sponsors = append(record.Sponsors, sponsor)
	}

	for _, act := range bill.Actions {
		date := parseTime(act.Date)
		if date == nil {
			continue
		}
		event := domain.HistoryEvent{
			Date:           *date,
			Action:         act.Description,
			Classification: act.Classification,
			Order:          act.Order,
		}
		if act.Organization != nil {
			event.Actor = act.Organization.Name
		}
		record.History = append(record.History, event)
	}

	for _, ver := range bill.Versions {
		date := parseTime(ver.Date)
		if date == nil {
			continue
		}
		version := domain.Version{Note: ver.Note, Date: *date}
		for _, link := range ver.Links {
			version.Links = append(version.Links, link.URL)
		}
		record.Versions = append(record.Versions, version)
	}

	for _, a := range bill.Abstracts {
		record.Abstracts = append(record.Abstracts, domain.Abstract{
			Text: a.Abstract,
			Note: a.Note,
		})
	}
	if len(record.Abstracts) > 0 {
		record.Summary = record.Abstracts[0].Text
		record.SummarySource = domain.SummaryFromUpstream
	}

	record.ApplyDerivedFields()
	return record
}

// transformVote maps an upstream vote event to the stored record.
func transformVote(vote osVote) *domain.Vote {
	record := &domain.Vote{
		ID:     NormaliseID(vote.ID),
		BillID: NormaliseID(vote.BillID),
		Motion: vote.MotionText,
		Result: vote.Result,
		Date:   parseTime(vote.StartDate),
	}
	for _, c := range vote.Counts {
		record.Counts = append(record.Counts, domain.VoteCount{Option: c.Option, Value: c.Value})
	}
	for _, v := range vote.Votes {
		voter := domain.VoterRecord{Option: v.Option, VoterName: v.VoterName}
		if v.VoterID != "" {
			voter.VoterID = NormaliseID(v.VoterID)
		}
		record.Votes = append(record.Votes, voter)
	}
	return record
}

// transformPerson maps an upstream legislator to the stored record.
// state is the sweep's two-letter code, not upstream data.
func transformPerson(person osPerson, state string) *domain.Legislator {
	record := &domain.Legislator{
		ID:         NormaliseID(person.ID),
		Name:       person.Name,
		GivenName:  person.GivenName,
		FamilyName: person.FamilyName,
		Party:      person.Party,
		State:      state,
		Image:      person.Image,
	}
	if person.CurrentRole != nil {
		record.District = person.CurrentRole.District
		if record.Party == "" {
			record.Party = person.CurrentRole.Party
		}
	}
	return record
}
