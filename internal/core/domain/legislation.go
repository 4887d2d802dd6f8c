package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Legislation is the canonical persisted record for a tracked bill.
// The source-prefixed ID is the only stable identity; every other field
// is overwritten on re-ingestion. CreatedAt is set once on first insert
// and never changed afterwards.
type Legislation struct {
	// ID is the globally unique, source-prefixed identifier
	// (e.g. "congress-bill-118-hr-1234" or "ocd-bill_<uuid>").
	ID string `bson:"id"`

	// Identifier is the human-readable bill number (e.g. "HB 1234").
	Identifier string `bson:"identifier"`

	// Title is the bill title as reported by the upstream.
	Title string `bson:"title"`

	// Session is the legislative session identifier.
	Session string `bson:"session"`

	// JurisdictionID is the upstream jurisdiction identifier, if any.
	JurisdictionID string `bson:"jurisdictionId,omitempty"`

	// JurisdictionName is the human-readable jurisdiction
	// (e.g. "California", "United States Congress").
	JurisdictionName string `bson:"jurisdictionName"`

	// Classification holds upstream bill classifications (e.g. "bill", "resolution").
	Classification []string `bson:"classification"`

	// Subjects holds upstream subject tags.
	Subjects []string `bson:"subjects"`

	// StatusText is the latest action description, duplicated for display.
	StatusText string `bson:"statusText,omitempty"`

	// Sponsors lists bill sponsors in upstream order.
	Sponsors []Sponsor `bson:"sponsors"`

	// History lists bill actions. Order is not significant for storage;
	// derived fields sort by date.
	History []HistoryEvent `bson:"history"`

	// Versions lists published bill text versions.
	Versions []Version `bson:"versions"`

	// Abstracts lists upstream-supplied abstracts.
	Abstracts []Abstract `bson:"abstracts"`

	// SourceURL is the upstream reference URL, if any.
	SourceURL string `bson:"sourceUrl,omitempty"`

	// FirstActionAt is the date of the earliest history event.
	FirstActionAt *time.Time `bson:"firstActionAt,omitempty"`

	// LatestActionAt is the date of the most recent history event.
	LatestActionAt *time.Time `bson:"latestActionAt,omitempty"`

	// LatestActionDescription is the text of the most recent history event.
	LatestActionDescription string `bson:"latestActionDescription,omitempty"`

	// EnactedAt is the date the bill became law, when detectable from history.
	EnactedAt *time.Time `bson:"enactedAt,omitempty"`

	// Summary is the bill summary. Upstream-supplied when available,
	// otherwise generated later by an external summariser.
	Summary string `bson:"summary,omitempty"`

	// SummarySource records where Summary came from.
	SummarySource SummarySource `bson:"summarySource,omitempty"`

	// CreatedAt is when the record was first inserted. Immutable.
	CreatedAt time.Time `bson:"createdAt"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `bson:"updatedAt"`
}

// SummarySource distinguishes externally-supplied from generated summaries.
type SummarySource string

const (
	// SummaryFromUpstream means the summary came with the upstream record.
	SummaryFromUpstream SummarySource = "upstream"

	// SummaryGenerated means the summary was produced by the summariser.
	SummaryGenerated SummarySource = "generated"
)

// Sponsor is a bill sponsor or cosponsor.
type Sponsor struct {
	// Name is the sponsor's display name.
	Name string `bson:"name"`

	// ExternalID is the upstream person/organisation identifier, if any.
	ExternalID string `bson:"externalId,omitempty"`

	// EntityType is "person" or "organization".
	EntityType string `bson:"entityType,omitempty"`

	// Primary marks the primary sponsor.
	Primary bool `bson:"primary"`

	// Role is the sponsorship classification (e.g. "sponsor", "cosponsor").
	Role string `bson:"role,omitempty"`
}

// HistoryEvent is a single action in a bill's history.
type HistoryEvent struct {
	// Date is when the action occurred.
	Date time.Time `bson:"date"`

	// Action is the action description text.
	Action string `bson:"action"`

	// Actor is the chamber or body that took the action.
	Actor string `bson:"actor,omitempty"`

	// Classification holds upstream action classification tags.
	Classification []string `bson:"classification"`

	// Order is the upstream-supplied ordinal, if any.
	Order int `bson:"order,omitempty"`
}

// Version is a published text version of a bill.
type Version struct {
	// Note describes the version (e.g. "Introduced", "Enrolled").
	Note string `bson:"note"`

	// Date is when the version was published.
	Date time.Time `bson:"date"`

	// Links holds URLs to the version text.
	Links []string `bson:"links"`
}

// Abstract is an upstream-supplied bill abstract.
type Abstract struct {
	// Text is the abstract body.
	Text string `bson:"abstract"`

	// Note describes the abstract's origin, if any.
	Note string `bson:"note,omitempty"`
}

// enactedPatterns match history action text that indicates a bill became law.
var enactedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)became public law`),
	regexp.MustCompile(`(?i)signed by (the )?president`),
	regexp.MustCompile(`(?i)signed by (the )?governor`),
	regexp.MustCompile(`(?i)approved by (the )?governor`),
	regexp.MustCompile(`(?i)\benacted\b`),
	regexp.MustCompile(`(?i)chaptered by secretary of state`),
}

// DetectEnactedDate scans history newest-first and returns the date of the
// first action whose text matches an enacted pattern, or nil.
func DetectEnactedDate(history []HistoryEvent) *time.Time {
	if len(history) == 0 {
		return nil
	}

	sorted := make([]HistoryEvent, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	for _, event := range sorted {
		text := strings.TrimSpace(event.Action)
		if text == "" {
			continue
		}
		for _, pattern := range enactedPatterns {
			if pattern.MatchString(text) {
				d := event.Date
				return &d
			}
		}
	}
	return nil
}

// ApplyDerivedFields recomputes FirstActionAt, LatestActionAt,
// LatestActionDescription, StatusText and EnactedAt from History.
// No-op when History is empty.
func (l *Legislation) ApplyDerivedFields() {
	if len(l.History) == 0 {
		return
	}

	sorted := make([]HistoryEvent, len(l.History))
	copy(sorted, l.History)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	first := sorted[0].Date
	last := sorted[len(sorted)-1].Date
	l.FirstActionAt = &first
	l.LatestActionAt = &last
	l.LatestActionDescription = sorted[len(sorted)-1].Action
	l.StatusText = sorted[len(sorted)-1].Action
	l.EnactedAt = DetectEnactedDate(l.History)
}

// PreserveSummaryFrom keeps an externally generated summary from being
// clobbered when a re-ingested upstream payload overwrites the record.
// An upstream-supplied summary also survives when the new payload has
// none.
func (l *Legislation) PreserveSummaryFrom(existing *Legislation) {
	if existing == nil {
		return
	}
	if existing.SummarySource == SummaryGenerated {
		l.Summary = existing.Summary
		l.SummarySource = existing.SummarySource
		return
	}
	if l.Summary == "" && existing.Summary != "" {
		l.Summary = existing.Summary
		l.SummarySource = existing.SummarySource
	}
}

// PrimarySummaryText returns the best available summary text for filtering:
// the Summary field when set, otherwise the first abstract.
func (l *Legislation) PrimarySummaryText() string {
	if l.Summary != "" {
		return l.Summary
	}
	if len(l.Abstracts) > 0 {
		return l.Abstracts[0].Text
	}
	return ""
}

// AbstractTexts returns the text of every abstract, for the relevance filter.
func (l *Legislation) AbstractTexts() []string {
	if len(l.Abstracts) == 0 {
		return nil
	}
	texts := make([]string, 0, len(l.Abstracts))
	for _, a := range l.Abstracts {
		texts = append(texts, a.Text)
	}
	return texts
}
