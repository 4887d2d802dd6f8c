package domain

import "time"

// RecordKind tags the origin of a DisplayRecord.
type RecordKind string

const (
	// KindLegislation marks a record mapped from Legislation.
	KindLegislation RecordKind = "legislation"

	// KindExecutiveOrder marks a record mapped from ExecutiveOrder.
	KindExecutiveOrder RecordKind = "executive-order"
)

// DisplayRecord is the common read-time shape the dashboard consumes.
// Legislation and executive orders are stored separately; the query layer
// maps both into this shape rather than duck-typing fields inline.
type DisplayRecord struct {
	Kind         RecordKind
	ID           string
	Identifier   string
	Title        string
	Jurisdiction string
	StatusText   string
	Summary      string
	Topics       []string
	Date         *time.Time
	SourceURL    string
}

// DisplayFromLegislation maps a Legislation record to the display shape.
func DisplayFromLegislation(l *Legislation) DisplayRecord {
	return DisplayRecord{
		Kind:         KindLegislation,
		ID:           l.ID,
		Identifier:   l.Identifier,
		Title:        l.Title,
		Jurisdiction: l.JurisdictionName,
		StatusText:   l.StatusText,
		Summary:      l.PrimarySummaryText(),
		Topics:       l.Subjects,
		Date:         l.LatestActionAt,
		SourceURL:    l.SourceURL,
	}
}

// DisplayFromExecutiveOrder maps an ExecutiveOrder to the display shape.
// The order number doubles as the human identifier.
func DisplayFromExecutiveOrder(o *ExecutiveOrder) DisplayRecord {
	return DisplayRecord{
		Kind:         KindExecutiveOrder,
		ID:           o.ID,
		Identifier:   o.OrderNumber,
		Title:        o.Title,
		Jurisdiction: o.Jurisdiction,
		StatusText:   "Signed",
		Summary:      o.Summary,
		Topics:       o.Topics,
		Date:         o.DateSigned,
		SourceURL:    o.SourceURL,
	}
}
