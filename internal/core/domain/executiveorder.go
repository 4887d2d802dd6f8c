package domain

import "time"

// ExecutiveOrder is a persisted executive order, keyed by order number and
// jurisdiction. Stored separately from Legislation but mapped into the same
// display shape at read time.
type ExecutiveOrder struct {
	// ID is the globally unique identifier
	// (e.g. "eo-federal-14110", "eo-california-n-12-23").
	ID string `bson:"id"`

	// OrderNumber is the order number as published, if any.
	OrderNumber string `bson:"orderNumber,omitempty"`

	// Title is the order title.
	Title string `bson:"title"`

	// Jurisdiction is "federal" or a state name.
	Jurisdiction string `bson:"jurisdiction"`

	// Issuer is the signing executive (president or governor).
	Issuer string `bson:"issuer,omitempty"`

	// Summary is the order summary, upstream-supplied or generated.
	Summary string `bson:"summary,omitempty"`

	// SummarySource records where Summary came from.
	SummarySource SummarySource `bson:"summarySource,omitempty"`

	// FullText is the order body text when captured.
	FullText string `bson:"fullText,omitempty"`

	// Topics holds derived topic tags.
	Topics []string `bson:"topics"`

	// SourceURL is the page the order was scraped from.
	SourceURL string `bson:"sourceUrl,omitempty"`

	// DateSigned is when the order was signed.
	DateSigned *time.Time `bson:"dateSigned,omitempty"`

	// CreatedAt is when the record was first inserted. Immutable.
	CreatedAt time.Time `bson:"createdAt"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `bson:"updatedAt"`
}
