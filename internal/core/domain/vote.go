package domain

import "time"

// Vote is a recorded vote event on a tracked bill.
type Vote struct {
	// ID is the normalised upstream vote identifier.
	ID string `bson:"id"`

	// BillID links to the Legislation record the vote belongs to.
	BillID string `bson:"billId"`

	// Motion is the motion text.
	Motion string `bson:"motion,omitempty"`

	// Result is the vote outcome (e.g. "pass", "fail").
	Result string `bson:"result,omitempty"`

	// Date is when the vote was taken.
	Date *time.Time `bson:"date,omitempty"`

	// Counts holds per-option tallies.
	Counts []VoteCount `bson:"counts"`

	// Votes holds individual voter records.
	Votes []VoterRecord `bson:"votes"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `bson:"updatedAt"`
}

// VoteCount is the tally for one option.
type VoteCount struct {
	Option string `bson:"option"`
	Value  int    `bson:"value"`
}

// VoterRecord is one legislator's vote.
type VoterRecord struct {
	Option    string `bson:"option"`
	VoterName string `bson:"voterName"`
	VoterID   string `bson:"voterId,omitempty"`
}
