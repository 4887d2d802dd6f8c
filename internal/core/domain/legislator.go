package domain

import "time"

// Legislator is a state legislator profile.
// Unlike bills, legislators are upserted unconditionally; the relevance
// filter does not apply to them.
type Legislator struct {
	// ID is the normalised upstream person identifier.
	ID string `bson:"id"`

	// Name is the legislator's display name.
	Name string `bson:"name"`

	// GivenName and FamilyName are the split name parts when supplied.
	GivenName  string `bson:"givenName,omitempty"`
	FamilyName string `bson:"familyName,omitempty"`

	// Party is the legislator's party affiliation.
	Party string `bson:"party,omitempty"`

	// State is the two-letter state code the sweep found them in.
	State string `bson:"state"`

	// District is the represented district, if any.
	District string `bson:"district,omitempty"`

	// Image is a portrait URL.
	Image string `bson:"image,omitempty"`

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time `bson:"updatedAt"`
}
