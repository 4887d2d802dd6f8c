// Package openstates ingests state legislation, votes and legislator
// profiles from the OpenStates v3 API.
package openstates

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/fetch"
)

// BaseURL is the OpenStates v3 API root.
const BaseURL = "https://v3.openstates.org"

// DefaultPerPage matches the page size the upstream tolerates without
// aggressive throttling.
const DefaultPerPage = 20

// sinceLayout is what the API accepts for updated_since: date or
// datetime without a zone suffix.
const sinceLayout = "2006-01-02T15:04:05"

// Client is a thin OpenStates API client. All calls go through the
// shared fetcher, which paces requests and drives key rotation on 429.
type Client struct {
	baseURL string
	fetcher *fetch.Fetcher
	keys    *fetch.KeyRing
	perPage int
}

// NewClient creates a client over the given fetcher and key ring.
// baseURL defaults to the production API when empty.
func NewClient(baseURL string, fetcher *fetch.Fetcher, keys *fetch.KeyRing) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL: baseURL,
		fetcher: fetcher,
		keys:    keys,
		perPage: DefaultPerPage,
	}
}

// SetPerPage overrides the page size.
func (c *Client) SetPerPage(n int) {
	if n > 0 {
		c.perPage = n
	}
}

// pagination is the upstream page envelope.
type pagination struct {
	Page    int `json:"page"`
	MaxPage int `json:"max_page"`
	PerPage int `json:"per_page"`
}

// HasMore reports whether a further page exists.
func (p pagination) HasMore() bool {
	return p.Page < p.MaxPage
}

// BillsPage is one page of /bills results.
type BillsPage struct {
	Results    []osBill   `json:"results"`
	Pagination pagination `json:"pagination"`
}

// VotesPage is one page of /votes results.
type VotesPage struct {
	Results    []osVote   `json:"results"`
	Pagination pagination `json:"pagination"`
}

// PeoplePage is one page of /people results.
type PeoplePage struct {
	Results    []osPerson `json:"results"`
	Pagination pagination `json:"pagination"`
}

// osBill is the upstream bill shape, limited to the fields we map.
type osBill struct {
	ID             string        `json:"id"`
	Identifier     string        `json:"identifier"`
	Title          string        `json:"title"`
	Session        string        `json:"session"`
	Jurisdiction   *osOrg        `json:"jurisdiction"`
	Classification []string      `json:"classification"`
	Subject        []string      `json:"subject"`
	Sponsorships   []osSponsor   `json:"sponsorships"`
	Actions        []osAction    `json:"actions"`
	Versions       []osVersion   `json:"versions"`
	Abstracts      []osAbstract  `json:"abstracts"`
	OpenstatesURL  string        `json:"openstates_url"`
	FirstActionAt  string        `json:"first_action_date"`
	LatestActionAt string        `json:"latest_action_date"`
	LatestActionBy string        `json:"latest_action_description"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

type osOrg struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type osSponsor struct {
	Name           string `json:"name"`
	Primary        bool   `json:"primary"`
	Classification string `json:"classification"`
	Person         *osOrg `json:"person"`
	Organization   *osOrg `json:"organization"`
}

type osAction struct {
	Date           string   `json:"date"`
	Description    string   `json:"description"`
	Organization   *osOrg   `json:"organization"`
	Classification []string `json:"classification"`
	Order          int      `json:"order"`
}

type osVersion struct {
	Note  string `json:"note"`
	Date  string `json:"date"`
	Links []struct {
		URL string `json:"url"`
	} `json:"links"`
}

type osAbstract struct {
	Abstract string `json:"abstract"`
	Note     string `json:"note"`
}

// osVote is the upstream vote event shape.
type osVote struct {
	ID         string `json:"id"`
	BillID     string `json:"bill_id"`
	MotionText string `json:"motion_text"`
	Result     string `json:"result"`
	StartDate  string `json:"start_date"`
	Counts     []struct {
		Option string `json:"option"`
		Value  int    `json:"value"`
	} `json:"counts"`
	Votes []struct {
		Option    string `json:"option"`
		VoterName string `json:"voter_name"`
		VoterID   string `json:"voter_id"`
	} `json:"votes"`
}

// osPerson is the upstream legislator shape.
type osPerson struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	Party       string `json:"party"`
	Image       string `json:"image"`
	CurrentRole *struct {
		Party    string `json:"party"`
		District string `json:"district"`
	} `json:"current_role"`
}

// Bills fetches one page of bills for a jurisdiction updated since the
// given time, sorted by descending update time.
func (c *Client) Bills(ctx context.Context, jurisdiction string, since time.Time, page int) (*BillsPage, int, error) {
	var out BillsPage
	status, err := c.fetcher.GetJSON(ctx, func() string {
		return c.listURL("bills", jurisdiction, since, page,
			"include=abstracts&include=sponsorships&include=actions&include=versions")
	}, &out)
	if err != nil {
		return nil, status, err
	}
	return &out, status, nil
}

// Votes fetches one page of vote events for a jurisdiction.
func (c *Client) Votes(ctx context.Context, jurisdiction string, since time.Time, page int) (*VotesPage, int, error) {
	var out VotesPage
	status, err := c.fetcher.GetJSON(ctx, func() string {
		return c.listURL("votes", jurisdiction, since, page, "")
	}, &out)
	if err != nil {
		return nil, status, err
	}
	return &out, status, nil
}

// People fetches one page of legislators for a jurisdiction.
func (c *Client) People(ctx context.Context, jurisdiction string, since time.Time, page int) (*PeoplePage, int, error) {
	var out PeoplePage
	status, err := c.fetcher.GetJSON(ctx, func() string {
		return c.listURL("people", jurisdiction, since, page, "")
	}, &out)
	if err != nil {
		return nil, status, err
	}
	return &out, status, nil
}

// listURL builds a list endpoint URL. Rebuilt per attempt so a rotated
// key takes effect on the next request.
func (c *Client) listURL(endpoint, jurisdiction string, since time.Time, page int, includes string) string {
	u := fmt.Sprintf("%s/%s?jurisdiction=%s&updated_since=%s&sort=updated_desc&page=%d&per_page=%d&apikey=%s",
		c.baseURL, endpoint,
		url.QueryEscape(jurisdiction),
		since.UTC().Format(sinceLayout),
		page, c.perPage,
		url.QueryEscape(c.keys.Current()))
	if includes != "" {
		u += "&" + includes
	}
	return u
}
