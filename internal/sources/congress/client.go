// Package congress ingests federal bills from the Congress.gov v3 API,
// in two modes: a daily sweep of the current congress's recent actions
// and a historical backfill across whole legislative sessions.
package congress

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/statepulse/statepulse-ingest/internal/fetch"
)

// BaseURL is the Congress.gov v3 API root.
const BaseURL = "https://api.congress.gov/v3"

// MaxPageSize is the largest page the API allows.
const MaxPageSize = 250

// Client is a thin Congress.gov API client.
type Client struct {
	baseURL string
	fetcher *fetch.Fetcher
	keys    *fetch.KeyRing
}

// NewClient creates a client over the given fetcher and key ring.
// baseURL defaults to the production API when empty.
func NewClient(baseURL string, fetcher *fetch.Fetcher, keys *fetch.KeyRing) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{baseURL: baseURL, fetcher: fetcher, keys: keys}
}

// listResponse is the /bill/{congress} page envelope.
type listResponse struct {
	Bills []listedBill `json:"bills"`
}

// listedBill is the lean shape the list endpoint returns.
type listedBill struct {
	Type       string `json:"type"`
	Number     string `json:"number"`
	Title      string `json:"title"`
	UpdateDate string `json:"updateDate"`
}

// detailResponse wraps the /bill/{congress}/{type}/{number} payload.
type detailResponse struct {
	Bill billDetail `json:"bill"`
}

// billDetail is the full bill shape, limited to the fields we map.
type billDetail struct {
	Congress      int    `json:"congress"`
	Type          string `json:"type"`
	Number        string `json:"number"`
	Title         string `json:"title"`
	IntroducedAt  string `json:"introducedDate"`
	OriginChamber string `json:"originChamber"`
	UpdateDate    string `json:"updateDate"`
	LatestAction  *struct {
		ActionDate string `json:"actionDate"`
		Text       string `json:"text"`
	} `json:"latestAction"`
	Sponsors []person `json:"sponsors"`
}

type person struct {
	BioguideID string `json:"bioguideId"`
	FullName   string `json:"fullName"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

// actionsResponse is the /actions payload.
type actionsResponse struct {
	Actions []billAction `json:"actions"`
}

type billAction struct {
	ActionDate   string `json:"actionDate"`
	Text         string `json:"text"`
	Type         string `json:"type"`
	ActionCode   string `json:"actionCode"`
	SourceSystem *struct {
		Name string `json:"name"`
	} `json:"sourceSystem"`
}

// summariesResponse is the /summaries payload.
type summariesResponse struct {
	Summaries []billSummary `json:"summaries"`
}

type billSummary struct {
	Text       string `json:"text"`
	UpdateDate string `json:"updateDate"`
}

// textResponse is the /text payload.
type textResponse struct {
	TextVersions []textVersion `json:"textVersions"`
}

type textVersion struct {
	Type    string `json:"type"`
	Date    string `json:"date"`
	Formats []struct {
		URL string `json:"url"`
	} `json:"formats"`
}

// List fetches one offset page of a congress's bills. sort may be empty
// or "updateDate+desc".
func (c *Client) List(ctx context.Context, congress, offset, limit int, sort string) (*listResponse, int, error) {
	var out listResponse
	status, err := c.fetcher.GetJSON(ctx, func() string {
		u := fmt.Sprintf("%s/bill/%d?api_key=%s&format=json&offset=%d&limit=%d",
			c.baseURL, congress, url.QueryEscape(c.keys.Current()), offset, limit)
		if sort != "" {
			u += "&sort=" + sort
		}
		return u
	}, &out)
	if err != nil {
		return nil, status, err
	}
	return &out, status, nil
}

// Detail fetches a bill's full record.
func (c *Client) Detail(ctx context.Context, congress int, billType, number string) (*billDetail, int, error) {
	var out detailResponse
	status, err := c.fetcher.GetJSON(ctx, c.billURL(congress, billType, number, ""), &out)
	if err != nil {
		return nil, status, err
	}
	return &out.Bill, status, nil
}

// Actions fetches a bill's action history.
func (c *Client) Actions(ctx context.Context, congress int, billType, number string) ([]billAction, int, error) {
	var out actionsResponse
	status, err := c.fetcher.GetJSON(ctx, c.billURL(congress, billType, number, "/actions"), &out)
	if err != nil {
		return nil, status, err
	}
	return out.Actions, status, nil
}

// Summaries fetches a bill's official summaries.
func (c *Client) Summaries(ctx context.Context, congress int, billType, number string) ([]billSummary, int, error) {
	var out summariesResponse
	status, err := c.fetcher.GetJSON(ctx, c.billURL(congress, billType, number, "/summaries"), &out)
	if err != nil {
		return nil, status, err
	}
	return out.Summaries, status, nil
}

// TextVersions fetches a bill's published text versions.
func (c *Client) TextVersions(ctx context.Context, congress int, billType, number string) ([]textVersion, int, error) {
	var out textResponse
	status, err := c.fetcher.GetJSON(ctx, c.billURL(congress, billType, number, "/text"), &out)
	if err != nil {
		return nil, status, err
	}
	return out.TextVersions, status, nil
}

// billURL builds a bill endpoint URL, rebuilt per attempt for key
// rotation.
func (c *Client) billURL(congress int, billType, number, suffix string) func() string {
	return func() string {
		return fmt.Sprintf("%s/bill/%d/%s/%s%s?api_key=%s&format=json",
			c.baseURL, congress, strings.ToLower(billType), number, suffix,
			url.QueryEscape(c.keys.Current()))
	}
}
