// Package whitehouse ingests federal executive orders from the White
// House website's JSON listing of presidential actions.
package whitehouse

import (
	"context"
	"fmt"

	"github.com/statepulse/statepulse-ingest/internal/fetch"
)

// BaseURL is the White House content API root.
const BaseURL = "https://www.whitehouse.gov/wp-json/wp/v2"

// DefaultPerPage is the listing page size.
const DefaultPerPage = 20

// Client lists presidential actions from the content API. The listing
// needs no credentials; it is paced through the shared fetcher only.
type Client struct {
	baseURL string
	fetcher *fetch.Fetcher
	perPage int
}

// NewClient creates a client over the given fetcher. baseURL defaults
// to the production site when empty.
func NewClient(baseURL string, fetcher *fetch.Fetcher) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{baseURL: baseURL, fetcher: fetcher, perPage: DefaultPerPage}
}

// SetPerPage overrides the listing page size.
func (c *Client) SetPerPage(n int) {
	if n > 0 {
		c.perPage = n
	}
}

// rendered is the content API's wrapped-string shape.
type rendered struct {
	Rendered string `json:"rendered"`
}

// action is one listed presidential action.
type action struct {
	ID      int      `json:"id"`
	Date    string   `json:"date"`
	Link    string   `json:"link"`
	Slug    string   `json:"slug"`
	Title   rendered `json:"title"`
	Excerpt rendered `json:"excerpt"`
	Content rendered `json:"content"`
}

// Actions fetches one listing page, newest first. Paging past the last
// page returns a 400 status, which callers treat as end of listing.
func (c *Client) Actions(ctx context.Context, page int) ([]action, int, error) {
	var out []action
	status, err := c.fetcher.GetJSON(ctx, func() string {
		return fmt.Sprintf("%s/presidential-actions?per_page=%d&page=%d&orderby=date&order=desc",
			c.baseURL, c.perPage, page)
	}, &out)
	if err != nil {
		return nil, status, err
	}
	return out, status, nil
}
