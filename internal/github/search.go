package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// searchResponse is the body of GET search/issues.
type searchResponse struct {
	TotalCount int     `json:"total_count"`
	Items      []Issue `json:"items"`
}

// SearchTickets runs an issue search query and returns up to maxResults
// tickets. The query should include "is:issue"; pull requests that slip
// through are dropped.
func (c *Client) SearchTickets(ctx context.Context, query string, maxResults int) ([]*models.Ticket, error) {
	if maxResults <= 0 {
		return []*models.Ticket{}, nil
	}

	perPage := min(maxResults, maxPerPage)
	tickets := make([]*models.Ticket, 0, perPage)

	for page := 1; len(tickets) < maxResults; page++ {
		params := url.Values{}
		params.Set("q", query)
		params.Set("per_page", strconv.Itoa(perPage))
		params.Set("page", strconv.Itoa(page))

		var resp searchResponse
		if err := c.do(ctx, http.MethodGet, "search/issues?"+params.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to search issues: %w", err)
		}

		for i := range resp.Items {
			item := &resp.Items[i]
			if item.isPullRequest() {
				continue
			}
			project := projectFromRepositoryURL(item.RepositoryURL)
			if project == "" {
				continue
			}
			tickets = append(tickets, item.ToTicket(project))
			if len(tickets) == maxResults {
				break
			}
		}

		if len(resp.Items) < perPage || page*perPage >= resp.TotalCount {
			break
		}
	}

	return tickets, nil
}
