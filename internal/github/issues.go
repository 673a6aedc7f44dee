package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const maxPerPage = 100

// ListOptions configures issue listing
type ListOptions struct {
	State   string // "open", "closed", "all"
	PerPage int
	Page    int
	Since   time.Time
}

// FetchTicket fetches one ticket by key. It returns nil when the issue does
// not exist or is a pull request.
func (c *Client) FetchTicket(ctx context.Context, key string) (*models.Ticket, error) {
	project, number, err := models.ParseKey(key)
	if err != nil {
		return nil, err
	}

	issue, err := c.GetIssue(ctx, project, number)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if issue.isPullRequest() {
		return nil, nil
	}
	return issue.ToTicket(project), nil
}

// GetIssue fetches a single issue
func (c *Client) GetIssue(ctx context.Context, project string, number int) (*Issue, error) {
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d", owner, repo, number)

	var issue Issue
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &issue); err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return &issue, nil
}

// ListIssues fetches one page of issues from a repository, pull requests
// excluded.
func (c *Client) ListIssues(ctx context.Context, project string, opts ListOptions) ([]*models.Ticket, int, error) {
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return nil, 0, err
	}
	if opts.PerPage <= 0 || opts.PerPage > maxPerPage {
		opts.PerPage = maxPerPage
	}
	if opts.State == "" {
		opts.State = "all"
	}
	if opts.Page == 0 {
		opts.Page = 1
	}

	params := url.Values{}
	params.Set("state", opts.State)
	params.Set("per_page", strconv.Itoa(opts.PerPage))
	params.Set("page", strconv.Itoa(opts.Page))
	params.Set("sort", "created")
	params.Set("direction", "desc")
	if !opts.Since.IsZero() {
		params.Set("since", opts.Since.Format(time.RFC3339))
	}

	endpoint := fmt.Sprintf("repos/%s/%s/issues?%s", owner, repo, params.Encode())

	var apiIssues []Issue
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &apiIssues); err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	tickets := make([]*models.Ticket, 0, len(apiIssues))
	for i := range apiIssues {
		// Skip pull requests (they appear in issues endpoint)
		if apiIssues[i].isPullRequest() {
			continue
		}
		tickets = append(tickets, apiIssues[i].ToTicket(project))
	}

	// The raw page size decides whether more pages exist.
	return tickets, len(apiIssues), nil
}

// ListTickets fetches up to maxTickets of a project's tickets, newest
// first, following pagination. maxTickets <= 0 means no cap.
func (c *Client) ListTickets(ctx context.Context, project string, maxTickets int) ([]*models.Ticket, error) {
	var all []*models.Ticket
	page := 1

	for {
		tickets, raw, err := c.ListIssues(ctx, project, ListOptions{
			State:   "all",
			PerPage: maxPerPage,
			Page:    page,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, tickets...)
		if maxTickets > 0 && len(all) >= maxTickets {
			return all[:maxTickets], nil
		}
		if raw < maxPerPage {
			break
		}
		page++
	}

	return all, nil
}
