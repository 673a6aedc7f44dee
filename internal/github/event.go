package github

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Event represents a GitHub issues webhook event
type Event struct {
	Action string       `json:"action"`
	Issue  *EventIssue  `json:"issue"`
	Repo   *EventRepo   `json:"repository"`
	Sender *EventSender `json:"sender"`
}

// EventIssue represents issue data in an event
type EventIssue struct {
	Number      int          `json:"number"`
	Title       string       `json:"title"`
	Body        string       `json:"body"`
	State       string       `json:"state"`
	HTMLURL     string       `json:"html_url"`
	User        *EventSender `json:"user"`
	Labels      []Label      `json:"labels"`
	PullRequest *struct{}    `json:"pull_request"`
}

// EventRepo represents repository data in an event
type EventRepo struct {
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name string `json:"name"`
}

// EventSender represents the user who triggered the event
type EventSender struct {
	Login string `json:"login"`
}

// ParseEventFile reads and parses a GitHub event JSON file
func ParseEventFile(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	return ParseEvent(data)
}

// ParseEvent parses a GitHub event payload
func ParseEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}
	return &event, nil
}

// IsIssueEvent checks if this is an issue event
func (e *Event) IsIssueEvent() bool {
	return e.Issue != nil && e.Issue.PullRequest == nil
}

// IsTicketCreated reports whether the event announces a new ticket.
func (e *Event) IsTicketCreated() bool {
	return e.IsIssueEvent() && e.Action == "opened"
}

// ProjectKey returns "owner/repo" of the event's repository.
func (e *Event) ProjectKey() string {
	if e.Repo == nil {
		return ""
	}
	if e.Repo.FullName != "" {
		return e.Repo.FullName
	}
	if e.Repo.Owner.Login == "" || e.Repo.Name == "" {
		return ""
	}
	return e.Repo.Owner.Login + "/" + e.Repo.Name
}

// TicketKey returns the key of the ticket the event is about, or "" if the
// event carries no issue.
func (e *Event) TicketKey() string {
	project := e.ProjectKey()
	if e.Issue == nil || project == "" {
		return ""
	}
	return models.TicketKey(project, e.Issue.Number)
}
