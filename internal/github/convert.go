package github

import (
	"strings"

	"github.com/Kavirubc/ticket-dedup/internal/document"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Label prefixes that map onto dedicated ticket fields.
const (
	componentPrefix = "component:"
	priorityPrefix  = "priority:"
	typePrefix      = "type:"
)

// ToTicket converts an API issue of the given project into a ticket. The
// markdown body is flattened and mined for file paths, PR links and test
// cases.
func (i *Issue) ToTicket(project string) *models.Ticket {
	doc := document.Parse(i.Body)

	t := &models.Ticket{
		Key:         models.TicketKey(project, i.Number),
		ProjectKey:  project,
		Title:       i.Title,
		Description: doc.Text,
		Files:       document.FilePaths(doc),
		PRLinks:     document.PRLinks(doc),
		TestCases:   document.TestCases(doc),
		Status:      i.State,
		Reporter:    i.User.Login,
		URL:         i.HTMLURL,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.Assignee != nil {
		t.Assignee = i.Assignee.Login
	}
	if i.State == "closed" {
		t.Resolution = i.StateReason
		t.ResolvedAt = i.ClosedAt
	}

	for _, l := range i.Labels {
		name := strings.TrimSpace(l.Name)
		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, componentPrefix):
			t.Components = append(t.Components, strings.TrimSpace(name[len(componentPrefix):]))
		case strings.HasPrefix(lower, priorityPrefix) && t.Priority == "":
			t.Priority = strings.TrimSpace(name[len(priorityPrefix):])
		case strings.HasPrefix(lower, typePrefix) && t.Type == "":
			t.Type = strings.TrimSpace(name[len(typePrefix):])
		default:
			t.Labels = append(t.Labels, name)
		}
	}

	return t
}

// projectFromRepositoryURL extracts "owner/repo" from an API repository URL
// such as https://api.github.com/repos/owner/repo.
func projectFromRepositoryURL(u string) string {
	idx := strings.Index(u, "/repos/")
	if idx < 0 {
		return ""
	}
	return strings.Trim(u[idx+len("/repos/"):], "/")
}
