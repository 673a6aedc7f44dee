package search

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+#\d+$`)

// Query is a parsed search term. Exactly one of Key or Expression is set.
type Query struct {
	// Key names a single ticket to fetch directly.
	Key string
	// Expression is a GitHub issue search query.
	Expression string
}

// BuildQuery turns a user search term into a source query.
//
//	org/repo#12          direct key lookup
//	priority:high        label:"priority:high"
//	status:open          state:open
//	assignee:alice       assignee:alice
//	reporter:bob         author:bob
//	project:org/repo     repo:org/repo
//	type:bug             label:"type:bug"
//	component:auth       label:"component:auth"
//	label:regression     label:"regression"
//	created:week         created:>=<start of week>
//	anything else        free text over title, body and comments
//
// Unless the term names a project, the expression is scoped to projects.
func BuildQuery(term string, projects []string, now time.Time) Query {
	term = strings.TrimSpace(term)
	if keyPattern.MatchString(term) {
		return Query{Key: term}
	}

	var qualifier string
	scoped := true
	normalized := strings.ToLower(term)

	if field, value, ok := strings.Cut(normalized, ":"); ok {
		field = strings.TrimSpace(field)
		value = strings.Trim(strings.TrimSpace(value), `"`)

		switch field {
		case "priority", "type", "component":
			qualifier = fmt.Sprintf(`label:"%s:%s"`, field, value)
		case "status":
			if value == "open" || value == "closed" {
				qualifier = "state:" + value
			} else {
				qualifier = fmt.Sprintf(`label:"status:%s"`, value)
			}
		case "assignee":
			qualifier = "assignee:" + value
		case "reporter":
			qualifier = "author:" + value
		case "project":
			qualifier = "repo:" + value
			scoped = false
		case "label":
			qualifier = fmt.Sprintf(`label:"%s"`, value)
		case "created", "updated":
			qualifier = field + ":" + dateRange(value, now)
		default:
			qualifier = fmt.Sprintf(`"%s" in:title,body`, escapeQuotes(term))
		}
	} else {
		qualifier = escapeQuotes(term) + " in:title,body,comments"
	}

	parts := []string{"is:issue", qualifier}
	if scoped && len(projects) > 0 {
		scopes := make([]string, len(projects))
		for i, p := range projects {
			scopes[i] = "repo:" + p
		}
		parts = append(parts, strings.Join(scopes, " "))
	}
	return Query{Expression: strings.Join(parts, " ")}
}

// dateRange maps relative date words to a GitHub date qualifier value.
func dateRange(value string, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch value {
	case "today":
		return ">=" + today.Format(dateLayout)
	case "yesterday":
		return today.AddDate(0, 0, -1).Format(dateLayout)
	case "week":
		start := today.AddDate(0, 0, -int(today.Weekday()))
		return ">=" + start.Format(dateLayout)
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return ">=" + start.Format(dateLayout)
	default:
		return ">=" + value
	}
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
