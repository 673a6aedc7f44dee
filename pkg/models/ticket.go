package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ticket is a tracked work item. The key is its identity; at most one
// persisted record exists per key (compared case-insensitively).
type Ticket struct {
	Key         string     `json:"key"`          // "owner/repo#123"
	ProjectKey  string     `json:"project_key"`  // "owner/repo"
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Files       []string   `json:"files,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	Components  []string   `json:"components,omitempty"`
	Type        string     `json:"type,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	Reporter    string     `json:"reporter,omitempty"`
	URL         string     `json:"url,omitempty"`
	PRLinks     []string   `json:"pr_links,omitempty"`
	TestCases   string     `json:"test_cases,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	RelatedKeys []string   `json:"related_keys,omitempty"`
}

// TicketKey builds the key for issue number n of a project.
func TicketKey(project string, number int) string {
	return fmt.Sprintf("%s#%d", project, number)
}

// ParseKey splits "owner/repo#123" into its project key and issue number.
func ParseKey(key string) (string, int, error) {
	idx := strings.LastIndex(key, "#")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, fmt.Errorf("invalid ticket key: %s (expected owner/repo#number)", key)
	}
	project := key[:idx]
	if strings.Count(project, "/") != 1 || strings.HasPrefix(project, "/") || strings.HasSuffix(project, "/") {
		return "", 0, fmt.Errorf("invalid ticket key: %s (expected owner/repo#number)", key)
	}
	number, err := strconv.Atoi(key[idx+1:])
	if err != nil || number <= 0 {
		return "", 0, fmt.Errorf("invalid ticket number in key: %s", key)
	}
	return project, number, nil
}

// SameKey reports whether two ticket keys identify the same ticket.
func SameKey(a, b string) bool {
	return strings.EqualFold(a, b)
}

// ExternalRef returns the linked change reference (first PR link), if any.
func (t *Ticket) ExternalRef() string {
	if len(t.PRLinks) == 0 {
		return ""
	}
	return t.PRLinks[0]
}

// IsResolved reports whether the ticket has been resolved.
func (t *Ticket) IsResolved() bool {
	return t.ResolvedAt != nil
}

// UUID generates a deterministic UUID based on the ticket key
func (t *Ticket) UUID() string {
	return TicketUUID(t.Key)
}

// BodyHash returns a SHA256 hash of title and description for change detection
func (t *Ticket) BodyHash() string {
	h := sha256.Sum256([]byte(t.Title + "\x00" + t.Description))
	return hex.EncodeToString(h[:])
}

// TicketUUID generates a deterministic UUID from a ticket key. Keys that
// differ only in case map to the same UUID.
func TicketUUID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.ToLower(key))).String()
}
