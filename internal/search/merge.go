// Package search serves ad-hoc ticket lookups that combine the local
// corpus with the live ticket source.
package search

import (
	"sort"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Origin tells where a merged entry came from.
type Origin int

const (
	// Persisted entries exist in the local store.
	Persisted Origin = iota
	// LiveOnly entries were returned by the live source and are not stored yet.
	LiveOnly
)

func (o Origin) String() string {
	switch o {
	case Persisted:
		return "persisted"
	case LiveOnly:
		return "live"
	default:
		return "unknown"
	}
}

// Entry is one merged search result.
type Entry struct {
	Ticket *models.Ticket `json:"ticket"`
	Origin Origin         `json:"origin"`
}

// IsPersisted reports whether the entry is backed by the local store.
func (e Entry) IsPersisted() bool {
	return e.Origin == Persisted
}

// Merge unions local and live results. Keys are compared
// case-insensitively and a local record always wins over a live one.
// Persisted entries come first, then live-only entries; each group is
// ordered by creation date, newest first.
func Merge(local, live []*models.Ticket) []Entry {
	seen := make(map[string]struct{}, len(local)+len(live))
	entries := make([]Entry, 0, len(local)+len(live))

	add := func(tickets []*models.Ticket, origin Origin) {
		for _, t := range tickets {
			if t == nil {
				continue
			}
			key := strings.ToLower(t.Key)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			entries = append(entries, Entry{Ticket: t, Origin: origin})
		}
	}
	add(local, Persisted)
	add(live, LiveOnly)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Origin != entries[j].Origin {
			return entries[i].Origin == Persisted
		}
		return entries[i].Ticket.CreatedAt.After(entries[j].Ticket.CreatedAt)
	})

	return entries
}
