package models

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTitle is returned for analysis requests without a title.
var ErrEmptyTitle = errors.New("analysis request title is required")

// AnalysisRequest describes a candidate ticket to compare against the corpus.
type AnalysisRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Files            []string `json:"files,omitempty"`
	ProjectKey       string   `json:"project_key,omitempty"`
	MinimumThreshold float64  `json:"minimum_threshold"`
	MaxResults       int      `json:"max_results"`
	// ExcludeKey drops the candidate's own record from the corpus.
	ExcludeKey string `json:"exclude_key,omitempty"`
}

// Validate rejects requests that cannot be scored.
func (r *AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// RequestFromTicket builds a request from a ticket's own fields.
func RequestFromTicket(t *Ticket, threshold float64, maxResults int) AnalysisRequest {
	return AnalysisRequest{
		Title:            t.Title,
		Description:      t.Description,
		Files:            t.Files,
		ProjectKey:       t.ProjectKey,
		MinimumThreshold: threshold,
		MaxResults:       maxResults,
		ExcludeKey:       t.Key,
	}
}

// SimilarityResult is one ranked match. Produced per ranking call, never persisted.
type SimilarityResult struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Score       float64    `json:"score"`
	Reason      string     `json:"reason"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	Files       []string   `json:"files,omitempty"`
	ExternalRef string     `json:"external_ref,omitempty"`
	URL         string     `json:"url,omitempty"`
}
