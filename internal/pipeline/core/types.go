package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/config"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// ErrSkipPipeline indicates that the rest of the pipeline should be skipped purely for logic reasons
// (e.g. not a creation event, ticket unavailable). It is not an error condition.
var ErrSkipPipeline = errors.New("skip pipeline")

// State is how far a ticket got through the pipeline.
type State int

const (
	StateNone State = iota
	StateReceived
	StateFetched
	StatePersisted
	StateRanked
	StateAnnotated
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateFetched:
		return "fetched"
	case StatePersisted:
		return "persisted"
	case StateRanked:
		return "ranked"
	case StateAnnotated:
		return "annotated"
	default:
		return "none"
	}
}

// Notification is an inbound event about one ticket.
type Notification struct {
	// Created is set when the event announces a new ticket.
	Created bool   `json:"created"`
	Action  string `json:"action"`
	Key     string `json:"key"`
	Project string `json:"project"`
}

// Result contains the outcome of processing one notification
type Result struct {
	Key           string                    `json:"key"`
	State         string                    `json:"state"`
	Skipped       bool                      `json:"skipped,omitempty"`
	SkipReason    string                    `json:"skip_reason,omitempty"`
	Failed        bool                      `json:"failed,omitempty"`
	Error         string                    `json:"error,omitempty"`
	Persisted     bool                      `json:"persisted,omitempty"`
	Matches       []models.SimilarityResult `json:"matches,omitempty"`
	RelatedSaved  bool                      `json:"related_saved,omitempty"`
	CommentPosted bool                      `json:"comment_posted,omitempty"`
	Labeled       bool                      `json:"labeled,omitempty"`
	Indexed       bool                      `json:"indexed,omitempty"`
}

// Context carries state through the pipeline steps.
// Steps read and write fields directly.
type Context struct {
	// Base Inputs
	Ctx          context.Context
	Notification Notification
	Config       *config.Config
	Logger       *slog.Logger

	// Mutable State
	State State

	// Ticket is the fetched (then persisted) record
	Ticket *models.Ticket

	// Matches holds the ranked similar tickets
	Matches []models.SimilarityResult

	// CommentBody holds the generated annotation text (if any)
	CommentBody string

	// Result accumulates the final output structure
	Result *Result

	// SkipReason is set when ErrSkipPipeline is returned to explain why
	SkipReason string
}

// Advance records that the pipeline reached s.
func (c *Context) Advance(s State) {
	c.State = s
	c.Result.State = s.String()
}

// Skip records reason and returns ErrSkipPipeline.
func (c *Context) Skip(reason string) error {
	c.SkipReason = reason
	c.Result.Skipped = true
	c.Result.SkipReason = reason
	return ErrSkipPipeline
}

// Step defines a single unit of work in the pipeline.
type Step interface {
	// Name returns the unique identifier for this step (used in logs)
	Name() string
	// Run executes the step logic.
	// Returning ErrSkipPipeline gracefully stops execution.
	// Returning any other error halts execution and is treated as a failure.
	Run(ctx *Context) error
}
