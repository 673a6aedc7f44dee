// Package pipeline runs inbound ticket notifications through the
// fetch, persist, rank and annotate steps.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Kavirubc/ticket-dedup/internal/config"
	"github.com/Kavirubc/ticket-dedup/internal/github"
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/internal/similarity"
)

// Orchestrator handles the complete new-ticket pipeline
type Orchestrator struct {
	cfg    *config.Config
	logger *slog.Logger

	// pipeline is the sequence of steps to execute for new tickets
	pipeline []core.Step
}

// NewOrchestrator creates an orchestrator running pipe.
func NewOrchestrator(cfg *config.Config, pipe []core.Step, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipe,
	}
}

// ProcessEventFile processes a GitHub Action event file. Only an
// unreadable file is an error.
func (o *Orchestrator) ProcessEventFile(ctx context.Context, eventPath string) (*core.Result, error) {
	event, err := github.ParseEventFile(eventPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return o.ProcessEvent(ctx, event), nil
}

// ProcessEvent processes a parsed GitHub issues event
func (o *Orchestrator) ProcessEvent(ctx context.Context, event *github.Event) *core.Result {
	return o.Process(ctx, NotificationFromEvent(event))
}

// NotificationFromEvent maps a GitHub issues event to a notification.
func NotificationFromEvent(event *github.Event) core.Notification {
	return core.Notification{
		Created: event.IsTicketCreated(),
		Action:  event.Action,
		Key:     event.TicketKey(),
		Project: event.ProjectKey(),
	}
}

// Process runs one notification through the pipeline. Failures are
// logged and recorded in the result; steps already completed are not
// rolled back.
func (o *Orchestrator) Process(ctx context.Context, n core.Notification) (result *core.Result) {
	logger := o.logger.With("key", n.Key, "action", n.Action)
	pCtx := &core.Context{
		Ctx:          ctx,
		Notification: n,
		Config:       o.cfg,
		Logger:       logger,
		Result:       &core.Result{Key: n.Key, State: core.StateNone.String()},
	}
	result = pCtx.Result

	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked", "state", pCtx.State.String(), "panic", r)
			result.Failed = true
			result.Error = fmt.Sprint(r)
		}
	}()

	// Execute Steps
	for _, step := range o.pipeline {
		if err := step.Run(pCtx); err != nil {
			if errors.Is(err, core.ErrSkipPipeline) {
				logger.Info("pipeline stopped", "step", step.Name(), "reason", pCtx.SkipReason)
				break
			}
			logger.Error("pipeline step failed", "step", step.Name(), "state", pCtx.State.String(), "error", err)
			result.Failed = true
			result.Error = fmt.Sprintf("step %s failed: %v", step.Name(), err)
			break
		}
	}

	return result
}

// PrintResult writes a human-readable summary of result to w
func PrintResult(w io.Writer, result *core.Result) {
	fmt.Fprintln(w, "\n=== Processing Result ===")
	fmt.Fprintf(w, "Ticket: %s\n", result.Key)
	fmt.Fprintf(w, "State: %s\n", result.State)

	if result.Skipped {
		fmt.Fprintf(w, "Skipped: %s\n", result.SkipReason)
		return
	}
	if result.Failed {
		fmt.Fprintf(w, "Failed: %s\n", result.Error)
	}

	if len(result.Matches) > 0 {
		fmt.Fprintf(w, "Similar Tickets Found: %d\n", len(result.Matches))
		for _, m := range result.Matches {
			fmt.Fprintf(w, "  - %s (%s) %s\n", m.Key, similarity.Percent(m.Score), m.Title)
		}
	} else if result.State == core.StateRanked.String() {
		fmt.Fprintln(w, "Similar Tickets Found: 0")
	}

	if result.CommentPosted {
		fmt.Fprintln(w, "Comment: posted")
	}
	if result.Labeled {
		fmt.Fprintln(w, "Label: added")
	}
	if result.Indexed {
		fmt.Fprintln(w, "Index: updated")
	}
}
