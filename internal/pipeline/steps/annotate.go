package steps

import (
	"context"
	"fmt"

	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
)

// RelatedWriter records related ticket keys on a stored ticket.
type RelatedWriter interface {
	SetRelatedTickets(ctx context.Context, key string, related []string) error
}

// Annotator writes to the ticket at its source.
type Annotator interface {
	HasAnnotation(ctx context.Context, key string) (bool, error)
	AddAnnotation(ctx context.Context, key, text string) bool
	AddLabels(ctx context.Context, key string, labels []string) error
}

// Annotate records the matches on the stored ticket and posts the comment
// built by ResponseBuilder. Without matches it does nothing.
type Annotate struct {
	store     RelatedWriter
	annotator Annotator
	dryRun    bool
}

// NewAnnotate creates a new annotate step. With dryRun set nothing is
// written to the ticket source.
func NewAnnotate(store RelatedWriter, annotator Annotator, dryRun bool) *Annotate {
	return &Annotate{
		store:     store,
		annotator: annotator,
		dryRun:    dryRun,
	}
}

func (s *Annotate) Name() string {
	return "annotate"
}

func (s *Annotate) Run(ctx *core.Context) error {
	if len(ctx.Matches) == 0 {
		return nil
	}
	key := ctx.Ticket.Key

	related := make([]string, len(ctx.Matches))
	for i, m := range ctx.Matches {
		related[i] = m.Key
	}
	if err := s.store.SetRelatedTickets(ctx.Ctx, key, related); err != nil {
		return fmt.Errorf("failed to save related tickets for %s: %w", key, err)
	}
	ctx.Result.RelatedSaved = true

	if s.dryRun {
		ctx.Logger.Info("dry run, skipping annotation", "key", key)
		ctx.Advance(core.StateAnnotated)
		return nil
	}

	s.comment(ctx, key)
	s.label(ctx, key)

	ctx.Advance(core.StateAnnotated)
	return nil
}

func (s *Annotate) comment(ctx *core.Context, key string) {
	if ctx.CommentBody == "" {
		return
	}

	// Redelivered events must not post twice.
	exists, err := s.annotator.HasAnnotation(ctx.Ctx, key)
	if err != nil {
		ctx.Logger.Warn("could not check existing annotations", "key", key, "error", err)
	}
	if exists {
		ctx.Logger.Info("ticket already annotated", "key", key)
		return
	}

	ctx.Result.CommentPosted = s.annotator.AddAnnotation(ctx.Ctx, key, ctx.CommentBody)
}

func (s *Annotate) label(ctx *core.Context, key string) {
	label := ctx.Config.Analysis.DuplicateLabel
	if label == "" {
		return
	}
	if err := s.annotator.AddLabels(ctx.Ctx, key, []string{label}); err != nil {
		ctx.Logger.Warn("failed to add duplicate label", "key", key, "label", label, "error", err)
		return
	}
	ctx.Result.Labeled = true
}

