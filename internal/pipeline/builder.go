package pipeline

import (
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/steps"
)

// Source is the ticket source surface the pipeline needs.
type Source interface {
	steps.TicketFetcher
	steps.Annotator
}

// Store is the local store surface the pipeline needs.
type Store interface {
	steps.TicketWriter
	steps.RelatedWriter
}

// Builder constructs a pipeline of steps.
type Builder struct {
	source   Source
	store    Store
	analyzer steps.Analyzer
	index    steps.TicketIndexer
	dryRun   bool
}

// NewBuilder creates a new pipeline builder
func NewBuilder(source Source, store Store, analyzer steps.Analyzer, dryRun bool) *Builder {
	return &Builder{
		source:   source,
		store:    store,
		analyzer: analyzer,
		dryRun:   dryRun,
	}
}

// WithIndex makes the persist step also feed the semantic index.
func (b *Builder) WithIndex(index steps.TicketIndexer) *Builder {
	b.index = index
	return b
}

// BuildDefault creates the standard pipeline:
// received -> fetched -> persisted -> ranked -> annotated.
func (b *Builder) BuildDefault() []core.Step {
	return []core.Step{
		steps.NewGatekeeper(),
		steps.NewFetch(b.source),
		steps.NewPersist(b.store, b.index),
		steps.NewRank(b.analyzer),
		steps.NewResponseBuilder(),
		steps.NewAnnotate(b.store, b.source, b.dryRun),
	}
}
