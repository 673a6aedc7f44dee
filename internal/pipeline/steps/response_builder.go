package steps

import (
	"fmt"
	"strings"

	"github.com/Kavirubc/ticket-dedup/internal/github"
	"github.com/Kavirubc/ticket-dedup/internal/pipeline/core"
	"github.com/Kavirubc/ticket-dedup/internal/similarity"
	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const dateLayout = "2006-01-02"

// ResponseBuilder renders the ranked matches as an annotation comment.
type ResponseBuilder struct{}

// NewResponseBuilder creates a new response builder step
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

func (s *ResponseBuilder) Name() string {
	return "response_builder"
}

func (s *ResponseBuilder) Run(ctx *core.Context) error {
	analysis := ctx.Config.Analysis
	ctx.CommentBody = FormatComment(ctx.Matches, analysis.CommentTopMatches, analysis.CommentMaxFiles)
	return nil
}

// FormatComment lists up to topN matches with at most maxFiles affected
// files each. No matches renders as "".
func FormatComment(matches []models.SimilarityResult, topN, maxFiles int) string {
	if len(matches) == 0 {
		return ""
	}
	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}

	var sb strings.Builder
	sb.WriteString(github.AnnotationMarker + "\n")
	sb.WriteString("## 🔍 Similar Tickets Found\n\n")
	sb.WriteString("The following tickets might be related to this issue:\n\n")

	for _, m := range matches {
		fmt.Fprintf(&sb, "- **%s** - %s\n", m.Key, m.Title)
		fmt.Fprintf(&sb, "  Similarity: %s (%s)\n", similarity.Percent(m.Score), m.Reason)
		fmt.Fprintf(&sb, "  Created: %s", m.CreatedAt.Format(dateLayout))
		if m.ResolvedAt != nil {
			fmt.Fprintf(&sb, " | Resolved: %s", m.ResolvedAt.Format(dateLayout))
		} else {
			fmt.Fprintf(&sb, " | Status: %s", m.Status)
		}

		if m.ExternalRef != "" {
			fmt.Fprintf(&sb, "\n  PR: %s", m.ExternalRef)
		}
		if len(m.Files) > 0 {
			sb.WriteString("\n  Files: " + formatFiles(m.Files, maxFiles))
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "<sub>🤖 Generated automatically by %s</sub>", github.AnnotationSignature)
	return sb.String()
}

func formatFiles(files []string, maxFiles int) string {
	if maxFiles <= 0 || len(files) <= maxFiles {
		return strings.Join(files, ", ")
	}
	return fmt.Sprintf("%s (and %d more)", strings.Join(files[:maxFiles], ", "), len(files)-maxFiles)
}
