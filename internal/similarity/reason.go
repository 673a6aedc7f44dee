package similarity

import (
	"fmt"
	"math"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// Reason thresholds. These only decide which clauses are shown and are
// independent of the ranking threshold and the weights.
const (
	titleReasonThreshold       = 0.5
	descriptionReasonThreshold = 0.3
	fileReasonThreshold        = 0.5
)

// MatchReason explains why match was ranked for candidate, e.g.
// "Similar title (80%), Common affected files (100%) (Overall: 65%)".
func (r *Ranker) MatchReason(candidate, match *models.Ticket, overall float64) string {
	var reasons []string

	if sim := TextSimilarity(candidate.Title, match.Title); sim > titleReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar title (%s)", Percent(sim)))
	}
	if sim := TextSimilarity(candidate.Description, match.Description); sim > descriptionReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Similar description (%s)", Percent(sim)))
	}
	if sim := r.scorer.FileSimilarity(candidate.Files, match.Files); sim > fileReasonThreshold {
		reasons = append(reasons, fmt.Sprintf("Common affected files (%s)", Percent(sim)))
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "General similarity")
	}

	return strings.Join(reasons, ", ") + fmt.Sprintf(" (Overall: %s)", Percent(overall))
}

// Percent formats a 0..1 ratio as a whole percentage, rounding halves up.
func Percent(ratio float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(ratio*100)))
}
