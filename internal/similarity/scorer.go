package similarity

import (
	"math"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const (
	wordWeight   = 0.7
	bigramWeight = 0.3

	sameFileNameScore = 0.8
	sharedDirFactor   = 0.5
)

// Weights are the per-field multipliers of the aggregate score. They are
// applied as given; no re-normalization happens if they do not sum to 1.
type Weights struct {
	Title       float64
	Description float64
	FilePath    float64
	Label       float64
}

// DefaultWeights returns the stock weighting.
func DefaultWeights() Weights {
	return Weights{
		Title:       0.4,
		Description: 0.3,
		FilePath:    0.25,
		Label:       0.05,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Title + w.Description + w.FilePath + w.Label
}

// Scorer computes weighted similarity between two tickets.
type Scorer struct {
	weights   Weights
	filePaths bool
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithFilePathMatching toggles the file-path sub-score. When disabled the
// sub-score is always 0.
func WithFilePathMatching(enabled bool) Option {
	return func(s *Scorer) {
		s.filePaths = enabled
	}
}

// NewScorer creates a scorer with the given weights.
func NewScorer(weights Weights, opts ...Option) *Scorer {
	s := &Scorer{weights: weights, filePaths: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights returns the scorer's weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score returns the weighted similarity of a and b, rounded to three
// decimal places.
func (s *Scorer) Score(a, b *models.Ticket) float64 {
	total := TextSimilarity(a.Title, b.Title)*s.weights.Title +
		TextSimilarity(a.Description, b.Description)*s.weights.Description +
		s.FileSimilarity(a.Files, b.Files)*s.weights.FilePath +
		LabelSimilarity(a.Labels, b.Labels)*s.weights.Label

	return round3(total)
}

// FileSimilarity is PathSimilarity, or 0 when file-path matching is off.
func (s *Scorer) FileSimilarity(files1, files2 []string) float64 {
	if !s.filePaths {
		return 0
	}
	return PathSimilarity(files1, files2)
}

// TextSimilarity combines word Jaccard (70%) and bigram Jaccard (30%).
// It is 0 when either text is empty or has no qualifying tokens.
func TextSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}

	words1 := NormalizeText(s1)
	words2 := NormalizeText(s2)
	if len(words1) == 0 || len(words2) == 0 {
		return 0
	}

	wordSim := jaccard(toSet(words1), toSet(words2))
	bigramSim := jaccard(toSet(Bigrams(words1)), toSet(Bigrams(words2)))

	return wordSim*wordWeight + bigramSim*bigramWeight
}

// PathSimilarity scores two lists of affected files. Shared files score by
// overlap ratio; otherwise the best pairwise path score is used.
func PathSimilarity(files1, files2 []string) float64 {
	if len(files1) == 0 || len(files2) == 0 {
		return 0
	}

	set1 := make(map[string]struct{}, len(files1))
	for _, f := range files1 {
		set1[NormalizePath(f)] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(files2))
	for _, f := range files2 {
		set2[NormalizePath(f)] = struct{}{}
	}

	exact := 0
	for f := range set1 {
		if _, ok := set2[f]; ok {
			exact++
		}
	}
	if exact > 0 {
		return math.Min(1.0, float64(exact)/float64(max(len(set1), len(set2))))
	}

	best := 0.0
	for f1 := range set1 {
		for f2 := range set2 {
			best = math.Max(best, pairPathScore(f1, f2))
		}
	}
	return best
}

// pairPathScore compares two normalized paths: 0.8 for the same file name,
// otherwise half the shared-directory ratio.
func pairPathScore(p1, p2 string) float64 {
	parts1 := pathSegments(p1)
	parts2 := pathSegments(p2)
	if len(parts1) == 0 || len(parts2) == 0 {
		return 0
	}

	if parts1[len(parts1)-1] == parts2[len(parts2)-1] {
		return sameFileNameScore
	}

	dirs1 := parts1[:len(parts1)-1]
	dirs2 := parts2[:len(parts2)-1]
	total := max(len(dirs1), len(dirs2))
	if total == 0 {
		return 0
	}

	dirSet2 := toSet(dirs2)
	common := 0
	for d := range toSet(dirs1) {
		if _, ok := dirSet2[d]; ok {
			common++
		}
	}
	return float64(common) / float64(total) * sharedDirFactor
}

// LabelSimilarity is the Jaccard similarity of the lowercased label sets.
func LabelSimilarity(labels1, labels2 []string) float64 {
	if len(labels1) == 0 || len(labels2) == 0 {
		return 0
	}
	return jaccard(lowerSet(labels1), lowerSet(labels2))
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, and 1 when both sets are empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	intersection := 0
	for item := range a {
		if _, ok := b[item]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
