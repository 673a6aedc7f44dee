package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minTokenLength is the shortest token kept by NormalizeText.
const minTokenLength = 3

// nonWordPattern matches everything that is neither a word character
// (letter, digit, mark, underscore) nor whitespace.
var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\p{M}_\s]`)

// NormalizeText lowercases s, replaces punctuation with spaces and splits
// it into tokens, dropping tokens shorter than three characters. Token
// order is preserved so Bigrams can be built from the result.
func NormalizeText(s string) []string {
	if s == "" {
		return nil
	}

	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, " ")

	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Bigrams returns "tok[i] tok[i+1]" for every adjacent token pair.
func Bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	bigrams := make([]string, 0, len(tokens)-1)
	for i := 0; i < len(tokens)-1; i++ {
		bigrams = append(bigrams, tokens[i]+" "+tokens[i+1])
	}
	return bigrams
}

// NormalizePath converts backslashes to forward slashes and lowercases p.
func NormalizePath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
}

// pathSegments splits a normalized path on "/" dropping empty segments.
func pathSegments(p string) []string {
	parts := strings.Split(p, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
