package document

import (
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.|github\.com/)\S+`)

	// filePattern matches bare names and slash or backslash separated paths
	// ending in an extension.
	filePattern = regexp.MustCompile(`(?:[\w.-]+[\\/])*[\w-]+\.[A-Za-z][A-Za-z0-9]{0,9}\b`)

	testCasesPattern = regexp.MustCompile(`(?i)test cases`)
	testCasePattern  = regexp.MustCompile(`(?i)test case`)

	prPattern = regexp.MustCompile(`(?i)(?:https://)?github\.com/[^/\s]+/[^/\s]+/(?:pull|pr)/\d+`)
)

// sourceExtensions are accepted for file names without a directory part.
var sourceExtensions = map[string]bool{
	"c": true, "cc": true, "cpp": true, "cs": true, "css": true, "go": true, "h": true,
	"html": true, "java": true, "js": true, "json": true, "jsx": true, "kt": true,
	"md": true, "php": true, "proto": true, "py": true, "rb": true, "rs": true,
	"scss": true, "sh": true, "sql": true, "swift": true, "toml": true, "ts": true,
	"tsx": true, "vue": true, "xml": true, "yaml": true, "yml": true,
}

// FilePaths returns the file paths mentioned in the document, in first-seen
// order without duplicates. URLs are ignored. A match without a directory
// part counts only when its extension is a known source extension.
func FilePaths(doc *Document) []string {
	if doc == nil {
		return nil
	}
	body := urlPattern.ReplaceAllString(doc.Text, " ")

	var paths []string
	seen := make(map[string]bool)
	for _, match := range filePattern.FindAllString(body, -1) {
		if seen[match] {
			continue
		}
		if !strings.ContainsAny(match, `/\`) {
			ext := match[strings.LastIndex(match, ".")+1:]
			if !sourceExtensions[strings.ToLower(ext)] {
				continue
			}
		}
		seen[match] = true
		paths = append(paths, match)
	}
	return paths
}

// PRLinks returns GitHub pull request URLs from the document links and
// text, always with an https:// scheme, without duplicates.
func PRLinks(doc *Document) []string {
	if doc == nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)
	add := func(s string) {
		for _, match := range prPattern.FindAllString(s, -1) {
			if !strings.HasPrefix(strings.ToLower(match), "https://") {
				match = "https://" + match
			}
			if !seen[match] {
				seen[match] = true
				links = append(links, match)
			}
		}
	}

	for _, link := range doc.Links {
		add(link)
	}
	add(doc.Text)
	return links
}

// TestCases returns the "Test Cases" part of the document: the section
// under a heading naming test cases if there is one, otherwise the text
// from the first "Test Cases" or "Test Case" mention onward.
func TestCases(doc *Document) string {
	if doc == nil {
		return ""
	}

	for _, section := range doc.Sections {
		if strings.Contains(strings.ToLower(section.Heading), "test case") {
			return strings.TrimSpace(section.Heading + "\n" + section.Body)
		}
	}

	loc := testCasesPattern.FindStringIndex(doc.Text)
	if loc == nil {
		loc = testCasePattern.FindStringIndex(doc.Text)
	}
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text[loc[0]:])
}
