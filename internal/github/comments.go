package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

const (
	// AnnotationSignature names the tool in the visible comment footer.
	AnnotationSignature = "ticket-dedup"

	// AnnotationMarker is a hidden line at the top of every similar-tickets
	// comment. HasAnnotation matches on it, not on the footer text.
	AnnotationMarker = "<!-- ticket-dedup:similar-tickets -->"
)

// ListComments fetches every comment on an issue, following pagination.
func (c *Client) ListComments(ctx context.Context, project string, number int) ([]Comment, error) {
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return nil, err
	}

	var all []Comment
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments?per_page=%d&page=%d", owner, repo, number, maxPerPage, page)

		var comments []Comment
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		all = append(all, comments...)
		if len(comments) < maxPerPage {
			return all, nil
		}
	}
}

// PostComment adds a comment to an issue
func (c *Client) PostComment(ctx context.Context, project string, number int, body string) error {
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/comments", owner, repo, number)

	payload := map[string]string{"body": body}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return fmt.Errorf("failed to post comment: %w", err)
	}

	return nil
}

// AddAnnotation posts text as a comment on the ticket. Failures are logged
// and reported as false.
func (c *Client) AddAnnotation(ctx context.Context, key, text string) bool {
	project, number, err := models.ParseKey(key)
	if err != nil {
		c.logger.Warn("cannot annotate ticket", "key", key, "error", err)
		return false
	}

	if err := c.PostComment(ctx, project, number, text); err != nil {
		c.logger.Warn("failed to annotate ticket", "key", key, "error", err)
		return false
	}
	return true
}

// HasAnnotation reports whether the ticket already carries a comment
// written by this tool, so redelivered events do not post twice.
func (c *Client) HasAnnotation(ctx context.Context, key string) (bool, error) {
	project, number, err := models.ParseKey(key)
	if err != nil {
		return false, err
	}

	comments, err := c.ListComments(ctx, project, number)
	if err != nil {
		return false, err
	}

	for _, comment := range comments {
		if strings.Contains(comment.Body, AnnotationMarker) {
			return true, nil
		}
	}
	return false, nil
}
