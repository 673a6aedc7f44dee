package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Kavirubc/ticket-dedup/pkg/models"
)

// AddLabels adds labels to a ticket
func (c *Client) AddLabels(ctx context.Context, key string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}

	project, number, err := models.ParseKey(key)
	if err != nil {
		return err
	}
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("repos/%s/%s/issues/%d/labels", owner, repo, number)

	payload := map[string][]string{"labels": labels}
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody), nil); err != nil {
		return fmt.Errorf("failed to add labels: %w", err)
	}

	return nil
}
