// Package github is the ticket source backed by GitHub Issues. A ticket key
// is "owner/repo#number" and a project key is "owner/repo".
package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when GitHub answers 404.
var ErrNotFound = errors.New("not found")

const defaultRequestsPerSecond = 10

// restClient is the part of api.RESTClient the client uses.
type restClient interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response interface{}) error
}

// Options configures a Client.
type Options struct {
	// Token overrides the token go-gh resolves from GH_TOKEN, GITHUB_TOKEN
	// or the gh CLI configuration.
	Token string

	// Host is the GitHub host, github.com when empty.
	Host string

	// RequestsPerSecond caps the request rate. Defaults to 10.
	RequestsPerSecond float64

	Logger *slog.Logger
}

// Client wraps GitHub API operations
type Client struct {
	rest    restClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a new GitHub client
func NewClient(opts Options) (*Client, error) {
	rest, err := api.NewRESTClient(api.ClientOptions{
		AuthToken: opts.Token,
		Host:      opts.Host,
		Timeout:   30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create REST client: %w", err)
	}

	return newClient(rest, opts.RequestsPerSecond, opts.Logger), nil
}

func newClient(rest restClient, rps float64, logger *slog.Logger) *Client {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		rest:    rest,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}
}

// Close releases resources
func (c *Client) Close() error {
	return nil
}

// do issues one rate-limited request. A 404 is reported as ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, response interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	c.logger.Debug("github request", "method", method, "path", path)
	err := c.rest.DoWithContext(ctx, method, path, body, response)
	if err == nil {
		return nil
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return err
}

// ParseRepo splits "owner/repo" into owner and repo
func ParseRepo(fullRepo string) (string, string, error) {
	parts := strings.Split(fullRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", fullRepo)
	}
	return parts[0], parts[1], nil
}

// Issue represents a GitHub issue from the API
type Issue struct {
	Number        int        `json:"number"`
	Title         string     `json:"title"`
	Body          string     `json:"body"`
	State         string     `json:"state"`
	StateReason   string     `json:"state_reason"`
	HTMLURL       string     `json:"html_url"`
	RepositoryURL string     `json:"repository_url"`
	User          User       `json:"user"`
	Assignee      *User      `json:"assignee"`
	Labels        []Label    `json:"labels"`
	PullRequest   *struct{}  `json:"pull_request"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

// User represents a GitHub user
type User struct {
	Login string `json:"login"`
}

// Label represents a GitHub label
type Label struct {
	Name string `json:"name"`
}

// Comment represents a GitHub comment
type Comment struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// isPullRequest reports whether the issues endpoint returned a pull
// request, which GitHub models as an issue with a pull_request object.
func (i *Issue) isPullRequest() bool {
	return i.PullRequest != nil
}

// RepoExists checks if a repository exists
func (c *Client) RepoExists(ctx context.Context, project string) (bool, error) {
	owner, repo, err := ParseRepo(project)
	if err != nil {
		return false, err
	}

	var result struct{}
	err = c.do(ctx, http.MethodGet, fmt.Sprintf("repos/%s/%s", owner, repo), nil, &result)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
