package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ideaforge/idea-engine/internal/catalog"
	"github.com/ideaforge/idea-engine/internal/ledger"
	"github.com/ideaforge/idea-engine/internal/models"
)

// Client is a Go SDK for the idea-engine API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new idea-engine client. The token may be empty
// for guest access to the public catalog endpoints.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is the error payload returned by the server
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Details    string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("API error (HTTP %d): %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IdeaFilters mirror the catalog query parameters
type IdeaFilters struct {
	AppType   string
	Category  string
	Language  string
	Framework string
	Database  string
	Level     string
	EasterEgg bool
	SortBy    string
}

func (f IdeaFilters) encode() string {
	q := url.Values{}
	if f.AppType != "" {
		q.Set("app_type", f.AppType)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Language != "" {
		q.Set("language", f.Language)
	}
	if f.Framework != "" {
		q.Set("framework", f.Framework)
	}
	if f.Database != "" {
		q.Set("database", f.Database)
	}
	if f.Level != "" {
		q.Set("level", f.Level)
	}
	if f.EasterEgg {
		q.Set("easter_egg", "true")
	}
	if f.SortBy != "" {
		q.Set("sort", f.SortBy)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListIdeas retrieves the filtered idea catalog
func (c *Client) ListIdeas(ctx context.Context, filters IdeaFilters) ([]*models.ProjectIdea, error) {
	var result struct {
		Ideas []*models.ProjectIdea `json:"ideas"`
		Total int                   `json:"total"`
	}

	if err := c.doJSON(ctx, "GET", "/api/v1/ideas"+filters.encode(), nil, &result); err != nil {
		return nil, err
	}

	return result.Ideas, nil
}

// IdeaOptions retrieves the valid filter values given the current
// filter selection
func (c *Client) IdeaOptions(ctx context.Context, filters IdeaFilters) (*catalog.Options, error) {
	var result catalog.Options

	if err := c.doJSON(ctx, "GET", "/api/v1/ideas/options"+filters.encode(), nil, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetIdea retrieves a single idea by id
func (c *Client) GetIdea(ctx context.Context, id string) (*models.ProjectIdea, error) {
	var idea models.ProjectIdea

	if err := c.doJSON(ctx, "GET", "/api/v1/ideas/"+url.PathEscape(id), nil, &idea); err != nil {
		return nil, err
	}

	return &idea, nil
}

// ListCompleted retrieves the caller's completed projects
func (c *Client) ListCompleted(ctx context.Context) ([]*models.CompletedProject, error) {
	var result struct {
		Projects []*models.CompletedProject `json:"projects"`
		Total    int                        `json:"total"`
	}

	if err := c.doJSON(ctx, "GET", "/api/v1/projects", nil, &result); err != nil {
		return nil, err
	}

	return result.Projects, nil
}

// CompleteProject marks a project as completed and returns the stored
// record plus any achievements it unlocked
func (c *Client) CompleteProject(ctx context.Context, input models.CompletionInput) (*ledger.MarkResult, error) {
	var result ledger.MarkResult

	if err := c.doJSON(ctx, "POST", "/api/v1/projects", input, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DeleteCompletion removes a completion record by id
func (c *Client) DeleteCompletion(ctx context.Context, id string) error {
	q := url.Values{"id": {id}}
	return c.doJSON(ctx, "DELETE", "/api/v1/projects?"+q.Encode(), nil, nil)
}

// Achievements retrieves the caller's achievement list and standing
func (c *Client) Achievements(ctx context.Context) (*ledger.AchievementView, error) {
	var view ledger.AchievementView

	if err := c.doJSON(ctx, "GET", "/api/v1/achievements", nil, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

// Badges retrieves the caller's earned badges
func (c *Client) Badges(ctx context.Context) ([]*models.EarnedBadge, error) {
	var result struct {
		Badges []*models.EarnedBadge `json:"badges"`
		Total  int                   `json:"total"`
	}

	if err := c.doJSON(ctx, "GET", "/api/v1/badges", nil, &result); err != nil {
		return nil, err
	}

	return result.Badges, nil
}

// Stats retrieves global per-achievement unlock counts
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	var result struct {
		UnlockCounts map[string]int `json:"unlock_counts"`
	}

	if err := c.doJSON(ctx, "GET", "/api/v1/stats", nil, &result); err != nil {
		return nil, err
	}

	return result.UnlockCounts, nil
}

// Profile retrieves the caller's profile, creating it on first access
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile

	if err := c.doJSON(ctx, "GET", "/api/v1/profile", nil, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateProfile applies a partial profile update
func (c *Client) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Profile, error) {
	var profile models.Profile

	if err := c.doJSON(ctx, "PUT", "/api/v1/profile", upd, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "GET", "/health", nil, nil)
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when out is non-nil
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			apiErr.Message = string(respBody)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
