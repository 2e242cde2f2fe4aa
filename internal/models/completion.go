package models

import (
	"time"
)

// CompletedProject records that a user finished a catalog project.
// Tags and level are snapshotted at completion time so later catalog
// edits do not retroactively change achievement eligibility.
type CompletedProject struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ProjectID    string    `json:"project_id"`
	Title        string    `json:"title"`
	Level        Level     `json:"level"`
	AppType      string    `json:"app_type,omitempty"`
	Technologies []string  `json:"technologies,omitempty"`
	Frameworks   []string  `json:"frameworks,omitempty"`
	Databases    []string  `json:"databases,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// CombinedTags returns the union of the completion's technology,
// framework and database snapshots
func (c *CompletedProject) CombinedTags() map[string]bool {
	tags := make(map[string]bool, len(c.Technologies)+len(c.Frameworks)+len(c.Databases))
	for _, t := range c.Technologies {
		tags[t] = true
	}
	for _, f := range c.Frameworks {
		tags[f] = true
	}
	for _, d := range c.Databases {
		tags[d] = true
	}
	return tags
}

// CompletionInput is the payload for marking a project completed
type CompletionInput struct {
	ProjectID    string   `json:"project_id" validate:"required"`
	Title        string   `json:"title" validate:"required"`
	Level        string   `json:"level" validate:"required"`
	AppType      string   `json:"app_type,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Frameworks   []string `json:"frameworks,omitempty"`
	Databases    []string `json:"databases,omitempty"`
}
