// Package requirement models the requirement document produced by the
// upstream tracker integration. Requirements are immutable inputs here.
package requirement

import (
	"encoding/json"
	"os"

	rerr "reqmap/internal/errors"
)

// Requirement is a free-text work item to map onto the codebase.
type Requirement struct {
	ID                 string    `json:"id"`
	Type               string    `json:"type,omitempty"` // story, feature, bug, task
	Summary            string    `json:"summary"`
	Description        string    `json:"description,omitempty"`
	AcceptanceCriteria []string  `json:"acceptanceCriteria,omitempty"`
	Labels             []string  `json:"labels,omitempty"`
	Components         []string  `json:"components,omitempty"`
	SubTasks           []SubTask `json:"subTasks,omitempty"`
	Comments           []Comment `json:"comments,omitempty"`
	StoryPoints        int       `json:"storyPoints,omitempty"`
}

// SubTask is a child work item; only its summary feeds keyword extraction.
type SubTask struct {
	Summary string `json:"summary"`
}

// Comment is a discussion excerpt attached to the requirement.
type Comment struct {
	Text string `json:"text"`
}

// Load reads a requirement JSON document from disk.
func Load(path string) (*Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.RequirementInvalid, "failed to read requirement", err)
	}
	return Parse(data)
}

// Parse decodes a requirement JSON document.
func Parse(data []byte) (*Requirement, error) {
	var req Requirement
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, rerr.Wrap(rerr.RequirementInvalid, "failed to parse requirement", err)
	}
	if req.ID == "" {
		return nil, rerr.New(rerr.RequirementInvalid, "requirement is missing an id")
	}
	return &req, nil
}
