// Package proposal holds the reviewable change proposal: ranked
// candidate files, operator-supplied edit instructions, and the one-way
// Unconfirmed -> Confirmed lifecycle.
package proposal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	rerr "reqmap/internal/errors"
)

// MatchedLocation is a clustered line window where keyword matches are
// dense, with a snippet for human review context.
type MatchedLocation struct {
	LineStart int      `json:"lineStart"`
	LineEnd   int      `json:"lineEnd"`
	Snippet   string   `json:"snippet,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// ElementMatch records one scored code element behind a candidate.
type ElementMatch struct {
	Name  string  `json:"name"`
	Kind  string  `json:"kind"`
	Line  int     `json:"line,omitempty"`
	Score float64 `json:"score"`
}

// Candidate is a file considered relevant to the requirement.
type Candidate struct {
	FilePath         string            `json:"filePath"`
	Score            float64           `json:"score"`
	MatchedLocations []MatchedLocation `json:"matchedLocations,omitempty"`
	MatchedElements  []ElementMatch    `json:"matchedElements,omitempty"`
	SuggestedChanges ChangeSet         `json:"suggestedChanges,omitempty"`
	// Delete requests removal of the file. Mutually exclusive with
	// SuggestedChanges; the applier validates before any write.
	Delete bool `json:"delete,omitempty"`
}

// Proposal is the reviewable mapping output. It is created unconfirmed
// by the ranker, enriched during review, and consumed exactly once by
// the applier after confirmation.
type Proposal struct {
	ProposalID    string      `json:"proposalId"`
	RequirementID string      `json:"requirementId"`
	Summary       string      `json:"summary,omitempty"`
	Keywords      []string    `json:"keywords,omitempty"`
	Candidates    []Candidate `json:"candidates"`
	Notes         []string    `json:"notes,omitempty"`
	Confirmed     bool        `json:"confirmed"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// New creates an unconfirmed proposal.
func New(requirementID, summary string) *Proposal {
	return &Proposal{
		ProposalID:    uuid.New().String(),
		RequirementID: requirementID,
		Summary:       summary,
		CreatedAt:     time.Now().UTC(),
	}
}

// AttachChange appends a suggested change to the candidate at idx
// (0-based). Attachment is legal only while the proposal is unconfirmed.
func (p *Proposal) AttachChange(idx int, change SuggestedChange) error {
	if p.Confirmed {
		return rerr.New(rerr.ProposalInvalid, "cannot attach changes to a confirmed proposal")
	}
	if idx < 0 || idx >= len(p.Candidates) {
		return rerr.Newf(rerr.ProposalInvalid, "candidate index %d out of range [0,%d)", idx, len(p.Candidates))
	}
	p.Candidates[idx].SuggestedChanges = append(p.Candidates[idx].SuggestedChanges, change)
	return nil
}

// MarkDelete flags the candidate at idx for deletion.
func (p *Proposal) MarkDelete(idx int) error {
	if p.Confirmed {
		return rerr.New(rerr.ProposalInvalid, "cannot modify a confirmed proposal")
	}
	if idx < 0 || idx >= len(p.Candidates) {
		return rerr.Newf(rerr.ProposalInvalid, "candidate index %d out of range [0,%d)", idx, len(p.Candidates))
	}
	p.Candidates[idx].Delete = true
	return nil
}

// AddCandidate appends a candidate (e.g. a file to create) while the
// proposal is still unconfirmed.
func (p *Proposal) AddCandidate(c Candidate) error {
	if p.Confirmed {
		return rerr.New(rerr.ProposalInvalid, "cannot add candidates to a confirmed proposal")
	}
	p.Candidates = append(p.Candidates, c)
	return nil
}

// Selection names the candidates a confirmation keeps.
type Selection struct {
	All bool
	// Indices are 0-based candidate positions; ignored when All is set.
	Indices []int
}

// ParseSelection parses the review syntax "all" or "1,3,5" (1-based).
func ParseSelection(s string) (Selection, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return Selection{All: true}, nil
	}

	var sel Selection
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return Selection{}, rerr.Newf(rerr.ProposalInvalid, "invalid selection entry %q", part)
		}
		sel.Indices = append(sel.Indices, n-1)
	}
	if len(sel.Indices) == 0 {
		return Selection{}, rerr.New(rerr.ProposalInvalid, "empty selection")
	}
	return sel, nil
}

// Confirm transitions the proposal to Confirmed, keeping only selected
// candidates. The transition is one-way: re-confirming is an error, and
// dropped candidates are removed, not hidden.
func (p *Proposal) Confirm(sel Selection) error {
	if p.Confirmed {
		return rerr.New(rerr.ProposalInvalid, "proposal is already confirmed")
	}

	if !sel.All {
		keep := make(map[int]struct{}, len(sel.Indices))
		for _, i := range sel.Indices {
			if i < 0 || i >= len(p.Candidates) {
				return rerr.Newf(rerr.ProposalInvalid, "selection index %d out of range [0,%d)", i, len(p.Candidates))
			}
			keep[i] = struct{}{}
		}

		indices := make([]int, 0, len(keep))
		for i := range keep {
			indices = append(indices, i)
		}
		sort.Ints(indices)

		kept := make([]Candidate, 0, len(indices))
		for _, i := range indices {
			kept = append(kept, p.Candidates[i])
		}
		p.Candidates = kept
	}

	p.Confirmed = true
	return nil
}

// Load reads a proposal JSON document from disk.
func Load(path string) (*Proposal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.ProposalInvalid, "failed to read proposal", err)
	}
	var p Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, rerr.Wrap(rerr.ProposalInvalid, "failed to parse proposal", err)
	}
	return &p, nil
}

// Save writes the proposal as pretty-printed JSON, creating parent
// directories as needed.
func (p *Proposal) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return rerr.Wrap(rerr.IOFailure, "failed to create proposal directory", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}
