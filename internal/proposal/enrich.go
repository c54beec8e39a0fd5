package proposal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	rerr "reqmap/internal/errors"
)

// Enrichment is a reviewer-authored file attaching suggested changes to
// proposal candidates by path. YAML is the authoring format because edit
// text is usually multiline.
type Enrichment struct {
	Files []EnrichmentFile `yaml:"files"`
}

// EnrichmentFile carries the changes for one candidate path.
type EnrichmentFile struct {
	Path    string             `yaml:"path"`
	Delete  bool               `yaml:"delete,omitempty"`
	Changes []EnrichmentChange `yaml:"changes,omitempty"`
}

// EnrichmentChange is the YAML shape of one suggested change.
type EnrichmentChange struct {
	Type       ChangeType `yaml:"type"`
	OldText    string     `yaml:"old_text,omitempty"`
	NewText    string     `yaml:"new_text,omitempty"`
	AnchorLine *int       `yaml:"anchor_line,omitempty"`
	AnchorText *string    `yaml:"anchor_text,omitempty"`
}

// LoadEnrichment parses a YAML enrichment file.
func LoadEnrichment(path string) (*Enrichment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.Wrap(rerr.ProposalInvalid, "failed to read enrichment", err)
	}

	var e Enrichment
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, rerr.Wrap(rerr.ProposalInvalid, "failed to parse enrichment", err)
	}
	return &e, nil
}

func (ec EnrichmentChange) toChange() (SuggestedChange, error) {
	anchor := func() (Anchor, error) {
		switch {
		case ec.AnchorLine != nil && ec.AnchorText != nil:
			return nil, fmt.Errorf("%s: anchor_line and anchor_text are mutually exclusive", ec.Type)
		case ec.AnchorLine != nil:
			return LineNumber(*ec.AnchorLine), nil
		case ec.AnchorText != nil:
			return TextMarker(*ec.AnchorText), nil
		default:
			return nil, fmt.Errorf("%s: missing anchor_line or anchor_text", ec.Type)
		}
	}

	switch ec.Type {
	case ChangeReplace:
		return Replace{OldText: ec.OldText, NewText: ec.NewText}, nil
	case ChangeInsertAfter:
		a, err := anchor()
		if err != nil {
			return nil, err
		}
		return InsertAfter{Anchor: a, NewText: ec.NewText}, nil
	case ChangeInsertBefore:
		a, err := anchor()
		if err != nil {
			return nil, err
		}
		return InsertBefore{Anchor: a, NewText: ec.NewText}, nil
	case ChangeAppend:
		return Append{NewText: ec.NewText}, nil
	case ChangeFullReplace:
		return FullReplace{NewText: ec.NewText}, nil
	default:
		return nil, fmt.Errorf("unknown change type %q", ec.Type)
	}
}

// Merge attaches the enrichment's changes to matching candidates. Paths
// with no matching candidate are added as new candidates (file creation).
// Merging into a confirmed proposal is rejected.
func (p *Proposal) Merge(e *Enrichment) error {
	if p.Confirmed {
		return rerr.New(rerr.ProposalInvalid, "cannot enrich a confirmed proposal")
	}

	byPath := make(map[string]int, len(p.Candidates))
	for i := range p.Candidates {
		byPath[p.Candidates[i].FilePath] = i
	}

	for _, ef := range e.Files {
		idx, ok := byPath[ef.Path]
		if !ok {
			p.Candidates = append(p.Candidates, Candidate{FilePath: ef.Path})
			idx = len(p.Candidates) - 1
			byPath[ef.Path] = idx
		}

		cand := &p.Candidates[idx]
		if ef.Delete {
			cand.Delete = true
		}
		for _, ec := range ef.Changes {
			change, err := ec.toChange()
			if err != nil {
				return rerr.Wrap(rerr.ProposalInvalid, "invalid enrichment for "+ef.Path, err)
			}
			cand.SuggestedChanges = append(cand.SuggestedChanges, change)
		}
	}
	return nil
}
