package relevance

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"reqmap/internal/config"
	"reqmap/internal/index"
	"reqmap/internal/keywords"
	"reqmap/internal/proposal"
	"reqmap/internal/requirement"
)

// Ranker builds an unconfirmed change proposal from scoring results.
type Ranker struct {
	cfg     config.MappingConfig
	ruleset config.Ruleset
	scorer  *Scorer
}

// NewRanker wires the scorer and limits together.
func NewRanker(cfg config.MappingConfig, ruleset config.Ruleset) *Ranker {
	return &Ranker{
		cfg:     cfg,
		ruleset: ruleset,
		scorer:  NewScorer(ruleset),
	}
}

// maxElementsPerCandidate caps the element detail carried per candidate.
const maxElementsPerCandidate = 10

// Rank extracts keywords, scores the index, and assembles the ranked
// proposal. Candidate order is a pure function of (score desc, path asc)
// so output is deterministic regardless of scoring parallelism.
func (r *Ranker) Rank(ctx context.Context, req *requirement.Requirement, idx *index.CodeIndex) *proposal.Proposal {
	p := proposal.New(req.ID, req.Summary)

	opts := keywords.Options{
		MaxDescriptionChars: r.cfg.MaxDescriptionChars,
		MaxComments:         r.cfg.MaxComments,
		ExtraStopWords:      r.ruleset.ExtraStopWords,
	}
	set := keywords.Extract(req, opts)
	p.Keywords = set.Keywords()

	scores := r.scorer.ScoreAll(ctx, idx, set)
	if len(scores) == 0 {
		p.Notes = buildNotes(req, nil)
		return p
	}

	ranked := make([]*FileScore, 0, len(scores))
	for _, fs := range scores {
		ranked = append(ranked, fs)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > r.cfg.MaxCandidates {
		ranked = ranked[:r.cfg.MaxCandidates]
	}

	clusterOpts := ClusterOptions{
		ProximityLines:  r.ruleset.ProximityLines,
		ContextLines:    r.cfg.ContextLines,
		MaxWindows:      r.cfg.MaxWindowsPerFile,
		MaxSnippetChars: r.cfg.MaxSnippetChars,
	}

	for _, fs := range ranked {
		cand := proposal.Candidate{
			FilePath: fs.Path,
			Score:    fs.Score,
		}

		var rawLines []string
		if f := idx.File(fs.Path); f != nil {
			rawLines = f.RawTextLines
		}
		cand.MatchedLocations = ClusterLocations(rawLines, fs.LineHits, clusterOpts)

		elems := fs.Elements
		if len(elems) > maxElementsPerCandidate {
			elems = elems[:maxElementsPerCandidate]
		}
		for _, e := range elems {
			cand.MatchedElements = append(cand.MatchedElements, proposal.ElementMatch{
				Name:  e.Name,
				Kind:  e.Kind,
				Line:  e.Line,
				Score: e.Score,
			})
		}

		p.Candidates = append(p.Candidates, cand)
	}

	p.Notes = buildNotes(req, configFileHints(req, idx))
	return p
}

// configVocabulary triggers the configuration-change hint.
var configVocabulary = []string{
	"config", "environment", "variable", "property", "setting",
	"database", "connection", "url", "port", "host",
}

// configFileHints returns indexed config-shaped files when the
// requirement text suggests configuration work.
func configFileHints(req *requirement.Requirement, idx *index.CodeIndex) []string {
	text := strings.ToLower(req.Description + " " + strings.Join(req.AcceptanceCriteria, " "))
	hit := false
	for _, v := range configVocabulary {
		if strings.Contains(text, v) {
			hit = true
			break
		}
	}
	if !hit || idx == nil {
		return nil
	}

	var hints []string
	for i := range idx.Files {
		f := &idx.Files[i]
		if isConfigFile(f) {
			hints = append(hints, f.Path)
		}
		if len(hints) >= 5 {
			break
		}
	}
	return hints
}

func isConfigFile(f *index.IndexedFile) bool {
	switch strings.ToLower(path.Ext(f.Path)) {
	case ".yml", ".yaml", ".properties", ".toml", ".ini", ".env":
		return true
	}
	for _, e := range f.Elements {
		if e.Kind == "config-key" {
			return true
		}
	}
	return false
}

// buildNotes derives review guidance from the requirement shape.
func buildNotes(req *requirement.Requirement, configHints []string) []string {
	var notes []string

	switch strings.ToLower(req.Type) {
	case "story", "feature":
		notes = append(notes, "Feature request: consider new files and API endpoints.")
	case "bug":
		notes = append(notes, "Bug fix: focus on modifying existing files rather than creating new ones.")
	case "task", "subtask":
		notes = append(notes, "Task: review all matched files and apply targeted changes.")
	}

	if req.StoryPoints >= 8 {
		notes = append(notes, fmt.Sprintf("High complexity ticket (%d story points): changes may span multiple services.", req.StoryPoints))
	}

	for _, hint := range configHints {
		notes = append(notes, "Requirement may require configuration changes: "+hint)
	}

	return notes
}
