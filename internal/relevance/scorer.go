// Package relevance scores indexed code elements and files against a
// keyword set, clusters matched lines into reviewable windows, and ranks
// candidates into a change proposal.
//
// The scoring model is deliberately lexical: an additive rule table that
// is linear in index size, fully deterministic, and explainable: every
// point a file earns is traceable to one rule firing.
package relevance

import (
	"context"
	"sort"
	"strings"
	"sync"

	"reqmap/internal/config"
	"reqmap/internal/index"
	"reqmap/internal/keywords"
)

// Scorer accumulates rule-table points per file.
type Scorer struct {
	ruleset config.Ruleset
	// Workers bounds the scoring pool; <= 1 means sequential.
	Workers int
}

// NewScorer creates a scorer with the given ruleset.
func NewScorer(ruleset config.Ruleset) *Scorer {
	return &Scorer{ruleset: ruleset, Workers: 4}
}

// FileScore is the scoring detail for one file.
type FileScore struct {
	Path  string
	Score float64
	// Elements holds the scored element matches, highest first.
	Elements []ElementScore
	// LineHits maps 1-indexed line numbers to the keywords found there,
	// feeding window clustering.
	LineHits map[int][]string
}

// ElementScore is one element's contribution.
type ElementScore struct {
	Name  string
	Kind  string
	Line  int
	Score float64
}

// ScoreAll scores every indexed file against the keyword set and returns
// per-file results keyed by path. Files scoring zero are excluded
// entirely. Scoring runs file-parallel; results merge through a single
// reduction so the output is independent of scheduling.
func (s *Scorer) ScoreAll(ctx context.Context, idx *index.CodeIndex, set *keywords.Set) map[string]*FileScore {
	kws := set.Keywords()
	out := make(map[string]*FileScore)
	if len(kws) == 0 || idx == nil || len(idx.Files) == 0 {
		return out
	}

	workers := s.Workers
	if workers <= 1 {
		for i := range idx.Files {
			if fs := s.scoreFile(&idx.Files[i], kws); fs != nil {
				out[fs.Path] = fs
			}
		}
		return out
	}

	jobs := make(chan *index.IndexedFile)
	results := make(chan *FileScore)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				if fs := s.scoreFile(f, kws); fs != nil {
					results <- fs
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range idx.Files {
			select {
			case jobs <- &idx.Files[i]:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single reduction; the map is never mutated concurrently.
	for fs := range results {
		out[fs.Path] = fs
	}
	return out
}

// scoreFile applies the rule table to one file. Returns nil when the
// file scores zero.
func (s *Scorer) scoreFile(f *index.IndexedFile, kws []string) *FileScore {
	fs := &FileScore{Path: f.Path, LineHits: make(map[int][]string)}
	w := s.ruleset.Weights

	// nameHits counts, per line, how many element-name matches involved
	// each keyword. Full-text occurrences already attributed to an
	// element-name match on that line are not double counted.
	nameHits := make(map[int]map[string]int)

	for _, e := range f.Elements {
		nameLower := strings.ToLower(e.Name)
		parts := keywords.SubTokens(e.Name)

		var elemScore float64
		for _, kw := range kws {
			switch {
			case kw == nameLower:
				elemScore += w.Exact
			case strings.Contains(nameLower, kw):
				elemScore += w.Substring
			case matchesWordPart(parts, kw):
				elemScore += w.WordPart
			default:
				continue
			}
			if e.Line > 0 {
				if nameHits[e.Line] == nil {
					nameHits[e.Line] = make(map[string]int)
				}
				nameHits[e.Line][kw]++
			}
		}

		if elemScore > 0 {
			fs.Elements = append(fs.Elements, ElementScore{
				Name:  e.Name,
				Kind:  e.Kind,
				Line:  e.Line,
				Score: elemScore,
			})
			fs.Score += elemScore
		}
	}

	// Full-text frequency scan over raw lines.
	for i, line := range f.RawTextLines {
		lineNo := i + 1
		lineLower := strings.ToLower(line)
		for _, kw := range kws {
			count := strings.Count(lineLower, kw)
			if count == 0 {
				continue
			}
			fs.LineHits[lineNo] = append(fs.LineHits[lineNo], kw)

			if hits := nameHits[lineNo][kw]; hits > 0 {
				if count > hits {
					count -= hits
				} else {
					count = 0
				}
			}
			fs.Score += float64(count) * w.FullText
		}
	}

	if fs.Score <= 0 {
		return nil
	}

	sort.Slice(fs.Elements, func(i, j int) bool {
		if fs.Elements[i].Score != fs.Elements[j].Score {
			return fs.Elements[i].Score > fs.Elements[j].Score
		}
		if fs.Elements[i].Line != fs.Elements[j].Line {
			return fs.Elements[i].Line < fs.Elements[j].Line
		}
		return fs.Elements[i].Name < fs.Elements[j].Name
	})
	return fs
}

// matchesWordPart reports whether kw matches one of the element name's
// sub-tokens. Plural and derived forms count ("payments" matches the
// sub-token "payment"), so containment in either direction is accepted
// for sub-tokens of three characters or more; shorter sub-tokens must
// match exactly to avoid trivial hits.
func matchesWordPart(parts []string, kw string) bool {
	for _, p := range parts {
		if p == kw {
			return true
		}
		if len(p) >= 3 && len(kw) >= 3 && (strings.Contains(p, kw) || strings.Contains(kw, p)) {
			return true
		}
	}
	return false
}
