// Package keywords turns a requirement's free text into a normalized,
// de-duplicated set of search terms for relevance scoring.
package keywords

import (
	"regexp"
	"sort"
	"strings"

	"reqmap/internal/requirement"
)

// minTokenLen is the shortest token kept as a keyword.
const minTokenLen = 2

var tokenPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9]*`)

// Options controls extraction limits and stop-word extensions.
type Options struct {
	// MaxDescriptionChars truncates the description before tokenizing (0 = no limit)
	MaxDescriptionChars int
	// MaxComments limits how many comments feed the text pool (0 = no limit)
	MaxComments int
	// ExtraStopWords extends the built-in stop-word list
	ExtraStopWords []string
}

// DefaultOptions mirror the proposal-generation defaults.
func DefaultOptions() Options {
	return Options{
		MaxDescriptionChars: 3000,
		MaxComments:         5,
	}
}

// Set holds extracted keywords. Original undecomposed tokens are kept
// separately from the sub-tokens their decomposition produced; the scorer
// consumes the union.
type Set struct {
	originals map[string]struct{}
	subTokens map[string]struct{}
}

// NewSet returns an empty keyword set.
func NewSet() *Set {
	return &Set{
		originals: make(map[string]struct{}),
		subTokens: make(map[string]struct{}),
	}
}

// Len returns the number of distinct keywords in the set.
func (s *Set) Len() int {
	n := len(s.originals)
	for k := range s.subTokens {
		if _, ok := s.originals[k]; !ok {
			n++
		}
	}
	return n
}

// Contains reports whether kw is in the set (original or sub-token).
func (s *Set) Contains(kw string) bool {
	if _, ok := s.originals[kw]; ok {
		return true
	}
	_, ok := s.subTokens[kw]
	return ok
}

// Keywords returns the union of originals and sub-tokens, sorted.
// Downstream code must not depend on map iteration order, so every
// traversal goes through this sorted view.
func (s *Set) Keywords() []string {
	seen := make(map[string]struct{}, len(s.originals)+len(s.subTokens))
	out := make([]string, 0, len(s.originals)+len(s.subTokens))
	for k := range s.originals {
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for k := range s.subTokens {
		if _, ok := seen[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Originals returns only the undecomposed tokens, sorted.
func (s *Set) Originals() []string {
	out := make([]string, 0, len(s.originals))
	for k := range s.originals {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Extract builds the keyword set from every free-text field of a
// requirement. An empty requirement yields an empty set, not an error.
func Extract(req *requirement.Requirement, opts Options) *Set {
	set := NewSet()
	if req == nil {
		return set
	}

	extra := make(map[string]struct{}, len(opts.ExtraStopWords))
	for _, w := range opts.ExtraStopWords {
		extra[strings.ToLower(w)] = struct{}{}
	}

	keep := func(tok string) bool {
		if len(tok) < minTokenLen {
			return false
		}
		if IsStopWord(tok) {
			return false
		}
		_, drop := extra[tok]
		return !drop
	}

	addText := func(text string) {
		for _, raw := range tokenPattern.FindAllString(text, -1) {
			tok := strings.ToLower(raw)
			if keep(tok) {
				set.originals[tok] = struct{}{}
			}
			for _, part := range SubTokens(raw) {
				if part != tok && keep(part) {
					set.subTokens[part] = struct{}{}
				}
			}
		}
	}

	addText(req.Summary)

	desc := req.Description
	if opts.MaxDescriptionChars > 0 && len(desc) > opts.MaxDescriptionChars {
		desc = desc[:opts.MaxDescriptionChars]
	}
	addText(desc)

	for _, ac := range req.AcceptanceCriteria {
		addText(ac)
	}
	for _, label := range req.Labels {
		addText(label)
	}
	for _, comp := range req.Components {
		addText(comp)
	}
	for _, st := range req.SubTasks {
		addText(st.Summary)
	}

	comments := req.Comments
	if opts.MaxComments > 0 && len(comments) > opts.MaxComments {
		comments = comments[:opts.MaxComments]
	}
	for _, c := range comments {
		addText(c.Text)
	}

	// Labels and components are exact terms; keep the whole lower-cased
	// string too (may be multi-word).
	for _, term := range append(append([]string{}, req.Labels...), req.Components...) {
		lower := strings.ToLower(strings.TrimSpace(term))
		if len(lower) >= minTokenLen && !IsStopWord(lower) {
			set.originals[lower] = struct{}{}
		}
	}

	return set
}
