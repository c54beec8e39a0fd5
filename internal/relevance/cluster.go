package relevance

import (
	"sort"
	"strings"

	"reqmap/internal/proposal"
)

// ClusterOptions controls how matched lines merge into windows.
type ClusterOptions struct {
	// ProximityLines merges two matched lines into one window when the
	// gap between them is below this threshold.
	ProximityLines int
	// ContextLines pads each window with surrounding source lines.
	ContextLines int
	// MaxWindows caps the windows reported per file, densest first.
	MaxWindows int
	// MaxSnippetChars truncates the snippet kept per window.
	MaxSnippetChars int
}

// clusterWindow is an intermediate merged hot spot.
type clusterWindow struct {
	start int // 1-indexed matched span
	end   int
	hits  int // total keyword hits inside the span
	kws   map[string]struct{}
}

// ClusterLocations merges keyword-hit lines into non-overlapping windows
// and renders them as matched locations with review snippets. Windows
// are selected by match density, then reported in line order.
func ClusterLocations(rawLines []string, lineHits map[int][]string, opts ClusterOptions) []proposal.MatchedLocation {
	if len(lineHits) == 0 {
		return nil
	}

	matched := make([]int, 0, len(lineHits))
	for line := range lineHits {
		matched = append(matched, line)
	}
	sort.Ints(matched)

	// Greedy merge of near lines into one hot spot.
	var windows []*clusterWindow
	var cur *clusterWindow
	for _, line := range matched {
		if cur != nil && line-cur.end < opts.ProximityLines {
			cur.end = line
		} else {
			cur = &clusterWindow{start: line, end: line, kws: make(map[string]struct{})}
			windows = append(windows, cur)
		}
		cur.hits += len(lineHits[line])
		for _, kw := range lineHits[line] {
			cur.kws[kw] = struct{}{}
		}
	}

	// Densest windows first; ties resolve to the earlier window so the
	// cap is deterministic.
	sort.Slice(windows, func(i, j int) bool {
		di := density(windows[i])
		dj := density(windows[j])
		if di != dj {
			return di > dj
		}
		return windows[i].start < windows[j].start
	})
	if opts.MaxWindows > 0 && len(windows) > opts.MaxWindows {
		windows = windows[:opts.MaxWindows]
	}

	// Report in line order.
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].start < windows[j].start
	})

	locations := make([]proposal.MatchedLocation, 0, len(windows))
	for _, w := range windows {
		start := w.start - opts.ContextLines
		if start < 1 {
			start = 1
		}
		end := w.end + opts.ContextLines
		if len(rawLines) > 0 && end > len(rawLines) {
			end = len(rawLines)
		}

		kws := make([]string, 0, len(w.kws))
		for kw := range w.kws {
			kws = append(kws, kw)
		}
		sort.Strings(kws)

		// When context padding makes two windows collide, merge them
		// rather than shrinking either: clamping could push a window's
		// start past its own matched line, or drop it entirely.
		if n := len(locations); n > 0 && start <= locations[n-1].LineEnd {
			prev := &locations[n-1]
			if end > prev.LineEnd {
				prev.LineEnd = end
			}
			prev.Keywords = mergeKeywords(prev.Keywords, kws)
			prev.Snippet = snippet(rawLines, prev.LineStart, prev.LineEnd, opts.MaxSnippetChars)
			continue
		}

		locations = append(locations, proposal.MatchedLocation{
			LineStart: start,
			LineEnd:   end,
			Snippet:   snippet(rawLines, start, end, opts.MaxSnippetChars),
			Keywords:  kws,
		})
	}
	return locations
}

// mergeKeywords unions two sorted keyword lists, keeping order.
func mergeKeywords(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, kw := range a {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	for _, kw := range b {
		if _, ok := seen[kw]; !ok {
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	sort.Strings(out)
	return out
}

// density is keyword hits per spanned line.
func density(w *clusterWindow) float64 {
	span := w.end - w.start + 1
	return float64(w.hits) / float64(span)
}

func snippet(rawLines []string, start, end, maxChars int) string {
	if len(rawLines) == 0 {
		return ""
	}
	if end > len(rawLines) {
		end = len(rawLines)
	}
	s := strings.Join(rawLines[start-1:end], "\n")
	if maxChars > 0 && len(s) > maxChars {
		s = s[:maxChars]
	}
	return s
}
