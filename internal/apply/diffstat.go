package apply

import "strings"

// DiffStat counts touched files and inserted and deleted lines. On a
// per-file stat FilesChanged is 1; run totals accumulate it.
type DiffStat struct {
	FilesChanged int `json:"filesChanged"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

// Add accumulates another stat into d.
func (d *DiffStat) Add(o DiffStat) {
	d.FilesChanged += o.FilesChanged
	d.Insertions += o.Insertions
	d.Deletions += o.Deletions
}

// diffLines compares two snapshots by line multiset. Lines present in
// after but not before count as insertions and vice versa. Moved lines
// therefore cost nothing, which is the right bias for a summary stat.
func diffLines(before, after string) DiffStat {
	counts := make(map[string]int)
	for _, line := range splitLines(before) {
		counts[line]++
	}

	var stat DiffStat
	for _, line := range splitLines(after) {
		if counts[line] > 0 {
			counts[line]--
		} else {
			stat.Insertions++
		}
	}
	for _, remaining := range counts {
		stat.Deletions += remaining
	}
	return stat
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
