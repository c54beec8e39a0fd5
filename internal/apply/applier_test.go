package apply

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	rerr "reqmap/internal/errors"
	"reqmap/internal/logging"
	"reqmap/internal/proposal"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func confirmedProposal(candidates ...proposal.Candidate) *proposal.Proposal {
	p := proposal.New("PROJ-42", "Add rate limiting")
	p.Candidates = candidates
	p.Confirmed = true
	return p
}

func runOne(t *testing.T, tree WorkTree, c proposal.Candidate) FileResult {
	t.Helper()
	a := NewApplier(tree, testLogger(), 1)
	res, err := a.Run(context.Background(), confirmedProposal(c))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res.Files[0]
}

func TestApplier_UnconfirmedProposalIsFatal(t *testing.T) {
	p := proposal.New("PROJ-1", "x")
	p.Candidates = []proposal.Candidate{{FilePath: "a.go"}}

	a := NewApplier(NewMemWorkTree(nil), testLogger(), 1)
	_, err := a.Run(context.Background(), p)
	if !rerr.IsCode(err, rerr.ProposalNotConfirmed) {
		t.Errorf("error = %v, want PROPOSAL_NOT_CONFIRMED", err)
	}
}

func TestApplier_ReplaceFirstOccurrenceOnly(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"limits.conf": "max = 10\nmax = 10\nmax = 10\n",
	})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "limits.conf",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Replace{OldText: "max = 10", NewText: "max = 100"},
		},
	})

	if fr.Status != StatusApplied || fr.OpsApplied != 1 {
		t.Fatalf("result = %+v", fr)
	}
	want := "max = 100\nmax = 10\nmax = 10\n"
	if got := tree.Content("limits.conf"); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestApplier_ReplaceMissingTargetLeavesFileUntouched(t *testing.T) {
	const original = "alpha\nbeta\n"
	tree := NewMemWorkTree(map[string]string{"a.txt": original})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Replace{OldText: "beta", NewText: "BETA"},
			proposal.Replace{OldText: "gamma", NewText: "GAMMA"},
		},
	})

	if fr.Status != StatusFailed {
		t.Fatalf("status = %q, want failed", fr.Status)
	}
	if fr.ErrorCode != string(rerr.AnchorNotFound) {
		t.Errorf("errorCode = %q, want ANCHOR_NOT_FOUND", fr.ErrorCode)
	}
	if got := tree.Content("a.txt"); got != original {
		t.Errorf("file changed despite failure: %q", got)
	}
}

func TestApplier_InsertAfterSameAnchorTwice(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"svc.go": "package svc\n\nfunc main() {\n}\n",
	})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "svc.go",
		SuggestedChanges: proposal.ChangeSet{
			proposal.InsertAfter{Anchor: proposal.TextMarker("package svc"), NewText: "// first"},
			proposal.InsertAfter{Anchor: proposal.TextMarker("package svc"), NewText: "// second"},
		},
	})

	if fr.Status != StatusApplied || fr.OpsApplied != 2 {
		t.Fatalf("result = %+v", fr)
	}
	// Anchors resolve against the running buffer: the second insert
	// lands directly after the anchor line, above the first insert.
	want := "package svc\n// second\n// first\n\nfunc main() {\n}\n"
	if got := tree.Content("svc.go"); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestApplier_RepeatedReplaceCompoundsOnRunningBuffer(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{"a.txt": "x\n"})

	// Replace targets resolve against the running buffer: the second
	// op matches inside the first one's output when the replacement
	// contains the target, so the edits compound.
	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Replace{OldText: "x", NewText: "x+x"},
			proposal.Replace{OldText: "x", NewText: "x+x"},
		},
	})

	if fr.Status != StatusApplied || fr.OpsApplied != 2 {
		t.Fatalf("result = %+v", fr)
	}
	if got := tree.Content("a.txt"); got != "x+x+x\n" {
		t.Errorf("content = %q, want %q", got, "x+x+x\n")
	}
}

func TestApplier_InsertBeforeLineNumber(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"a.txt": "one\ntwo\nthree\n",
	})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.InsertBefore{Anchor: proposal.LineNumber(2), NewText: "one-and-a-half"},
		},
	})

	if fr.Status != StatusApplied {
		t.Fatalf("result = %+v", fr)
	}
	want := "one\none-and-a-half\ntwo\nthree\n"
	if got := tree.Content("a.txt"); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestApplier_LineNumberTracksRunningBuffer(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"a.txt": "one\ntwo\nthree\n",
	})

	// After the first insert, line 3 is "two", not "three".
	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.InsertAfter{Anchor: proposal.LineNumber(1), NewText: "inserted"},
			proposal.InsertAfter{Anchor: proposal.LineNumber(3), NewText: "after-two"},
		},
	})

	if fr.Status != StatusApplied {
		t.Fatalf("result = %+v", fr)
	}
	want := "one\ninserted\ntwo\nafter-two\nthree\n"
	if got := tree.Content("a.txt"); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestApplier_LineAnchorPastEndOfFile(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{"a.txt": "one\n"})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.InsertAfter{Anchor: proposal.LineNumber(9), NewText: "x"},
		},
	})

	if fr.Status != StatusFailed || fr.ErrorCode != string(rerr.AnchorNotFound) {
		t.Errorf("result = %+v, want ANCHOR_NOT_FOUND failure", fr)
	}
}

func TestApplier_AppendAndFullReplace(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"notes.md": "# Notes\n",
	})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "notes.md",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Append{NewText: "- reviewed"},
		},
	})
	if fr.Status != StatusApplied {
		t.Fatalf("append result = %+v", fr)
	}
	if got := tree.Content("notes.md"); got != "# Notes\n- reviewed\n" {
		t.Errorf("content = %q", got)
	}

	fr = runOne(t, tree, proposal.Candidate{
		FilePath: "notes.md",
		SuggestedChanges: proposal.ChangeSet{
			proposal.FullReplace{NewText: "# Rewritten\n"},
		},
	})
	if fr.Status != StatusApplied {
		t.Fatalf("full replace result = %+v", fr)
	}
	if got := tree.Content("notes.md"); got != "# Rewritten\n" {
		t.Errorf("content = %q", got)
	}
}

func TestApplier_AppendAddsTrailingNewline(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{"a.txt": "a"})

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Append{NewText: "b"},
		},
	})

	if fr.Status != StatusApplied {
		t.Fatalf("result = %+v", fr)
	}
	if got := tree.Content("a.txt"); got != "a\nb\n" {
		t.Errorf("content = %q, want %q", got, "a\nb\n")
	}
}

func TestApplier_FullReplaceCreatesMissingFile(t *testing.T) {
	tree := NewMemWorkTree(nil)

	fr := runOne(t, tree, proposal.Candidate{
		FilePath: "src/New.java",
		SuggestedChanges: proposal.ChangeSet{
			proposal.FullReplace{NewText: "public class New {}\n"},
		},
	})

	if fr.Status != StatusApplied || fr.Action != ActionCreated {
		t.Fatalf("result = %+v", fr)
	}
	if fr.Stat.Insertions != 1 || fr.Stat.Deletions != 0 {
		t.Errorf("stat = %+v", fr.Stat)
	}
	if got := tree.Content("src/New.java"); got != "public class New {}\n" {
		t.Errorf("content = %q", got)
	}
}

func TestApplier_ValidationConflictsAreCheckedBeforeWriting(t *testing.T) {
	tests := []struct {
		name string
		cand proposal.Candidate
	}{
		{
			name: "full replace with sibling op",
			cand: proposal.Candidate{
				FilePath: "a.txt",
				SuggestedChanges: proposal.ChangeSet{
					proposal.FullReplace{NewText: "x"},
					proposal.Append{NewText: "y"},
				},
			},
		},
		{
			name: "delete with changes",
			cand: proposal.Candidate{
				FilePath: "a.txt",
				Delete:   true,
				SuggestedChanges: proposal.ChangeSet{
					proposal.Append{NewText: "y"},
				},
			},
		},
		{
			name: "empty replace target",
			cand: proposal.Candidate{
				FilePath: "a.txt",
				SuggestedChanges: proposal.ChangeSet{
					proposal.Replace{OldText: "", NewText: "y"},
				},
			},
		},
		{
			name: "insert without anchor",
			cand: proposal.Candidate{
				FilePath: "a.txt",
				SuggestedChanges: proposal.ChangeSet{
					proposal.InsertAfter{NewText: "y"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const original = "untouched\n"
			tree := NewMemWorkTree(map[string]string{"a.txt": original})

			fr := runOne(t, tree, tt.cand)
			if fr.Status != StatusFailed || fr.ErrorCode != string(rerr.ValidationConflict) {
				t.Fatalf("result = %+v, want VALIDATION_CONFLICT failure", fr)
			}
			if got := tree.Content("a.txt"); got != original {
				t.Errorf("file changed despite conflict: %q", got)
			}
		})
	}
}

func TestApplier_FailedCandidateDoesNotStopSiblings(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"bad.txt":  "x\n",
		"good.txt": "hello\n",
	})

	p := confirmedProposal(
		proposal.Candidate{
			FilePath: "bad.txt",
			SuggestedChanges: proposal.ChangeSet{
				proposal.FullReplace{NewText: "a"},
				proposal.Append{NewText: "b"},
			},
		},
		proposal.Candidate{
			FilePath: "good.txt",
			SuggestedChanges: proposal.ChangeSet{
				proposal.Replace{OldText: "hello", NewText: "goodbye"},
			},
		},
	)

	a := NewApplier(tree, testLogger(), 2)
	res, err := a.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Failed() != 1 || res.Applied() != 1 {
		t.Fatalf("applied = %d, failed = %d", res.Applied(), res.Failed())
	}
	if got := tree.Content("good.txt"); got != "goodbye\n" {
		t.Errorf("good.txt = %q", got)
	}
	if got := tree.Content("bad.txt"); got != "x\n" {
		t.Errorf("bad.txt = %q", got)
	}
}

func TestApplier_DeleteCandidate(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"legacy.yml": "a: 1\nb: 2\n",
	})

	fr := runOne(t, tree, proposal.Candidate{FilePath: "legacy.yml", Delete: true})

	if fr.Status != StatusApplied || fr.Action != ActionDeleted {
		t.Fatalf("result = %+v", fr)
	}
	if fr.Stat.Deletions != 2 {
		t.Errorf("deletions = %d, want 2", fr.Stat.Deletions)
	}
	if exists, _ := tree.Exists("legacy.yml"); exists {
		t.Error("file still exists")
	}
}

func TestApplier_NoOpCandidateIsSkipped(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{"a.txt": "x\n"})

	fr := runOne(t, tree, proposal.Candidate{FilePath: "a.txt"})
	if fr.Status != StatusSkipped {
		t.Errorf("status = %q, want skipped", fr.Status)
	}
}

func TestApplier_ResultsSortedByPathWithTotals(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{
		"z.txt": "old\n",
		"a.txt": "old\n",
		"m.txt": "old\n",
	})

	candidates := []proposal.Candidate{}
	for _, path := range []string{"z.txt", "a.txt", "m.txt"} {
		candidates = append(candidates, proposal.Candidate{
			FilePath: path,
			SuggestedChanges: proposal.ChangeSet{
				proposal.Replace{OldText: "old", NewText: "new\nsecond"},
			},
		})
	}

	a := NewApplier(tree, testLogger(), 4)
	res, err := a.Run(context.Background(), confirmedProposal(candidates...))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var paths []string
	for _, f := range res.Files {
		paths = append(paths, f.Path)
	}
	if strings.Join(paths, ",") != "a.txt,m.txt,z.txt" {
		t.Errorf("paths = %v", paths)
	}
	if res.Stat.FilesChanged != 3 || res.Stat.Insertions != 6 || res.Stat.Deletions != 3 {
		t.Errorf("stat = %+v", res.Stat)
	}
	if res.RunID == "" {
		t.Error("run id missing")
	}
}

func TestResultJSONCarriesFilesChanged(t *testing.T) {
	tree := NewMemWorkTree(map[string]string{"a.txt": "old\nkeep\n"})

	a := NewApplier(tree, testLogger(), 1)
	res, err := a.Run(context.Background(), confirmedProposal(proposal.Candidate{
		FilePath: "a.txt",
		SuggestedChanges: proposal.ChangeSet{
			proposal.Replace{OldText: "old", NewText: "new"},
		},
	}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"filesChanged":1`) {
		t.Errorf("run stat lacks filesChanged: %s", data)
	}
	if res.Stat.FilesChanged != 1 {
		t.Errorf("FilesChanged = %d, want 1", res.Stat.FilesChanged)
	}
}

func TestDiffLines(t *testing.T) {
	tests := []struct {
		name             string
		before, after    string
		wantIns, wantDel int
	}{
		{"identical", "a\nb\n", "a\nb\n", 0, 0},
		{"pure insert", "a\n", "a\nb\nc\n", 2, 0},
		{"pure delete", "a\nb\nc\n", "a\n", 0, 2},
		{"changed line", "a\nb\n", "a\nB\n", 1, 1},
		{"creation", "", "a\nb\n", 2, 0},
		{"truncation", "a\nb\n", "", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stat := diffLines(tt.before, tt.after)
			if stat.Insertions != tt.wantIns || stat.Deletions != tt.wantDel {
				t.Errorf("stat = %+v, want {%d %d}", stat, tt.wantIns, tt.wantDel)
			}
		})
	}
}
