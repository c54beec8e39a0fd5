package main

import (
	"strings"
	"testing"

	"reqmap/internal/apply"
	"reqmap/internal/proposal"
	"reqmap/internal/testutil"
)

func TestFormatResponse_JSON(t *testing.T) {
	out, err := FormatResponse(&IndexStatsCLI{Path: "idx.json", Files: 2, Elements: 9}, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	if !strings.Contains(out, `"files": 2`) {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestFormatResponse_UnsupportedFormat(t *testing.T) {
	if _, err := FormatResponse(struct{}{}, OutputFormat("yaml")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatProposalHuman(t *testing.T) {
	p := proposal.New("PROJ-42", "Add rate limiting to payments API")
	p.Keywords = []string{"add", "api", "limiting", "payments", "rate"}
	p.Candidates = []proposal.Candidate{
		{
			FilePath: "src/main/java/PaymentsController.java",
			Score:    15.5,
			MatchedElements: []proposal.ElementMatch{
				{Name: "RateLimiter", Kind: "class", Line: 3, Score: 10},
			},
			MatchedLocations: []proposal.MatchedLocation{
				{LineStart: 1, LineEnd: 9, Keywords: []string{"limiting", "rate"}},
			},
			SuggestedChanges: proposal.ChangeSet{
				proposal.Replace{OldText: "maxRequests = 10", NewText: "maxRequests = 100"},
			},
		},
		{FilePath: "config/app.yml", Score: 2, Delete: true},
	}
	p.Notes = []string{"Ticket mentions configuration; check config/app.yml"}

	out, err := FormatResponse(p, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	testutil.CompareGolden(t, "proposal_human", out)
}

func TestFormatApplyHuman(t *testing.T) {
	r := &apply.Result{
		RunID:      "6f1e0a3c-2b5d-4a7e-9c8f-0d1b2a3c4d5e",
		BranchName: "feature/PROJ-42-add-rate-limiting-to-payments-api",
		Files: []apply.FileResult{
			{Path: "config/app.yml", Status: apply.StatusApplied, Action: apply.ActionModified, OpsApplied: 1, Stat: apply.DiffStat{Deletions: 2}},
			{Path: "docs/notes.md", Status: apply.StatusSkipped},
			{Path: "src/Main.java", Status: apply.StatusFailed, Error: `replace target "gone" not found`, ErrorCode: "ANCHOR_NOT_FOUND"},
		},
		Stat: apply.DiffStat{Deletions: 2},
	}

	out, err := FormatResponse(r, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse failed: %v", err)
	}
	testutil.CompareGolden(t, "apply_human", out)
}
