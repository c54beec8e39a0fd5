package proposal

import (
	"path/filepath"
	"reflect"
	"testing"

	rerr "reqmap/internal/errors"
)

func sampleProposal() *Proposal {
	p := New("PROJ-42", "Add rate limiting to payments API")
	p.Candidates = []Candidate{
		{FilePath: "src/RateLimiter.java", Score: 15},
		{FilePath: "src/PaymentsController.java", Score: 8},
		{FilePath: "config/app.yml", Score: 2},
	}
	return p
}

func TestNewIsUnconfirmed(t *testing.T) {
	p := New("PROJ-1", "summary")
	if p.Confirmed {
		t.Error("new proposal must be unconfirmed")
	}
	if p.ProposalID == "" {
		t.Error("proposal id missing")
	}
}

func TestAttachChange(t *testing.T) {
	p := sampleProposal()

	if err := p.AttachChange(0, Replace{OldText: "old", NewText: "new"}); err != nil {
		t.Fatalf("AttachChange failed: %v", err)
	}
	if len(p.Candidates[0].SuggestedChanges) != 1 {
		t.Fatal("change not attached")
	}

	if err := p.AttachChange(7, Append{NewText: "x"}); !rerr.IsCode(err, rerr.ProposalInvalid) {
		t.Errorf("out-of-range attach error = %v, want PROPOSAL_INVALID", err)
	}
}

func TestAttachChangeAfterConfirmRejected(t *testing.T) {
	p := sampleProposal()
	if err := p.Confirm(Selection{All: true}); err != nil {
		t.Fatal(err)
	}

	err := p.AttachChange(0, Append{NewText: "x"})
	if !rerr.IsCode(err, rerr.ProposalInvalid) {
		t.Errorf("error = %v, want PROPOSAL_INVALID", err)
	}
}

func TestConfirmSubsetDropsOthers(t *testing.T) {
	p := sampleProposal()

	sel, err := ParseSelection("1,3")
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Confirm(sel); err != nil {
		t.Fatal(err)
	}

	if !p.Confirmed {
		t.Error("proposal should be confirmed")
	}
	got := []string{}
	for _, c := range p.Candidates {
		got = append(got, c.FilePath)
	}
	want := []string{"src/RateLimiter.java", "config/app.yml"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("kept candidates = %v, want %v", got, want)
	}
}

func TestConfirmIsOneWay(t *testing.T) {
	p := sampleProposal()
	if err := p.Confirm(Selection{All: true}); err != nil {
		t.Fatal(err)
	}

	if err := p.Confirm(Selection{All: true}); !rerr.IsCode(err, rerr.ProposalInvalid) {
		t.Errorf("re-confirm error = %v, want PROPOSAL_INVALID", err)
	}
}

func TestConfirmAllKeepsEverything(t *testing.T) {
	p := sampleProposal()
	if err := p.Confirm(Selection{All: true}); err != nil {
		t.Fatal(err)
	}
	if len(p.Candidates) != 3 {
		t.Errorf("candidates = %d, want 3", len(p.Candidates))
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		wantAll bool
		want    []int
		wantErr bool
	}{
		{"all", true, nil, false},
		{"ALL", true, nil, false},
		{"1,3,5", false, []int{0, 2, 4}, false},
		{" 2 , 4 ", false, []int{1, 3}, false},
		{"0", false, nil, true},
		{"x", false, nil, true},
		{"", false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel, err := ParseSelection(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if sel.All != tt.wantAll {
				t.Errorf("All = %v, want %v", sel.All, tt.wantAll)
			}
			if !tt.wantAll && !reflect.DeepEqual(sel.Indices, tt.want) {
				t.Errorf("Indices = %v, want %v", sel.Indices, tt.want)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "change_proposal.json")

	p := sampleProposal()
	p.Candidates[0].SuggestedChanges = ChangeSet{
		Replace{OldText: "maxRequests = 10", NewText: "maxRequests = 100"},
		InsertAfter{Anchor: TextMarker("class RateLimiter"), NewText: "    // limits per client"},
		InsertBefore{Anchor: LineNumber(3), NewText: "import java.time.Duration;"},
		Append{NewText: "// reviewed"},
	}
	p.Candidates[2].Delete = true

	if err := p.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	changes := got.Candidates[0].SuggestedChanges
	if len(changes) != 4 {
		t.Fatalf("changes = %d, want 4", len(changes))
	}
	if r, ok := changes[0].(Replace); !ok || r.NewText != "maxRequests = 100" {
		t.Errorf("changes[0] = %#v", changes[0])
	}
	if ia, ok := changes[1].(InsertAfter); !ok {
		t.Errorf("changes[1] = %#v", changes[1])
	} else if tm, ok := ia.Anchor.(TextMarker); !ok || string(tm) != "class RateLimiter" {
		t.Errorf("anchor = %#v", ia.Anchor)
	}
	if ib, ok := changes[2].(InsertBefore); !ok {
		t.Errorf("changes[2] = %#v", changes[2])
	} else if ln, ok := ib.Anchor.(LineNumber); !ok || int(ln) != 3 {
		t.Errorf("anchor = %#v", ib.Anchor)
	}
	if !got.Candidates[2].Delete {
		t.Error("delete flag lost")
	}
}

func TestChangeSetUnmarshal_UnknownType(t *testing.T) {
	var cs ChangeSet
	err := cs.UnmarshalJSON([]byte(`[{"type": "transmogrify"}]`))
	if err == nil {
		t.Fatal("expected error for unknown change type")
	}
}

func TestChangeSetUnmarshal_MissingAnchor(t *testing.T) {
	var cs ChangeSet
	err := cs.UnmarshalJSON([]byte(`[{"type": "insert_after", "newText": "x"}]`))
	if err == nil {
		t.Fatal("expected error for missing anchor")
	}
}
