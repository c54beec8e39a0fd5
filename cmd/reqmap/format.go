package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"reqmap/internal/apply"
	"reqmap/internal/proposal"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *proposal.Proposal:
		return formatProposalHuman(v), nil
	case *apply.Result:
		return formatApplyHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatProposalHuman(p *proposal.Proposal) string {
	var b strings.Builder

	state := "draft"
	if p.Confirmed {
		state = "confirmed"
	}
	fmt.Fprintf(&b, "Proposal %s (%s)\n", p.ProposalID, state)
	fmt.Fprintf(&b, "Requirement: %s - %s\n", p.RequirementID, p.Summary)
	if len(p.Keywords) > 0 {
		fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(p.Keywords, ", "))
	}
	b.WriteString(strings.Repeat("=", 60) + "\n")

	if len(p.Candidates) == 0 {
		b.WriteString("No candidate files matched.\n")
	}
	for i, c := range p.Candidates {
		fmt.Fprintf(&b, "\n%d. %s (score %.1f)\n", i+1, c.FilePath, c.Score)
		if c.Delete {
			b.WriteString("   marked for deletion\n")
		}
		for _, e := range c.MatchedElements {
			fmt.Fprintf(&b, "   %s %s (line %d, score %.1f)\n", e.Kind, e.Name, e.Line, e.Score)
		}
		for _, loc := range c.MatchedLocations {
			fmt.Fprintf(&b, "   lines %d-%d [%s]\n", loc.LineStart, loc.LineEnd, strings.Join(loc.Keywords, ", "))
		}
		for _, change := range c.SuggestedChanges {
			fmt.Fprintf(&b, "   change: %s\n", describeChange(change))
		}
	}

	if len(p.Notes) > 0 {
		b.WriteString("\nNotes:\n")
		for _, note := range p.Notes {
			fmt.Fprintf(&b, "  - %s\n", note)
		}
	}

	return b.String()
}

func describeChange(c proposal.SuggestedChange) string {
	switch v := c.(type) {
	case proposal.Replace:
		return fmt.Sprintf("replace %.40q", v.OldText)
	case proposal.InsertAfter:
		return fmt.Sprintf("insert after %s", v.Anchor)
	case proposal.InsertBefore:
		return fmt.Sprintf("insert before %s", v.Anchor)
	case proposal.Append:
		return "append"
	case proposal.FullReplace:
		return "full replace"
	default:
		return string(c.Type())
	}
}

func formatApplyHuman(r *apply.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Apply run %s\n", r.RunID)
	if r.BranchName != "" {
		fmt.Fprintf(&b, "Branch: %s\n", r.BranchName)
	}
	b.WriteString(strings.Repeat("=", 60) + "\n")

	for _, f := range r.Files {
		switch f.Status {
		case apply.StatusApplied:
			fmt.Fprintf(&b, "  ok   %s (+%d -%d, %d ops)\n", f.Path, f.Stat.Insertions, f.Stat.Deletions, f.OpsApplied)
		case apply.StatusSkipped:
			fmt.Fprintf(&b, "  skip %s\n", f.Path)
		case apply.StatusFailed:
			fmt.Fprintf(&b, "  FAIL %s: %s (%s)\n", f.Path, f.Error, f.ErrorCode)
		}
	}

	fmt.Fprintf(&b, "\n%d applied (%d modified, %d created, %d deleted), %d failed, +%d -%d total\n",
		r.Applied(),
		r.CountAction(apply.ActionModified),
		r.CountAction(apply.ActionCreated),
		r.CountAction(apply.ActionDeleted),
		r.Failed(), r.Stat.Insertions, r.Stat.Deletions)
	return b.String()
}
