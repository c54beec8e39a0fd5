package apply

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	rerr "reqmap/internal/errors"
	"reqmap/internal/logging"
	"reqmap/internal/proposal"
)

// Applier applies a confirmed proposal's suggested changes to a work
// tree. Files are independent and processed by a bounded worker pool;
// the operations within one file run in order against a running buffer
// that is written back at most once.
type Applier struct {
	tree    WorkTree
	logger  *logging.Logger
	workers int
}

// NewApplier returns an Applier over tree using the given pool size.
func NewApplier(tree WorkTree, logger *logging.Logger, workers int) *Applier {
	if workers < 1 {
		workers = 1
	}
	return &Applier{tree: tree, logger: logger, workers: workers}
}

// Run applies every candidate in p. An unconfirmed proposal is a fatal
// error; a candidate that fails validation or application is reported
// in the result and does not stop its siblings.
func (a *Applier) Run(ctx context.Context, p *proposal.Proposal) (*Result, error) {
	if !p.Confirmed {
		return nil, rerr.New(rerr.ProposalNotConfirmed, "proposal "+p.ProposalID+" has not been confirmed")
	}

	result := &Result{
		RunID: uuid.New().String(),
		Files: make([]FileResult, len(p.Candidates)),
	}

	if a.workers == 1 || len(p.Candidates) < 2 {
		for i := range p.Candidates {
			if err := ctx.Err(); err != nil {
				return nil, rerr.Wrap(rerr.InternalError, "apply interrupted", err)
			}
			result.Files[i] = a.applyCandidate(&p.Candidates[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < a.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					result.Files[i] = a.applyCandidate(&p.Candidates[i])
				}
			}()
		}

	dispatch:
		for i := range p.Candidates {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break dispatch
			}
		}
		close(jobs)
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, rerr.Wrap(rerr.InternalError, "apply interrupted", err)
		}
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	for _, f := range result.Files {
		if f.Status == StatusApplied {
			result.Stat.Add(f.Stat)
		}
	}

	a.logger.Info("apply run finished", map[string]interface{}{
		"runId":      result.RunID,
		"proposalId": p.ProposalID,
		"applied":    result.Applied(),
		"failed":     result.Failed(),
	})
	return result, nil
}

func (a *Applier) applyCandidate(c *proposal.Candidate) FileResult {
	res := FileResult{Path: c.FilePath}

	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Error = err.Error()
		res.ErrorCode = string(rerr.CodeOf(err))
		a.logger.Warn("candidate failed", map[string]interface{}{
			"path":  c.FilePath,
			"error": err.Error(),
		})
		return res
	}

	if err := validateCandidate(c); err != nil {
		return fail(err)
	}

	if c.Delete {
		before, err := a.tree.Read(c.FilePath)
		if err != nil {
			return fail(err)
		}
		if err := a.tree.Delete(c.FilePath); err != nil {
			return fail(err)
		}
		res.Status = StatusApplied
		res.Action = ActionDeleted
		res.OpsApplied = 1
		res.Stat = diffLines(string(before), "")
		res.Stat.FilesChanged = 1
		return res
	}

	if len(c.SuggestedChanges) == 0 {
		res.Status = StatusSkipped
		return res
	}

	before, existed, err := a.loadBuffer(c)
	if err != nil {
		return fail(err)
	}

	buf := before
	for _, change := range c.SuggestedChanges {
		buf, err = applyChange(buf, change)
		if err != nil {
			return fail(err)
		}
		res.OpsApplied++
	}

	// Per-file atomicity: the tree is touched only after every
	// operation has succeeded in memory.
	if err := a.tree.Write(c.FilePath, []byte(buf)); err != nil {
		res.OpsApplied = 0
		return fail(err)
	}

	res.Status = StatusApplied
	res.Action = ActionModified
	if !existed {
		res.Action = ActionCreated
	}
	res.Stat = diffLines(before, buf)
	res.Stat.FilesChanged = 1
	return res
}

// loadBuffer reads the candidate's current content. A missing file is
// only acceptable when the sole change is a FullReplace, which then
// creates it.
func (a *Applier) loadBuffer(c *proposal.Candidate) (content string, existed bool, err error) {
	exists, err := a.tree.Exists(c.FilePath)
	if err != nil {
		return "", false, err
	}
	if !exists {
		if _, ok := c.SuggestedChanges[0].(proposal.FullReplace); ok {
			return "", false, nil
		}
		return "", false, rerr.Newf(rerr.IOFailure, "failed to read %s: no such file", c.FilePath)
	}
	data, err := a.tree.Read(c.FilePath)
	if err != nil {
		return "", true, err
	}
	return string(data), true, nil
}

// validateCandidate rejects malformed change sets before any tree
// access, so a conflicting candidate leaves its file byte-identical.
func validateCandidate(c *proposal.Candidate) error {
	if c.Delete && len(c.SuggestedChanges) > 0 {
		return rerr.Newf(rerr.ValidationConflict, "%s: delete excludes suggested changes", c.FilePath)
	}

	for _, change := range c.SuggestedChanges {
		switch v := change.(type) {
		case proposal.Replace:
			if v.OldText == "" {
				return rerr.Newf(rerr.ValidationConflict, "%s: replace with empty oldText", c.FilePath)
			}
		case proposal.InsertAfter:
			if err := validateAnchor(c.FilePath, v.Anchor); err != nil {
				return err
			}
		case proposal.InsertBefore:
			if err := validateAnchor(c.FilePath, v.Anchor); err != nil {
				return err
			}
		case proposal.FullReplace:
			if len(c.SuggestedChanges) > 1 {
				return rerr.Newf(rerr.ValidationConflict, "%s: full_replace must be the only change", c.FilePath)
			}
		}
	}
	return nil
}

func validateAnchor(path string, a proposal.Anchor) error {
	switch v := a.(type) {
	case proposal.LineNumber:
		if int(v) < 1 {
			return rerr.Newf(rerr.ValidationConflict, "%s: line anchors are 1-based, got %d", path, int(v))
		}
	case proposal.TextMarker:
		if string(v) == "" {
			return rerr.Newf(rerr.ValidationConflict, "%s: empty text marker", path)
		}
	default:
		return rerr.Newf(rerr.ValidationConflict, "%s: insert change has no anchor", path)
	}
	return nil
}

// applyChange applies one change to the running buffer. Anchors and
// replace targets resolve against the buffer as it stands: a later
// insert at the same marker lands below the text an earlier insert
// added, and a repeated Replace whose NewText contains OldText matches
// inside the earlier replacement and compounds.
func applyChange(buf string, change proposal.SuggestedChange) (string, error) {
	switch v := change.(type) {
	case proposal.Replace:
		idx := strings.Index(buf, v.OldText)
		if idx < 0 {
			return "", rerr.Newf(rerr.AnchorNotFound, "replace target %.60q not found", v.OldText)
		}
		return buf[:idx] + v.NewText + buf[idx+len(v.OldText):], nil

	case proposal.InsertAfter:
		return insertAt(buf, v.Anchor, v.NewText, 1)

	case proposal.InsertBefore:
		return insertAt(buf, v.Anchor, v.NewText, 0)

	case proposal.Append:
		// Appended files always end with a newline.
		lines, _ := toLines(buf)
		lines = append(lines, strings.Split(v.NewText, "\n")...)
		return fromLines(lines, true), nil

	case proposal.FullReplace:
		return v.NewText, nil

	default:
		return "", rerr.Newf(rerr.ValidationConflict, "unknown change type %q", change.Type())
	}
}

// insertAt inserts newText as whole lines after (offset 1) or before
// (offset 0) the anchor line.
func insertAt(buf string, anchor proposal.Anchor, newText string, offset int) (string, error) {
	lines, trailing := toLines(buf)

	var at int
	switch v := anchor.(type) {
	case proposal.LineNumber:
		n := int(v)
		if n > len(lines) {
			return "", rerr.Newf(rerr.AnchorNotFound, "line %d is past the end of the file (%d lines)", n, len(lines))
		}
		at = n - 1
	case proposal.TextMarker:
		at = -1
		for i, line := range lines {
			if strings.Contains(line, string(v)) {
				at = i
				break
			}
		}
		if at < 0 {
			return "", rerr.Newf(rerr.AnchorNotFound, "no line contains marker %q", string(v))
		}
	}

	inserted := strings.Split(newText, "\n")
	pos := at + offset
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:pos]...)
	out = append(out, inserted...)
	out = append(out, lines[pos:]...)
	return fromLines(out, trailing), nil
}

func toLines(buf string) (lines []string, trailingNewline bool) {
	if buf == "" {
		return nil, false
	}
	trailingNewline = strings.HasSuffix(buf, "\n")
	return strings.Split(strings.TrimSuffix(buf, "\n"), "\n"), trailingNewline
}

func fromLines(lines []string, trailingNewline bool) string {
	out := strings.Join(lines, "\n")
	if trailingNewline && out != "" {
		out += "\n"
	}
	return out
}
