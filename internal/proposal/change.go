package proposal

import (
	"encoding/json"
	"fmt"
)

// ChangeType identifies the kind of a suggested change operation.
type ChangeType string

const (
	ChangeReplace      ChangeType = "replace"
	ChangeInsertAfter  ChangeType = "insert_after"
	ChangeInsertBefore ChangeType = "insert_before"
	ChangeAppend       ChangeType = "append"
	ChangeFullReplace  ChangeType = "full_replace"
)

// SuggestedChange is a closed set of typed per-file edit operations.
// The applier dispatches over the concrete types exhaustively; adding a
// new kind is a compile-time decision, not a runtime lookup.
type SuggestedChange interface {
	Type() ChangeType
}

// Replace substitutes the first occurrence of OldText with NewText.
// Re-running an identical change set against the original file is
// idempotent, but two Replace ops in one set act on the progressively
// mutated buffer: when NewText contains OldText the second one matches
// inside the first one's output and the edits compound.
type Replace struct {
	OldText string
	NewText string
}

// InsertAfter inserts NewText as new line(s) immediately after the
// anchor's resolved line.
type InsertAfter struct {
	Anchor  Anchor
	NewText string
}

// InsertBefore inserts NewText as new line(s) immediately before the
// anchor's resolved line.
type InsertBefore struct {
	Anchor  Anchor
	NewText string
}

// Append adds NewText at the end of the file regardless of prior edits.
// The result always ends with a newline, even when the prior content
// did not.
type Append struct {
	NewText string
}

// FullReplace discards all current content. It must be the sole
// operation for its file.
type FullReplace struct {
	NewText string
}

func (Replace) Type() ChangeType      { return ChangeReplace }
func (InsertAfter) Type() ChangeType  { return ChangeInsertAfter }
func (InsertBefore) Type() ChangeType { return ChangeInsertBefore }
func (Append) Type() ChangeType       { return ChangeAppend }
func (FullReplace) Type() ChangeType  { return ChangeFullReplace }

// Anchor locates an insertion point: either a 1-indexed line number or a
// text marker matched as a substring against lines top-to-bottom.
type Anchor interface {
	anchor()
	String() string
}

// LineNumber anchors at a fixed 1-indexed line of the current buffer.
// After prior insertions this refers to the mutated numbering; callers
// needing position stability should use a TextMarker.
type LineNumber int

// TextMarker anchors at the first line containing the marker as a
// substring. Markers re-resolve against the running buffer, so an
// earlier insertion can shift which physical line matches.
type TextMarker string

func (LineNumber) anchor() {}
func (TextMarker) anchor() {}

func (n LineNumber) String() string { return fmt.Sprintf("line %d", int(n)) }
func (m TextMarker) String() string { return fmt.Sprintf("marker %q", string(m)) }

// changeEnvelope is the JSON wire shape of a SuggestedChange.
type changeEnvelope struct {
	Type       ChangeType `json:"type"`
	OldText    string     `json:"oldText,omitempty"`
	NewText    string     `json:"newText,omitempty"`
	AnchorLine *int       `json:"anchorLine,omitempty"`
	AnchorText *string    `json:"anchorText,omitempty"`
}

func envelopeAnchor(env changeEnvelope) (Anchor, error) {
	switch {
	case env.AnchorLine != nil && env.AnchorText != nil:
		return nil, fmt.Errorf("%s: anchorLine and anchorText are mutually exclusive", env.Type)
	case env.AnchorLine != nil:
		return LineNumber(*env.AnchorLine), nil
	case env.AnchorText != nil:
		return TextMarker(*env.AnchorText), nil
	default:
		return nil, fmt.Errorf("%s: missing anchorLine or anchorText", env.Type)
	}
}

func anchorEnvelope(a Anchor, env *changeEnvelope) {
	switch v := a.(type) {
	case LineNumber:
		n := int(v)
		env.AnchorLine = &n
	case TextMarker:
		s := string(v)
		env.AnchorText = &s
	}
}

// ChangeSet is an ordered list of suggested changes with the JSON wire
// shape {"type": ..., ...params}.
type ChangeSet []SuggestedChange

// MarshalJSON implements json.Marshaler.
func (cs ChangeSet) MarshalJSON() ([]byte, error) {
	envs := make([]changeEnvelope, 0, len(cs))
	for _, c := range cs {
		env := changeEnvelope{Type: c.Type()}
		switch v := c.(type) {
		case Replace:
			env.OldText = v.OldText
			env.NewText = v.NewText
		case InsertAfter:
			anchorEnvelope(v.Anchor, &env)
			env.NewText = v.NewText
		case InsertBefore:
			anchorEnvelope(v.Anchor, &env)
			env.NewText = v.NewText
		case Append:
			env.NewText = v.NewText
		case FullReplace:
			env.NewText = v.NewText
		default:
			return nil, fmt.Errorf("unknown change type %T", c)
		}
		envs = append(envs, env)
	}
	return json.Marshal(envs)
}

// UnmarshalJSON implements json.Unmarshaler.
func (cs *ChangeSet) UnmarshalJSON(data []byte) error {
	var envs []changeEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return err
	}

	out := make(ChangeSet, 0, len(envs))
	for _, env := range envs {
		switch env.Type {
		case ChangeReplace:
			out = append(out, Replace{OldText: env.OldText, NewText: env.NewText})
		case ChangeInsertAfter:
			a, err := envelopeAnchor(env)
			if err != nil {
				return err
			}
			out = append(out, InsertAfter{Anchor: a, NewText: env.NewText})
		case ChangeInsertBefore:
			a, err := envelopeAnchor(env)
			if err != nil {
				return err
			}
			out = append(out, InsertBefore{Anchor: a, NewText: env.NewText})
		case ChangeAppend:
			out = append(out, Append{NewText: env.NewText})
		case ChangeFullReplace:
			out = append(out, FullReplace{NewText: env.NewText})
		default:
			return fmt.Errorf("unknown change type %q", env.Type)
		}
	}
	*cs = out
	return nil
}
