package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Marker convention for fenced content blocks:
//
//	|   a bare caret (empty selection)
//	{ } an anchored selection; the anchor sits at '{', the active end at '}'
//	} { a reversed selection (active end before the anchor)
//
// Markers are removed from the text during encoding and re-inserted by
// Render. Marker characters have no escape form; content that needs literal
// '|', '{' or '}' cannot be expressed in a fenced block.
const (
	markerCaret  = '|'
	markerAnchor = '{'
	markerActive = '}'
)

// Selection is one cursor in a document: an anchor and an active end, both
// byte offsets into the text. Anchor == Active is a bare caret.
type Selection struct {
	Anchor int `json:"anchor"`
	Active int `json:"active"`
}

// Empty reports whether the selection is a bare caret.
func (s Selection) Empty() bool { return s.Anchor == s.Active }

// Reversed reports whether the active end precedes the anchor.
func (s Selection) Reversed() bool { return s.Active < s.Anchor }

// Start returns the lower of the two offsets.
func (s Selection) Start() int {
	if s.Reversed() {
		return s.Active
	}
	return s.Anchor
}

// End returns the higher of the two offsets.
func (s Selection) End() int {
	if s.Reversed() {
		return s.Anchor
	}
	return s.Active
}

// Document is the canonical, directly comparable document state: marker-free
// text plus selections ordered by start offset. Equality between two
// Documents is the sole success criterion for a generated test.
type Document struct {
	Text       string      `json:"text"`
	Selections []Selection `json:"selections"`
}

// Equal reports whether two document states are identical.
func (d Document) Equal(o Document) bool {
	if d.Text != o.Text || len(d.Selections) != len(o.Selections) {
		return false
	}
	for i := range d.Selections {
		if d.Selections[i] != o.Selections[i] {
			return false
		}
	}
	return true
}

// EncodeDocument converts a raw fenced block (text with embedded markers)
// into its canonical Document. Selections come out ordered by start offset
// because markers are consumed in textual order. Distinct marker placements
// always yield distinct Documents, and Render inverts the encoding exactly.
func EncodeDocument(raw string) (Document, error) {
	var (
		text strings.Builder
		sels []Selection
		// open selection bookkeeping: -1 means none pending
		pendingAnchor = -1 // saw '{', waiting for '}'
		pendingActive = -1 // saw '}', waiting for '{'
	)

	for _, r := range raw {
		open := pendingAnchor >= 0 || pendingActive >= 0
		switch r {
		case markerCaret:
			if open {
				return Document{}, fmt.Errorf("caret marker inside open selection at offset %d", text.Len())
			}
			sels = append(sels, Selection{Anchor: text.Len(), Active: text.Len()})
		case markerAnchor:
			switch {
			case pendingAnchor >= 0:
				return Document{}, fmt.Errorf("nested selection marker at offset %d", text.Len())
			case pendingActive >= 0:
				sels = append(sels, Selection{Anchor: text.Len(), Active: pendingActive})
				pendingActive = -1
			default:
				pendingAnchor = text.Len()
			}
		case markerActive:
			switch {
			case pendingActive >= 0:
				return Document{}, fmt.Errorf("nested selection marker at offset %d", text.Len())
			case pendingAnchor >= 0:
				sels = append(sels, Selection{Anchor: pendingAnchor, Active: text.Len()})
				pendingAnchor = -1
			default:
				pendingActive = text.Len()
			}
		default:
			text.WriteRune(r)
		}
	}

	if pendingAnchor >= 0 || pendingActive >= 0 {
		return Document{}, fmt.Errorf("unterminated selection marker")
	}

	return Document{Text: text.String(), Selections: sels}, nil
}

// markerEvent is one marker to re-insert at a text offset.
type markerEvent struct {
	offset int
	marker rune
}

// Render inverts EncodeDocument: it re-inserts the markers for every
// selection into the text. Selections must carry valid offsets.
func (d Document) Render() string {
	var events []markerEvent
	for _, s := range d.Selections {
		switch {
		case s.Empty():
			events = append(events, markerEvent{s.Anchor, markerCaret})
		case s.Reversed():
			events = append(events, markerEvent{s.Active, markerActive}, markerEvent{s.Anchor, markerAnchor})
		default:
			events = append(events, markerEvent{s.Anchor, markerAnchor}, markerEvent{s.Active, markerActive})
		}
	}
	// Stable keeps a selection's closing marker ahead of the next
	// selection's opening marker when they share an offset.
	sort.SliceStable(events, func(i, j int) bool { return events[i].offset < events[j].offset })

	var out strings.Builder
	prev := 0
	for _, ev := range events {
		out.WriteString(d.Text[prev:ev.offset])
		out.WriteRune(ev.marker)
		prev = ev.offset
	}
	out.WriteString(d.Text[prev:])
	return out.String()
}

// GoExpr renders the document as a Go composite-literal expression using
// the given package qualifier, indented for embedding in generated source.
// indent is the prefix of the line the expression starts on.
func (d Document) GoExpr(indent, qualifier string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s.Document{\n", qualifier)
	fmt.Fprintf(&b, "%s\tText: %q,\n", indent, d.Text)
	if len(d.Selections) > 0 {
		fmt.Fprintf(&b, "%s\tSelections: []%s.Selection{\n", indent, qualifier)
		for _, s := range d.Selections {
			fmt.Fprintf(&b, "%s\t\t{Anchor: %d, Active: %d},\n", indent, s.Anchor, s.Active)
		}
		fmt.Fprintf(&b, "%s\t},\n", indent)
	}
	fmt.Fprintf(&b, "%s}", indent)
	return b.String()
}
