package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mboyd/etch/internal/ir"
)

// Line patterns for the spec format. The format is line-oriented and
// case-sensitive; anything a pattern does not match is ignored body text.
var (
	headerRe    = regexp.MustCompile(`^# (.+)$`)
	referenceRe = regexp.MustCompile(`^\[[^\]]*\]\(#([^)]+)\)\s*$`)
	operationRe = regexp.MustCompile(`^- (\S+)(?: (.+))?$`)
	flagRe      = regexp.MustCompile(`^> (.+)$`)
)

// entryTitle derives an entry's identity from its header text: whitespace
// runs collapse to single hyphens, so titles differing only in whitespace
// collapse to the same identity (and later trip the duplicate check).
func entryTitle(header string) string {
	return strings.Join(strings.Fields(header), "-")
}

// ParseSpec scans raw spec text into ordered InitialState and Transition
// entries. Entries are delimited by a "# <title>" header, an optional
// "[...](#<predecessor>)" reference on the very next line, free-form body
// text holding operation ("- ...") and flag ("> ...") lines, and a fenced
// block whose interior is the target document content.
//
// An entry whose fence never closes is dropped; the trailing header-count
// integrity check then fails the whole parse rather than silently emitting
// a truncated spec.
func ParseSpec(source string) (*ir.Spec, error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	lines := strings.Split(source, "\n")

	spec := &ir.Spec{}

	i := 0
	for i < len(lines) {
		m := headerRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		spec.HeaderCount++
		title := entryTitle(m[1])
		i++

		comesAfter := ""
		if i < len(lines) {
			if ref := referenceRe.FindStringSubmatch(lines[i]); ref != nil {
				comesAfter = ref[1]
				i++
			}
		}

		var (
			ops        []ir.Operation
			flags      []string
			content    string
			terminated bool
		)

	body:
		for i < len(lines) {
			line := lines[i]
			switch {
			case strings.HasPrefix(line, "```"):
				// Fenced block: interior lines up to the closing fence.
				i++
				var inner []string
				for i < len(lines) {
					if strings.TrimSpace(lines[i]) == "```" {
						terminated = true
						i++
						break
					}
					inner = append(inner, lines[i])
					i++
				}
				content = strings.Join(inner, "\n")
				break body
			case headerRe.MatchString(line):
				// Next entry began before a fence: this entry is
				// malformed and stays unrecorded.
				break body
			default:
				if op := operationRe.FindStringSubmatch(line); op != nil {
					ops = append(ops, ir.Operation{Command: op[1], Args: op[2]})
				} else if f := flagRe.FindStringSubmatch(line); f != nil {
					flags = append(flags, strings.TrimSpace(f[1]))
				}
				i++
			}
		}

		if !terminated {
			continue // header counted, entry dropped; integrity check fires below
		}

		if comesAfter == "" {
			// A root state has no transition, so operation lines carry no
			// meaning; only flags are kept.
			spec.Initial = append(spec.Initial, ir.InitialState{
				Title:   title,
				Flags:   flags,
				Content: content,
			})
		} else {
			spec.Transitions = append(spec.Transitions, ir.Transition{
				Title:      title,
				ComesAfter: comesAfter,
				Operations: ops,
				Flags:      flags,
				Content:    content,
			})
		}
	}

	if parsed := len(spec.Initial) + len(spec.Transitions); spec.HeaderCount != parsed {
		return nil, &ParseError{
			Code: ErrHeaderCountMismatch,
			Message: fmt.Sprintf("malformed spec: found %d header(s) but parsed %d entrie(s); likely an unterminated fenced block",
				spec.HeaderCount, parsed),
		}
	}

	return spec, nil
}
