package compiler

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mboyd/etch/internal/ir"
)

// DefaultCommandPrefix is prepended to commands written with a leading
// dot, e.g. ".select.down" invokes "editor.select.down".
const DefaultCommandPrefix = "editor"

// behaviorFlagRe matches the closed flag grammar:
// "<scope>.behavior <- <value>". Scope and value enumerations are checked
// separately so the error can name the bad token.
var behaviorFlagRe = regexp.MustCompile(`^(\S+)\.behavior <- (\S+)$`)

// parseFlag turns a flag directive into a Configure step. Any flag text
// outside the recognized grammar is fatal; there is no silent ignore.
func parseFlag(flag, title string) (ir.Step, error) {
	m := behaviorFlagRe.FindStringSubmatch(flag)
	if m == nil {
		return ir.Step{}, &ValidationError{
			Code:    ErrUnrecognizedFlag,
			Title:   title,
			Message: fmt.Sprintf("unrecognized flag %q", flag),
		}
	}
	scope, ok := ir.ParseScope(m[1])
	if !ok {
		return ir.Step{}, &ValidationError{
			Code:    ErrUnrecognizedFlag,
			Title:   title,
			Message: fmt.Sprintf("unrecognized flag %q: unknown scope %q", flag, m[1]),
		}
	}
	behavior, ok := ir.ParseBehavior(m[2])
	if !ok {
		return ir.Step{}, &ValidationError{
			Code:    ErrUnrecognizedFlag,
			Title:   title,
			Message: fmt.Sprintf("unrecognized flag %q: unknown behavior %q", flag, m[2]),
		}
	}
	return ir.Step{Kind: ir.StepConfigure, Scope: scope, Behavior: behavior}, nil
}

// Sequence converts a transition's flags and operations into ordered step
// groups. Flags come first, one Configure group each. Operations follow:
//
//   - a command starting with "." is namespaced with prefix
//   - "type:<char>" is not an independent step; it joins the immediately
//     preceding operation's group as a staggered concurrent sub-step
//
// Consecutive type operations accumulate into the same group, so a command
// followed by type:a, type:b becomes one three-member group whose members
// start at fixed offsets and all finish before the next group runs.
func Sequence(test ir.Transition, prefix string) ([]ir.Group, error) {
	if prefix == "" {
		prefix = DefaultCommandPrefix
	}

	var groups []ir.Group
	for _, flag := range test.Flags {
		step, err := parseFlag(flag, test.Title)
		if err != nil {
			return nil, err
		}
		groups = append(groups, ir.Group{Steps: []ir.Step{step}})
	}

	flagGroups := len(groups)
	for _, op := range test.Operations {
		if ch, isType := strings.CutPrefix(op.Command, "type:"); isType {
			if utf8.RuneCountInString(ch) != 1 {
				return nil, &ValidationError{
					Code:    ErrBadTypeOperation,
					Title:   test.Title,
					Message: fmt.Sprintf("type operation %q must name exactly one character", op.Command),
				}
			}
			if len(groups) == flagGroups {
				return nil, &ValidationError{
					Code:    ErrDanglingType,
					Title:   test.Title,
					Message: fmt.Sprintf("operation %q must follow another operation", op.Command),
				}
			}
			last := len(groups) - 1
			groups[last].Steps = append(groups[last].Steps, ir.Step{Kind: ir.StepType, Text: ch})
			continue
		}

		command := op.Command
		if strings.HasPrefix(command, ".") {
			command = prefix + command
		}
		groups = append(groups, ir.Group{Steps: []ir.Step{{
			Kind:    ir.StepInvoke,
			Command: command,
			Args:    op.Args,
		}}})
	}

	return groups, nil
}

// ValidateFlags checks a root state's flags against the flag grammar.
// Root states have no replay body, so their flags produce no steps, but
// unrecognized flag text is still fatal.
func ValidateFlags(setup ir.InitialState) error {
	for _, flag := range setup.Flags {
		if _, err := parseFlag(flag, setup.Title); err != nil {
			return err
		}
	}
	return nil
}
