package compiler

import (
	"fmt"

	"github.com/mboyd/etch/internal/ir"
)

// Resolved is the validated, execution-ordered view of one spec file.
type Resolved struct {
	// Setups are the root states, each seeding an already-resolved
	// document state in the generated suite.
	Setups []ir.InitialState
	// Tests are the transitions in declaration order. Every ComesAfter
	// is guaranteed to name an earlier setup or test.
	Tests []ir.Transition
}

// Resolve validates referential integrity and returns the resolved view.
//
// Entries become known in two passes: all InitialState titles first, then
// Transitions in declaration order, each checked against the table before
// its own title is inserted. A transition may therefore only reference
// entries declared before it. This declare-before-use discipline is the
// entire cycle defense: the reference graph admits no cycles by
// construction, so no separate cycle walk is needed.
//
// An InitialState and a Transition sharing a title is a fatal duplicate,
// same as any other collision. An empty title is fatal too: a
// whitespace-only header collapses to no identity at all.
func Resolve(spec *ir.Spec) (*Resolved, error) {
	known := make(map[string]bool, len(spec.Initial)+len(spec.Transitions))

	for _, setup := range spec.Initial {
		if setup.Title == "" {
			return nil, &ValidationError{
				Code:    ErrEmptyTitle,
				Message: "initial state has an empty title",
			}
		}
		if known[setup.Title] {
			return nil, &ValidationError{
				Code:    ErrDuplicateTitle,
				Title:   setup.Title,
				Message: fmt.Sprintf("duplicate title %q", setup.Title),
			}
		}
		known[setup.Title] = true
	}

	for _, test := range spec.Transitions {
		if test.Title == "" {
			return nil, &ValidationError{
				Code:    ErrEmptyTitle,
				Message: "test has an empty title",
			}
		}
		if !known[test.ComesAfter] {
			return nil, &ValidationError{
				Code:    ErrUnknownDependency,
				Title:   test.Title,
				Message: fmt.Sprintf("test %q depends on unknown test %q", test.Title, test.ComesAfter),
			}
		}
		if known[test.Title] {
			return nil, &ValidationError{
				Code:    ErrDuplicateTitle,
				Title:   test.Title,
				Message: fmt.Sprintf("duplicate title %q", test.Title),
			}
		}
		known[test.Title] = true
	}

	return &Resolved{Setups: spec.Initial, Tests: spec.Transitions}, nil
}
