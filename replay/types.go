package replay

import (
	"context"
	"testing"

	"github.com/mboyd/etch/internal/ir"
)

// The document-state and step types are defined in the internal ir
// package and re-exported here so generated code (which may live outside
// this module) needs only this package.
type (
	Document  = ir.Document
	Selection = ir.Selection
	Step      = ir.Step
	Group     = ir.Group
	Scope     = ir.Scope
	Behavior  = ir.Behavior
)

const (
	ScopeNormal = ir.ScopeNormal
	ScopeInsert = ir.ScopeInsert

	BehaviorCaret     = ir.BehaviorCaret
	BehaviorCharacter = ir.BehaviorCharacter

	StepConfigure = ir.StepConfigure
	StepInvoke    = ir.StepInvoke
	StepType      = ir.StepType
)

// Host is the capability boundary to the live editor. The compiler and
// this runtime know the shape of a document state and of a command
// invocation, never a concrete editor API.
type Host interface {
	// Apply replaces the live document's content and selections.
	Apply(ctx context.Context, doc Document) error
	// Snapshot returns the live document's current state.
	Snapshot(ctx context.Context) (Document, error)
	// Invoke runs a named command with opaque argument text.
	Invoke(ctx context.Context, command, args string) error
	// Type types text at the current selections.
	Type(ctx context.Context, text string) error
	// SetBehavior configures selection behavior for a scope.
	SetBehavior(ctx context.Context, scope Scope, behavior Behavior) error
	// Close releases the live document.
	Close() error
}

// HostFactory acquires a fresh live document for a suite. Generated code
// names a factory defined by its own package.
type HostFactory func(tb testing.TB) Host

// Invoke builds a command invocation step.
func Invoke(command, args string) Step {
	return Step{Kind: StepInvoke, Command: command, Args: args}
}

// TypeChar builds a single-character typing step.
func TypeChar(ch string) Step {
	return Step{Kind: StepType, Text: ch}
}

// Configure builds a selection-behavior configuration step.
func Configure(scope Scope, behavior Behavior) Step {
	return Step{Kind: StepConfigure, Scope: scope, Behavior: behavior}
}

// Single wraps one step in its own group.
func Single(step Step) Group {
	return Group{Steps: []Step{step}}
}

// Batch groups steps that run concurrently with fixed stagger offsets.
func Batch(steps ...Step) Group {
	return Group{Steps: steps}
}
