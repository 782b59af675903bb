package ir

// Operation is a single editing operation line from a transition body.
type Operation struct {
	Command string `json:"command"`        // command name, "type:<char>", or ".<suffix>" shorthand
	Args    string `json:"args,omitempty"` // opaque argument expression text
}

// InitialState is a named root document with no predecessor.
type InitialState struct {
	Title   string   `json:"title"`
	Flags   []string `json:"flags,omitempty"`
	Content string   `json:"content"` // raw fenced block text, markers included
}

// Transition is a named document state reached from a predecessor by
// replaying operations.
type Transition struct {
	Title      string      `json:"title"`
	ComesAfter string      `json:"comes_after"`
	Operations []Operation `json:"operations,omitempty"`
	Flags      []string    `json:"flags,omitempty"`
	Content    string      `json:"content"`
}

// Spec is the parsed form of one input file, declaration order preserved
// within each kind.
type Spec struct {
	Initial     []InitialState `json:"initial"`
	Transitions []Transition   `json:"transitions"`
	// HeaderCount is the number of header lines seen by the parser.
	// It is cross-checked against len(Initial)+len(Transitions) to catch
	// structurally malformed input (e.g. an unterminated fence).
	HeaderCount int `json:"header_count"`
}

// Scope identifies a selection-behavior scope.
type Scope int

const (
	ScopeNormal Scope = iota
	ScopeInsert
)

func (s Scope) String() string {
	switch s {
	case ScopeNormal:
		return "normal"
	case ScopeInsert:
		return "insert"
	default:
		return "unknown"
	}
}

// ParseScope maps a scope token to its Scope. The set is closed.
func ParseScope(s string) (Scope, bool) {
	switch s {
	case "normal":
		return ScopeNormal, true
	case "insert":
		return ScopeInsert, true
	default:
		return 0, false
	}
}

// Behavior identifies how selections behave within a scope.
type Behavior int

const (
	BehaviorCaret Behavior = iota
	BehaviorCharacter
)

func (b Behavior) String() string {
	switch b {
	case BehaviorCaret:
		return "caret"
	case BehaviorCharacter:
		return "character"
	default:
		return "unknown"
	}
}

// ParseBehavior maps a behavior token to its Behavior. The set is closed.
func ParseBehavior(s string) (Behavior, bool) {
	switch s {
	case "caret":
		return BehaviorCaret, true
	case "character":
		return BehaviorCharacter, true
	default:
		return 0, false
	}
}

// StepKind tags the closed set of executable step variants.
type StepKind int

const (
	// StepConfigure sets selection behavior for a scope.
	StepConfigure StepKind = iota
	// StepInvoke runs a named host command with optional opaque args.
	StepInvoke
	// StepType types a single character into the host document.
	StepType
)

func (k StepKind) String() string {
	switch k {
	case StepConfigure:
		return "configure"
	case StepInvoke:
		return "invoke"
	case StepType:
		return "type"
	default:
		return "unknown"
	}
}

// Step is one executable step. Which fields are meaningful depends on Kind.
type Step struct {
	Kind StepKind `json:"kind"`

	// StepConfigure
	Scope    Scope    `json:"scope,omitempty"`
	Behavior Behavior `json:"behavior,omitempty"`

	// StepInvoke
	Command string `json:"command,omitempty"`
	Args    string `json:"args,omitempty"`

	// StepType
	Text string `json:"text,omitempty"`
}

// Group is a set of steps that run concurrently with fixed stagger offsets.
// All members complete before the next group starts. Most groups hold a
// single step; multi-step groups arise from type:<char> merging.
type Group struct {
	Steps []Step `json:"steps"`
}
