package compiler

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mboyd/etch/internal/ir"
)

// Options configures code generation for one spec file.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// RuntimeImport is the import path of the replay runtime package.
	RuntimeImport string
	// HostExpr names the host factory the target package must provide,
	// a func(testing.TB) replay.Host. The compiler never sees a concrete
	// editor; this expression is the whole coupling surface.
	HostExpr string
	// CommandPrefix namespaces dot-commands.
	CommandPrefix string
	// StaggerMS overrides the runtime's fixed type-stagger offset in
	// milliseconds. Zero keeps the runtime default.
	StaggerMS int
}

func (o Options) withDefaults() Options {
	if o.Package == "" {
		o.Package = "replay_test"
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = "github.com/mboyd/etch/replay"
	}
	if o.HostExpr == "" {
		o.HostExpr = "newReplayHost"
	}
	if o.CommandPrefix == "" {
		o.CommandPrefix = DefaultCommandPrefix
	}
	return o
}

// Generate emits one test-suite unit for a resolved spec: a suite with
// host setup/teardown, one seeded state per root state, and one test per
// transition in resolution order. The emitted code carries all replay
// semantics (cell table, skip cascade, batch join) via the runtime
// package; the generated file itself is plain data and call sequencing.
func Generate(name, source string, spec *ir.Spec, resolved *Resolved, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	// Pre-flight integrity check. ParseSpec enforces this too, but the
	// generator is the last gate before output is written.
	if parsed := len(resolved.Setups) + len(resolved.Tests); spec.HeaderCount != parsed {
		return nil, &ParseError{
			Code:    ErrHeaderCountMismatch,
			Message: fmt.Sprintf("refusing to generate: %d header(s) vs %d entrie(s)", spec.HeaderCount, parsed),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by etch from %s. DO NOT EDIT.\n\n", source)
	fmt.Fprintf(&b, "package %s\n\n", opts.Package)
	b.WriteString("import (\n\t\"testing\"\n")
	if opts.StaggerMS > 0 {
		b.WriteString("\t\"time\"\n")
	}
	fmt.Fprintf(&b, "\n\treplay %q\n)\n\n", opts.RuntimeImport)

	fmt.Fprintf(&b, "func Test%s(t *testing.T) {\n", exportedName(name))
	if opts.StaggerMS > 0 {
		fmt.Fprintf(&b, "\tsuite := replay.NewSuite(t, %s, replay.WithStagger(%d*time.Millisecond))\n", opts.HostExpr, opts.StaggerMS)
	} else {
		fmt.Fprintf(&b, "\tsuite := replay.NewSuite(t, %s)\n", opts.HostExpr)
	}
	b.WriteString("\tdefer suite.Close()\n")

	for _, setup := range resolved.Setups {
		if err := ValidateFlags(setup); err != nil {
			return nil, err
		}
		doc, err := encodeContent(setup.Title, setup.Content)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "\n\tsuite.Seed(%q, %s)\n", setup.Title, doc.GoExpr("\t", "replay"))
	}

	for _, test := range resolved.Tests {
		target, err := encodeContent(test.Title, test.Content)
		if err != nil {
			return nil, err
		}
		groups, err := Sequence(test, opts.CommandPrefix)
		if err != nil {
			return nil, err
		}

		fmt.Fprintf(&b, "\n\tsuite.Run(%q, %q, %s", test.Title, test.ComesAfter, target.GoExpr("\t", "replay"))
		if len(groups) == 0 {
			b.WriteString(")\n")
			continue
		}
		b.WriteString(",\n")
		for _, g := range groups {
			if len(g.Steps) == 1 {
				fmt.Fprintf(&b, "\t\treplay.Single(%s),\n", stepExpr(g.Steps[0]))
				continue
			}
			b.WriteString("\t\treplay.Batch(\n")
			for _, s := range g.Steps {
				fmt.Fprintf(&b, "\t\t\t%s,\n", stepExpr(s))
			}
			b.WriteString("\t\t),\n")
		}
		b.WriteString("\t)\n")
	}

	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// encodeContent wraps document encoding errors with the owning title.
func encodeContent(title, content string) (ir.Document, error) {
	doc, err := ir.EncodeDocument(content)
	if err != nil {
		return ir.Document{}, &ParseError{
			Code:    ErrBadDocumentMarkers,
			Message: fmt.Sprintf("%s: %v", title, err),
		}
	}
	return doc, nil
}

// stepExpr renders a single step as a runtime constructor call.
func stepExpr(s ir.Step) string {
	switch s.Kind {
	case ir.StepConfigure:
		return fmt.Sprintf("replay.Configure(replay.Scope%s, replay.Behavior%s)",
			exportedName(s.Scope.String()), exportedName(s.Behavior.String()))
	case ir.StepType:
		return fmt.Sprintf("replay.TypeChar(%q)", s.Text)
	default:
		return fmt.Sprintf("replay.Invoke(%q, %q)", s.Command, s.Args)
	}
}

// exportedName turns an arbitrary name into an exported Go identifier:
// non-alphanumeric runs split words, each word is capitalized.
func exportedName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Spec"
	}
	return b.String()
}
