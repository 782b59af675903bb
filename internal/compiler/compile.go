// Package compiler turns literate editor-session specs into executable
// Go test files.
//
// The pipeline is parse → resolve → sequence/encode → generate. Every
// stage is all-or-nothing per file: a parse or validation error aborts
// compilation of that file and no output is produced.
package compiler

import (
	"path/filepath"
	"strings"

	"github.com/mboyd/etch/internal/ir"
)

// Result is the outcome of compiling one spec file.
type Result struct {
	// Name is the suite name, derived from the source file base name.
	Name string
	// Hash is the content-addressed identity of the source text.
	Hash string
	// SetupCount and TestCount are the seeded root states and emitted
	// tests. For a valid spec TestCount always equals the number of
	// transition entries in the source.
	SetupCount int
	TestCount  int
	// Code is the generated test file.
	Code []byte
}

// Compile runs the full pipeline over one spec file's text. source is the
// file path (used for the suite name and the generated header); it is not
// read from disk here.
func Compile(source, text string, opts Options) (*Result, error) {
	spec, err := ParseSpec(text)
	if err != nil {
		return nil, err
	}
	resolved, err := Resolve(spec)
	if err != nil {
		return nil, err
	}

	name := suiteName(source)
	code, err := Generate(name, filepath.Base(source), spec, resolved, opts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:       name,
		Hash:       ir.SpecHash(text),
		SetupCount: len(resolved.Setups),
		TestCount:  len(resolved.Tests),
		Code:       code,
	}, nil
}

// Check runs the pipeline without emitting code: parse, resolve, flag
// validation, operation sequencing, and document encoding. Used by the
// validate command to report errors with no output files.
func Check(source, text string, opts Options) error {
	opts = opts.withDefaults()
	spec, err := ParseSpec(text)
	if err != nil {
		return err
	}
	resolved, err := Resolve(spec)
	if err != nil {
		return err
	}
	for _, setup := range resolved.Setups {
		if err := ValidateFlags(setup); err != nil {
			return err
		}
		if _, err := encodeContent(setup.Title, setup.Content); err != nil {
			return err
		}
	}
	for _, test := range resolved.Tests {
		if _, err := Sequence(test, opts.CommandPrefix); err != nil {
			return err
		}
		if _, err := encodeContent(test.Title, test.Content); err != nil {
			return err
		}
	}
	return nil
}

// suiteName derives the suite name from a source path: base name without
// the spec extension.
func suiteName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
