package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mboyd/etch/internal/compiler"
	"github.com/mboyd/etch/internal/ir"
	"github.com/mboyd/etch/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Cache string // compile cache database path; empty disables caching
	Force bool   // recompile even when the cache says unchanged
}

// FileResult summarizes one spec file's compilation for output.
type FileResult struct {
	Path    string `json:"path"`
	Output  string `json:"output,omitempty"`
	Setups  int    `json:"setups"`
	Tests   int    `json:"tests"`
	Skipped bool   `json:"skipped,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile spec files to generated test suites",
		Long: `Compile literate spec files (*.etch) into generated Go test files.

Each spec is parsed, validated, and emitted as a sibling test file. A
spec with any parse or validation error produces no output at all.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "compile cache database path")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "recompile unchanged files")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := LoadConfig(specsDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeBadConfig, err.Error())
	}

	files, err := listSpecs(specsDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}
	if len(files) == 0 {
		return outputCommandError(formatter, ErrCodeNoSpecs,
			fmt.Sprintf("no %s files in %s", SpecExt, specsDir))
	}
	formatter.VerboseLog("Found %d spec file(s) in %s", len(files), specsDir)

	var cache *store.Store
	if opts.Cache != "" {
		cache, err = store.Open(opts.Cache)
		if err != nil {
			return outputCommandError(formatter, ErrCodeCache, err.Error())
		}
		defer cache.Close()
	}

	ctx := cmd.Context()
	var (
		results  []FileResult
		failures []*CLIError
	)

	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, &CLIError{Code: ErrCodeReadFailed, Message: err.Error()})
			continue
		}
		hash := ir.SpecHash(string(text))

		if cache != nil && !opts.Force {
			unchanged, err := cache.Unchanged(ctx, path, hash)
			if err != nil {
				failures = append(failures, &CLIError{Code: ErrCodeCache, Message: err.Error()})
				continue
			}
			if unchanged {
				formatter.VerboseLog("Skipping %s (unchanged)", path)
				results = append(results, FileResult{Path: path, Skipped: true})
				continue
			}
		}

		formatter.VerboseLog("Compiling %s", path)
		res, err := compiler.Compile(path, string(text), cfg.Options())
		if err != nil {
			// All-or-nothing per file: no output is written.
			failures = append(failures, compileError(path, err))
			continue
		}

		out := cfg.outputPath(path)
		if err := os.WriteFile(out, res.Code, 0o644); err != nil {
			failures = append(failures, &CLIError{Code: ErrCodeWriteFailed, Message: err.Error()})
			continue
		}
		if cache != nil {
			if err := cache.Record(ctx, path, hash, res.TestCount); err != nil {
				failures = append(failures, &CLIError{Code: ErrCodeCache, Message: err.Error()})
				continue
			}
		}
		results = append(results, FileResult{
			Path:   path,
			Output: out,
			Setups: res.SetupCount,
			Tests:  res.TestCount,
		})
	}

	return outputCompileResults(formatter, results, failures)
}

// listSpecs returns the spec files in dir, sorted for stable output.
func listSpecs(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*"+SpecExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// compileError maps a compiler error onto a CLIError, preserving the
// compiler's own code when it has one.
func compileError(path string, err error) *CLIError {
	code := ErrCodeGeneric
	switch e := err.(type) {
	case *compiler.ParseError:
		code = e.Code
	case *compiler.ValidationError:
		code = e.Code
	}
	return &CLIError{Code: code, Message: fmt.Sprintf("%s: %v", path, err)}
}

func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputCompileResults(formatter *OutputFormatter, results []FileResult, failures []*CLIError) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: results}
		if len(failures) > 0 {
			response.Status = "error"
			response.Error = failures[0]
			response.Data = map[string]interface{}{
				"results": results,
				"errors":  failures,
			}
		}
		enc := jsonEncoder(formatter)
		if err := enc.Encode(response); err != nil {
			return err
		}
		if len(failures) > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(failures)))
		}
		return nil
	}

	compiled, skipped := 0, 0
	for _, r := range results {
		if r.Skipped {
			skipped++
			continue
		}
		compiled++
		fmt.Fprintf(formatter.Writer, "  %s: %d setup(s), %d test(s) -> %s\n",
			r.Path, r.Setups, r.Tests, r.Output)
	}

	if len(failures) > 0 {
		fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
		for _, f := range failures {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Code, f.Message)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", len(failures)))
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d spec(s)", compiled)
	if skipped > 0 {
		fmt.Fprintf(formatter.Writer, ", %d unchanged", skipped)
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}
