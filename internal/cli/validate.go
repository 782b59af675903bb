package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mboyd/etch/internal/compiler"
)

// NewValidateCommand creates the validate command: the full pipeline
// minus code emission. No files are written.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <specs-dir>",
		Short:         "Validate spec files without generating output",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(rootOpts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
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

	var failures []*CLIError
	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, &CLIError{Code: ErrCodeReadFailed, Message: err.Error()})
			continue
		}
		formatter.VerboseLog("Validating %s", path)
		if err := compiler.Check(path, string(text), cfg.Options()); err != nil {
			failures = append(failures, compileError(path, err))
		}
	}

	if len(failures) > 0 {
		if formatter.Format == "json" {
			_ = jsonEncoder(formatter).Encode(CLIResponse{
				Status: "error",
				Error:  failures[0],
				Data:   failures,
			})
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			for _, f := range failures {
				fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Code, f.Message)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(failures)))
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]int{"files": len(files)})
	}
	fmt.Fprintf(formatter.Writer, "✓ Validated %d spec(s)\n", len(files))
	return nil
}
