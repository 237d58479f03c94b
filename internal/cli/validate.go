package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/propharness/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool                     `json:"valid"`
	Components []string                 `json:"components,omitempty"`
	Errors     []schema.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate component definitions",
		Long: `Compile and validate every CUE component definition in a directory.

All problems are reported, not just the first one.

Exit codes:
  0 - All definitions valid
  1 - One or more definitions invalid
  2 - Command error (missing directory, no CUE files, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, problems, err := ValidateSpecsDir(specsDir)
	if err != nil {
		var loadErr *schema.LoadError
		if errors.As(err, &loadErr) {
			return commandError(formatter, loadErr.Code, loadErr.Message)
		}
		return commandError(formatter, schema.ErrCodeGeneric, err.Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, specsDir)
	for _, name := range result.Names() {
		formatter.VerboseLog("  component %s", name)
	}

	if len(problems) > 0 {
		return outputValidationErrors(formatter, result.Names(), problems)
	}
	return outputValidateSuccess(formatter, result.Names())
}

// ValidateSpecsDir loads every definition in specsDir and returns all
// compile and validation problems. The error is non-nil only when the
// directory could not be loaded at all.
func ValidateSpecsDir(specsDir string) (*schema.LoadResult, []schema.ValidationError, error) {
	result, loadErrors := schema.Load(specsDir, schema.LoadModeCollectAll)
	if result == nil {
		return nil, nil, loadErrors[0]
	}

	var problems []schema.ValidationError
	for _, err := range loadErrors {
		var loadErr *schema.LoadError
		if !errors.As(err, &loadErr) {
			problems = append(problems, schema.ValidationError{Field: "load", Message: err.Error(), Code: schema.ErrCodeGeneric})
			continue
		}
		line := 0
		if loadErr.Pos.IsValid() {
			line = loadErr.Pos.Line()
		}
		problems = append(problems, schema.ValidationError{
			Field:   "load",
			Message: loadErr.Message,
			Code:    loadErr.Code,
			Line:    line,
		})
	}

	for _, def := range result.Definitions {
		problems = append(problems, schema.Validate(def)...)
	}

	return result, problems, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Components: names})
	}

	fmt.Fprintln(formatter.Writer, "✓ All specs valid")
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, names []string, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		err := formatter.Encode(CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:      false,
				Components: names,
				Errors:     errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		})
		if err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
