package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/ericfisherdev/qrcodegen/internal/application"
)

// ValidateOptions configures the validate command.
type ValidateOptions struct {
	inputOptions
}

// ValidationOutput is the structured result of the validate command.
type ValidationOutput struct {
	Valid  bool     `json:"valid" yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// RunValidate runs the validate command.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	opts, err := parseValidateArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	req, err := opts.request()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	output := ValidationOutput{Valid: true}
	if err := application.NewCodeService(nil, nil, 0, nil).Check(req); err != nil {
		if !isInputError(err) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		output.Valid = false
		output.Errors = inputErrors(err)
	}

	if opts.Format == "text" {
		printValidationResult(stdout, string(req.Kind), output)
	} else if err := writeStructured(stdout, opts.Format, output); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if !output.Valid {
		return exitValidation
	}
	return exitSuccess
}

func printValidationResult(w io.Writer, kind string, result ValidationOutput) {
	if result.Valid {
		fmt.Fprintf(w, "%s: OK\n", kind)
		return
	}

	fmt.Fprintf(w, "%s: FAILED (%d errors)\n", kind, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  ERROR %s\n", e)
	}
}

func parseValidateArgs(args []string, stderr io.Writer) (ValidateOptions, error) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	opts := ValidateOptions{}

	opts.register(fs)

	if err := parseFlags(fs, args, stderr, printValidateUsage); err != nil {
		return opts, err
	}
	return opts, nil
}

func printValidateUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: qrcode validate [options]

Options:
  --kind otp|wifi         Credential kind (default otp)
  --uri URI               URI whose query string carries the credential
  --set Name=Value        Field value, repeatable
  --format text|json|yaml Output format (default text)

Examples:
  qrcode validate --kind wifi --set Security=WPA
  qrcode validate --kind otp --uri 'x?digits=0' --format json`)
}
