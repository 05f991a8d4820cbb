package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
)

// DescribeOptions configures the describe command.
type DescribeOptions struct {
	Kind   string
	Format string
}

// DescribeOutput is the field catalog of one credential kind.
type DescribeOutput struct {
	Kind   string                       `json:"kind" yaml:"kind"`
	Fields []credential.InputDefinition `json:"fields" yaml:"fields"`
}

// RunDescribe runs the describe command.
func RunDescribe(args []string, stdout, stderr io.Writer) int {
	opts, err := parseDescribeArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if err := checkFormat(opts.Format); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	kind, err := credential.ParseKind(opts.Kind)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	c, err := credential.New(kind)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	output := DescribeOutput{Kind: string(kind), Fields: c.Fields()}

	if opts.Format == "text" {
		printDescribeText(stdout, output)
		return exitSuccess
	}

	if err := writeStructured(stdout, opts.Format, output); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func printDescribeText(w io.Writer, output DescribeOutput) {
	fmt.Fprintf(w, "%s fields:\n", strings.ToUpper(output.Kind))
	for _, f := range output.Fields {
		fmt.Fprintf(w, "  %-12s %s", f.Name, f.Kind)
		if len(f.Options) > 0 {
			fmt.Fprintf(w, " [%s]", strings.Join(f.Options, "|"))
		}
		if f.Placeholder != "" {
			fmt.Fprintf(w, " e.g. %s", f.Placeholder)
		}
		fmt.Fprintln(w)
		if f.Description != "" {
			fmt.Fprintf(w, "      %s\n", f.Description)
		}
		for _, r := range f.ValidationRules {
			fmt.Fprintf(w, "      %s: %s\n", r.Rule, r.ErrorMessage)
		}
	}
}

func parseDescribeArgs(args []string, stderr io.Writer) (DescribeOptions, error) {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	opts := DescribeOptions{}

	fs.StringVar(&opts.Kind, "kind", "otp", "Credential kind: otp or wifi")
	fs.StringVar(&opts.Format, "format", "text", "Output format: text, json, yaml")

	if err := parseFlags(fs, args, stderr, printDescribeUsage); err != nil {
		return opts, err
	}
	return opts, nil
}

func printDescribeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: qrcode describe [options]

Options:
  --kind otp|wifi         Credential kind (default otp)
  --format text|json|yaml Output format (default text)

Examples:
  qrcode describe --kind wifi
  qrcode describe --kind otp --format yaml`)
}
