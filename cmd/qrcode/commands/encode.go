package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	qrcodeadapter "github.com/ericfisherdev/qrcodegen/internal/adapter/driven/qrcode"
	"github.com/ericfisherdev/qrcodegen/internal/application"
)

// EncodeOptions configures the encode command.
type EncodeOptions struct {
	inputOptions
	Output string
	ECC    string
	Scale  int
}

// EncodeOutput is the structured result of the encode command.
type EncodeOutput struct {
	Kind    string `json:"kind" yaml:"kind"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Payload string `json:"payload" yaml:"payload"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
}

// RunEncode runs the encode command.
func RunEncode(args []string, stdout, stderr io.Writer) int {
	opts, err := parseEncodeArgs(args, stderr)
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

	level, err := qrcodeadapter.ParseLevel(opts.ECC)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := application.NewCodeService(qrcodeadapter.NewRasterizer(level, opts.Scale), nil, 0, logger)

	code, err := svc.Generate(context.Background(), req)
	if err != nil {
		if isInputError(err) {
			for _, msg := range inputErrors(err) {
				fmt.Fprintf(stderr, "  ERROR %s\n", msg)
			}
			return exitValidation
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if opts.Output != "" {
		// The image holds the credential secret.
		if err := os.WriteFile(opts.Output, code.PNG, 0o600); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
	}

	output := EncodeOutput{
		Kind:    string(code.Kind),
		Name:    code.Name,
		Payload: code.Payload,
		File:    opts.Output,
	}

	if opts.Format == "text" {
		fmt.Fprintln(stdout, output.Payload)
		if output.File != "" {
			fmt.Fprintf(stderr, "Wrote %s (%d bytes)\n", output.File, len(code.PNG))
		}
		return exitSuccess
	}

	if err := writeStructured(stdout, opts.Format, output); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	return exitSuccess
}

func parseEncodeArgs(args []string, stderr io.Writer) (EncodeOptions, error) {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	opts := EncodeOptions{}

	opts.register(fs)
	fs.StringVar(&opts.Output, "o", "", "Write the QR code PNG to this file")
	fs.StringVar(&opts.Output, "output", "", "Write the QR code PNG to this file")
	fs.StringVar(&opts.ECC, "ecc", "Q", "Error correction level: L, M, Q, H")
	fs.IntVar(&opts.Scale, "scale", qrcodeadapter.DefaultScale, "Pixels per module")

	if err := parseFlags(fs, args, stderr, printEncodeUsage); err != nil {
		return opts, err
	}
	return opts, nil
}

func printEncodeUsage(w io.Writer) {
	fmt.Fprintln(w, `
Usage: qrcode encode [options]

Options:
  --kind otp|wifi         Credential kind (default otp)
  --uri URI               URI whose query string carries the credential
  --set Name=Value        Field value, repeatable (see qrcode describe)
  --name LABEL            Optional label
  -o, --output FILE       Write the QR code PNG to FILE
  --ecc L|M|Q|H           Error correction level (default Q)
  --scale N               Pixels per module (default 20)
  --format text|json|yaml Output format (default text)

Examples:
  qrcode encode --kind wifi --set SSID=Home --set Security=None
  qrcode encode --kind otp --set AccountName=me@example.com --set Issuer=ACME --set Secret=abc -o otp.png`)
}
