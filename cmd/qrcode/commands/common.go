// Package commands implements the qrcode subcommands.
package commands

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/qrcodegen/internal/application"
	"github.com/ericfisherdev/qrcodegen/internal/domain/credential"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// fieldsFlag collects repeated --set Name=Value flags.
type fieldsFlag map[string]string

func (f fieldsFlag) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	return strings.Join(pairs, ",")
}

func (f fieldsFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected Name=Value, got %q", s)
	}
	f[name] = value
	return nil
}

// inputOptions are the flags shared by encode and validate.
type inputOptions struct {
	Kind   string
	URI    string
	Name   string
	Fields fieldsFlag
	Format string
}

func (o *inputOptions) register(fs *flag.FlagSet) {
	o.Fields = fieldsFlag{}
	fs.StringVar(&o.Kind, "kind", "otp", "Credential kind: otp or wifi")
	fs.StringVar(&o.URI, "uri", "", "URI whose query string carries the credential")
	fs.StringVar(&o.Name, "name", "", "Optional label")
	fs.Var(o.Fields, "set", "Field value as Name=Value (repeatable)")
	fs.StringVar(&o.Format, "format", "text", "Output format: text, json, yaml")
}

// request validates the shared flags and builds a generate request.
func (o *inputOptions) request() (application.GenerateRequest, error) {
	if err := checkFormat(o.Format); err != nil {
		return application.GenerateRequest{}, err
	}
	kind, err := credential.ParseKind(o.Kind)
	if err != nil {
		return application.GenerateRequest{}, err
	}
	return application.GenerateRequest{
		Kind:   kind,
		URI:    o.URI,
		Name:   o.Name,
		Fields: o.Fields,
	}, nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
}

// isInputError reports whether err was caused by the credential input rather
// than by the command itself.
func isInputError(err error) bool {
	return errors.Is(err, credential.ErrInvalidCredential) ||
		errors.Is(err, credential.ErrFieldBinding) ||
		errors.Is(err, credential.ErrMalformedURI)
}

// inputErrors flattens err into user-facing messages.
func inputErrors(err error) []string {
	var verr *credential.ValidationError
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	return []string{err.Error()}
}

// writeStructured writes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

func parseFlags(fs *flag.FlagSet, args []string, stderr io.Writer, usage func(io.Writer)) error {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			usage(stderr)
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}
