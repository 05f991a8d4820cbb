// qrcode is a CLI tool for encoding OTP and Wi-Fi credentials as QR codes.
package main

import (
	"fmt"
	"os"

	"github.com/ericfisherdev/qrcodegen/cmd/qrcode/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "encode":
		exitCode = commands.RunEncode(args, os.Stdout, os.Stderr)
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "describe":
		exitCode = commands.RunDescribe(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`qrcode - OTP and Wi-Fi QR code generator

Usage:
  qrcode <command> [options]

Commands:
  encode     Build the enrollment string and optionally write a PNG
  validate   Check credential input without generating anything
  describe   List the input fields of a credential kind

Options:
  -h, --help     Show this help message

Examples:
  qrcode encode --kind wifi --set SSID=Home --set Password=secret -o wifi.png
  qrcode encode --kind otp --uri 'x?applicationName=ACME&accountName=me&otpSeed=abc'
  qrcode validate --kind otp --set Digits=0 --format json
  qrcode describe --kind otp --format yaml

For command-specific help, run:
  qrcode <command> --help`)
}
