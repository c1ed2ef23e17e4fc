package config

import (
	"fmt"
	"io"
	"os"
)

// exitFunc and exitWriter are replaceable in tests.
var (
	exitFunc             = os.Exit
	exitWriter io.Writer = os.Stderr
)

// Exitf writes a formatted error message to stderr and terminates the
// process with code 1. One-shot CLI entry points use it for fatal errors
// instead of log.Fatalf so output stays free of log prefixes.
func Exitf(format string, args ...any) {
	fmt.Fprintf(exitWriter, format+"\n", args...)
	exitFunc(1)
}
