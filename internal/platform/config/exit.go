package config

import (
	"fmt"
	"os"
)

// Exitf prints a formatted message to stderr and terminates with code 1.
// Entry points use it for fatal setup failures, before a search outcome
// exists to map onto an exit code.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
