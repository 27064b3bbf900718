package config

import (
	"fmt"
	"os"
)

// Exitf prints a formatted message to stderr and exits with code 1. The
// seed and maintenance mains use it for fatal startup errors.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
