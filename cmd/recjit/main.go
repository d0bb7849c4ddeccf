// Command recjit inspects record layouts and checks compiled record-array
// functions against the reference interpreter.
//
// Usage:
//
//	recjit layout FILE [--packed] [-i]
//	recjit parity [--bounds-check] [--layout packed|aligned|both]
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
