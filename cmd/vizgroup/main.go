package main

import (
	"fmt"
	"os"
)

// ============================================================================
// VIZGROUP CLI - group, discover and query records from the shell
// ============================================================================

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
