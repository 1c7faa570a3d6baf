// main is the entry point for the pkgguard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pkgguard/pkgguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
