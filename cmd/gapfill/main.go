// gapfill - Targeted feature reconstruction for LC-MS runs
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/gapfill/cmd/gapfill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
