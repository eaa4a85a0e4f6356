package main

import (
	"fmt"
	"os"

	"github.com/rony4d/go-essex/cmd/essex/launcher"
)

func main() {
	if err := launcher.Launch(os.Args); err != nil {
		// Report the issue so the user sees it, then exit non-zero.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
