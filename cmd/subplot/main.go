package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/subplot/internal/cli"
)

// Build variables - set by ldflags during build.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
