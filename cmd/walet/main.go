package main

import (
	"os"

	"github.com/harun/walet/internal/cli"
)

func main() {
	// Cobra prints the error itself; we only carry the exit code.
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
