package main

import (
	"fmt"
	"os"

	"github.com/Makepad-fr/tada-tasks/internal/cli"
)

func main() {
	// Hand the args to the CLI runner.
	code := cli.Run(os.Args[1:])
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
