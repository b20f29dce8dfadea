// Command testament is an interactive terminal test runner for .NET.
package main

import (
	"fmt"
	"os"

	"github.com/haavardr/testament/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "testament:", err)
		os.Exit(1)
	}
}
