// Command propharness validates component definitions and runs property
// scenarios against them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/propharness/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
