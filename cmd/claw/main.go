// Command claw is the ClawHub registry CLI.
package main

import (
	"fmt"
	"os"

	"github.com/clawhub/clawhub/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
