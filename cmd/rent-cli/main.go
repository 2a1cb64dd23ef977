// rent-cli is the terminal client for the car rental marketplace.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rentloop/rentloop/pkg/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	flag.Parse()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
