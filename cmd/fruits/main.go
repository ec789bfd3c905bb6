// Package main provides the fruits CLI: the HTTP server and store
// maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "fruits:", err)
		os.Exit(exitCode(err))
	}
}
