package main

import (
	"fmt"
	"os"

	"github.com/boardwalk-tui/boardwalk/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "boardwalk: %v\n", err)
		os.Exit(1)
	}
}
