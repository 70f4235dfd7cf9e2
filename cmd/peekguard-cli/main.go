package main

import (
	"context"
	"fmt"
	"os"

	"github.com/platinummonkey/peekguard/pkg/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
