package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/restgen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "restgen:", err)
		os.Exit(1)
	}
}
