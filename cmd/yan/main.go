package main

import (
	"os"

	"github.com/patham9/YAN/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
