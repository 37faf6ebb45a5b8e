package main

import (
	"os"

	"github.com/redlinehq/redline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
