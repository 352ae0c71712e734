package main

import (
	"os"

	"github.com/spec-kit/querydesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
