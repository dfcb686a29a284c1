package main

import (
	"os"

	"github.com/ideas-net-studio/shared-memory/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
