package main

import (
	"os"

	"github.com/labshare/server/internal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
