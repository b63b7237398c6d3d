package main

import (
	"os"

	"github.com/mixsight/mixsight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
