package main

import (
	"os"

	"github.com/meikuraledutech/chainchart/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
