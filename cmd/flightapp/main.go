package main

import (
	"os"

	"github.com/Domenick1991/flightbooking/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
