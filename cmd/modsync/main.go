package main

import (
	"os"

	"github.com/majorcontext/modsync/cmd/modsync/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
