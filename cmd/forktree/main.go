package main

import (
	"os"

	"github.com/shinji-kodama/forktree/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}
