package main

import (
	"os"

	"doccov/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
