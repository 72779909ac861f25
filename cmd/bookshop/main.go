package main

import (
	"os"

	"pollex.nl/bookshop/cmd/bookshop/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], os.Stdout))
}
