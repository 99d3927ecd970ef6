package main

import (
	"os"

	"github.com/dshills/reviewlens/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
