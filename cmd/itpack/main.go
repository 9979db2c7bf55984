// Command itpack lists, extracts, and creates .it encrypted archive
// containers.
package main

import (
	"os"

	"github.com/shaggyze/itpack/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
