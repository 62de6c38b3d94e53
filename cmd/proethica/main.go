// CLI entry point.
package main

import (
	"os"

	"github.com/cr625/proethica-sub007/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
