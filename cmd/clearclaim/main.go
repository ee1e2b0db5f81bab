// clearclaim is the command-line entry point for the claim decision engine.
package main

import (
	"os"

	"github.com/clearclaim/clearclaim/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
