// Command fasten runs headless simulations of a fastener tree and validates
// theme files.
package main

import (
	"os"

	"github.com/go-drift/fasten/cmd/fasten/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
