// Command memberjwt issues, renews and checks member tokens, and serves the
// same operations over HTTP.
package main

import (
	"os"

	"github.com/gourdian25/memberjwt/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("CLI error", "error", err)
		os.Exit(1)
	}
}
