// cmd/titlepage/main.go

// Command titlepage serves an API title page showing the service's
// configuration with every value annotated with its source and redacted.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=1.2.3"
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
