// file: main.go
// version: 1.0.0
// guid: 7a1f0c7e-53d2-4b8f-9d3a-6e5b2c4a9f10

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/calibre-api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
